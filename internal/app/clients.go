package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/courseagent/backend/internal/clients/redis"
	"github.com/courseagent/backend/internal/platform/gcp"
	"github.com/courseagent/backend/internal/platform/localmedia"
	"github.com/courseagent/backend/internal/platform/logger"
	"github.com/courseagent/backend/internal/platform/openai"
)

type Clients struct {
	OpenAI     openai.Client
	EmbedCache redis.EmbedCache
	GcpBucket  gcp.BucketService
	GcpSpeech  gcp.Speech
	Media      localmedia.Tools
}

func wireClients(log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")

	openaiClient, err := openai.NewClient(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init openai client: %w", err)
	}

	// Redis is optional; without it query embeddings are just recomputed.
	var cache redis.EmbedCache
	if strings.TrimSpace(os.Getenv("REDIS_ADDR")) != "" {
		c, err := redis.NewEmbedCache(log)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis embed cache: %w", err)
		}
		cache = c
	}

	// GCS is optional; without it raw pages and transcripts are not
	// archived and transcription is unavailable.
	var bucket gcp.BucketService
	if strings.TrimSpace(os.Getenv("CONTENT_GCS_BUCKET_NAME")) != "" {
		b, err := gcp.NewBucketService(log)
		if err != nil {
			return Clients{}, fmt.Errorf("init bucket client: %w", err)
		}
		bucket = b
	}

	// Speech and ffmpeg are only needed for the transcription path.
	var speech gcp.Speech
	var media localmedia.Tools
	if bucket != nil {
		s, err := gcp.NewSpeech(log)
		if err != nil {
			log.Warn("Could not init speech client, transcription disabled", "error", err)
		} else {
			speech = s
		}
		m, err := localmedia.NewTools(log)
		if err != nil {
			log.Warn("Could not init media tools, transcription disabled", "error", err)
		} else {
			media = m
		}
	}

	return Clients{
		OpenAI:     openaiClient,
		EmbedCache: cache,
		GcpBucket:  bucket,
		GcpSpeech:  speech,
		Media:      media,
	}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.EmbedCache != nil {
		_ = c.EmbedCache.Close()
	}
	if c.GcpSpeech != nil {
		_ = c.GcpSpeech.Close()
	}
}
