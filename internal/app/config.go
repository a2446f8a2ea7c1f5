package app

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/courseagent/backend/internal/domain"
	"github.com/courseagent/backend/internal/platform/envutil"
	"github.com/courseagent/backend/internal/platform/logger"
	"github.com/courseagent/backend/internal/rag"
	"github.com/courseagent/backend/internal/services"
)

type Config struct {
	Port           string
	Environment    string
	ChunkWindow    int
	RetrievalTopK  int
	CandidateLimit int
	EmbedModel     string
}

// fileConfig is the optional on-disk tuning file. Environment
// variables always win over file values.
type fileConfig struct {
	ChunkWindow    int `yaml:"chunk_window"`
	RetrievalTopK  int `yaml:"retrieval_top_k"`
	CandidateLimit int `yaml:"candidate_limit"`
}

func LoadConfig(log *logger.Logger) Config {
	defaults := fileConfig{
		ChunkWindow:    domain.ChunkWindowSize,
		RetrievalTopK:  services.DefaultTopK,
		CandidateLimit: rag.DefaultCandidateLimit,
	}

	path := envutil.Get("CONFIG_FILE", "config.yaml", log)
	if raw, err := os.ReadFile(path); err == nil {
		var fc fileConfig
		if err := yaml.Unmarshal(raw, &fc); err != nil {
			log.Warn("Could not parse config file, ignoring it", "path", path, "error", err)
		} else {
			if fc.ChunkWindow > 0 {
				defaults.ChunkWindow = fc.ChunkWindow
			}
			if fc.RetrievalTopK > 0 {
				defaults.RetrievalTopK = fc.RetrievalTopK
			}
			if fc.CandidateLimit > 0 {
				defaults.CandidateLimit = fc.CandidateLimit
			}
			log.Info("Loaded config file", "path", path)
		}
	}

	embedModel := strings.TrimSpace(envutil.Get("OPENAI_EMBED_MODEL", "text-embedding-3-large", log))

	return Config{
		Port:           envutil.Get("PORT", "8080", log),
		Environment:    envutil.Get("APP_ENV", "development", log),
		ChunkWindow:    envutil.GetInt("CHUNK_WINDOW", defaults.ChunkWindow, log),
		RetrievalTopK:  envutil.GetInt("RETRIEVAL_TOP_K", defaults.RetrievalTopK, log),
		CandidateLimit: envutil.GetInt("CANDIDATE_LIMIT", defaults.CandidateLimit, log),
		EmbedModel:     embedModel,
	}
}
