package domain

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
)

// EmbeddingDim is the fixed dimensionality of every stored embedding.
// It must match the embedding model's output size
// (text-embedding-3-large → 3072); stored vectors and query vectors are
// only comparable when every row shares this dimension.
const EmbeddingDim = 3072

// Vector maps a []float32 onto a pgvector column. pgvector's text
// representation is "[f1,f2,...]".
type Vector []float32

func (Vector) GormDataType() string {
	return fmt.Sprintf("vector(%d)", EmbeddingDim)
}

func (v Vector) Value() (driver.Value, error) {
	if v == nil {
		return nil, nil
	}
	var b strings.Builder
	b.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(f), 'g', -1, 32))
	}
	b.WriteByte(']')
	return b.String(), nil
}

func (v *Vector) Scan(src any) error {
	var s string
	switch t := src.(type) {
	case nil:
		*v = nil
		return nil
	case string:
		s = t
	case []byte:
		s = string(t)
	default:
		return fmt.Errorf("cannot scan %T into Vector", src)
	}

	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return fmt.Errorf("malformed vector literal %q", truncateLiteral(s))
	}
	s = strings.Trim(s, "[]")
	if s == "" {
		*v = Vector{}
		return nil
	}

	parts := strings.Split(s, ",")
	out := make(Vector, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return fmt.Errorf("malformed vector element %d: %w", i, err)
		}
		out[i] = float32(f)
	}
	*v = out
	return nil
}

func truncateLiteral(s string) string {
	if len(s) > 40 {
		return s[:40] + "..."
	}
	return s
}
