package types

import (
	"os"
	"strconv"
	"time"
)

// Defaults for the chunking pipeline. The 2400/0.27 pair is the split
// geometry the legal corpus was tuned with; o200k_base matches the
// embedding model's tokenizer family.
const (
	DefaultChunkTokens  = 2400
	DefaultOverlapRatio = 0.27
	DefaultEncoding     = "o200k_base"
	DefaultEmbedModel   = "text-embedding-3-small"
	DefaultEmbedDim     = 1536
)

// Config carries the loader pipeline settings. It is assembled once at
// startup and passed down; pipeline code never reads the environment.
type Config struct {
	MonitoringTime time.Duration
	SourceDir      string
	ArchiveDir     string
	BadDir         string

	ChunkTokens  int
	OverlapRatio float64
	Encoding     string

	CropTop    float64 // header crop in points, 0 disables
	CropBottom float64 // footer crop in points, 0 disables
}

type EmbedConfig struct {
	URL    string
	APIKey string
	Model  string
	Dim    int
}

type LLMConfig struct {
	URL   string
	Model string
}

func ConfigFromEnv() Config {
	return Config{
		MonitoringTime: time.Duration(envInt("MONITORING_TIME", 3)) * time.Second,
		SourceDir:      envStr("LOADER_SOURCE_DIR", "data/source"),
		ArchiveDir:     envStr("LOADER_ARCHIVE_DIR", "data/archive"),
		BadDir:         envStr("LOADER_BAD_DIR", "data/bad"),
		ChunkTokens:    envInt("CHUNK_TOKENS", DefaultChunkTokens),
		OverlapRatio:   envFloat("CHUNK_OVERLAP_RATIO", DefaultOverlapRatio),
		Encoding:       envStr("TOKEN_ENCODING", DefaultEncoding),
		CropTop:        envFloat("CROP_TOP", 0),
		CropBottom:     envFloat("CROP_BOTTOM", 0),
	}
}

func EmbedConfigFromEnv() EmbedConfig {
	return EmbedConfig{
		URL:    envStr("EMBED_URL", "https://api.openai.com/v1/embeddings"),
		APIKey: os.Getenv("EMBED_API_KEY"),
		Model:  envStr("EMBED_MODEL", DefaultEmbedModel),
		Dim:    envInt("EMBED_DIM", DefaultEmbedDim),
	}
}

func LLMConfigFromEnv() LLMConfig {
	return LLMConfig{
		URL:   os.Getenv("LLM_URL"),
		Model: os.Getenv("LLM_MODEL"),
	}
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
