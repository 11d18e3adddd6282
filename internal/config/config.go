package config

import (
	"flag"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config carries everything the server needs at startup. Values come from
// flags, the environment, and an optional .env file, in that precedence.
type Config struct {
	Port         string
	Env          string
	Version      string
	MaxBodyBytes int64
	CacheSize    int
	HistoryPath  string
	HistoryDSN   string
	Artifact     ArtifactConfig
}

type ArtifactConfig struct {
	Enabled   bool
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

const defaultMaxBodyBytes = 16 << 20 // 16 MiB, matches upstream upload limit

func Load() (*Config, error) {
	_ = godotenv.Load()

	port := flag.String("port", ":8080", "server port")
	flag.Parse()

	if envPort := os.Getenv("PORT"); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			*port = envPort
		} else {
			*port = ":" + envPort
		}
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	return &Config{
		Port:         *port,
		Env:          env,
		Version:      "1.0.0",
		MaxBodyBytes: intEnv("MAX_BODY_BYTES", defaultMaxBodyBytes),
		CacheSize:    int(intEnv("PARSE_CACHE_SIZE", 256)),
		HistoryPath:  firstNonEmpty(strings.TrimSpace(os.Getenv("HISTORY_PATH")), filepath.Join("tmp", "conversion_history.json")),
		HistoryDSN:   strings.TrimSpace(os.Getenv("HISTORY_PG_DSN")),
		Artifact:     loadArtifactConfig(),
	}, nil
}

func loadArtifactConfig() ArtifactConfig {
	endpoint := strings.TrimSpace(os.Getenv("ARTIFACT_S3_ENDPOINT"))
	return ArtifactConfig{
		Enabled:   endpoint != "",
		Endpoint:  endpoint,
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_REGION")), "us-east-1"),
		AccessKey: strings.TrimSpace(os.Getenv("ARTIFACT_S3_ACCESS_KEY")),
		SecretKey: strings.TrimSpace(os.Getenv("ARTIFACT_S3_SECRET_KEY")),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_BUCKET")), "g2g-artifacts"),
		UseSSL:    boolEnv("ARTIFACT_S3_USE_SSL", false),
	}
}

func intEnv(name string, fallback int64) int64 {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func boolEnv(name string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
