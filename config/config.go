package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds every runtime setting, read once at startup and passed
// explicitly to the components that need it.
type Config struct {
	Port   int
	Domain string

	// APIKey is compared in constant time; when APIKeyHash (bcrypt) is set
	// it takes precedence and APIKey may be empty.
	APIKey     string
	APIKeyHash string

	DataDir         string
	MaxUploadSizeMB int

	// FetchTimeout bounds one acquisition request end-to-end. Large media
	// files over slow links need tens of minutes.
	FetchTimeout time.Duration

	// OutputTTL is the expiry window for outputs produced from a source
	// reference; UploadOutputTTL applies to outputs produced from direct
	// uploads. Both are fixed windows, never extended by downloads.
	OutputTTL       time.Duration
	UploadOutputTTL time.Duration

	FFmpegPath  string
	FFprobePath string
	YtdlpPath   string

	RateLimitRPS   float64
	RateLimitBurst int
}

func Load() (*Config, error) {
	port, err := strconv.Atoi(getEnv("PORT", "3000"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	maxUploadSizeMB, err := strconv.Atoi(getEnv("MAX_UPLOAD_SIZE_MB", "5000"))
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_UPLOAD_SIZE_MB: %w", err)
	}

	fetchTimeout, err := minutesEnv("FETCH_TIMEOUT_MINUTES", 20)
	if err != nil {
		return nil, err
	}

	outputTTL, err := minutesEnv("OUTPUT_TTL_MINUTES", 10)
	if err != nil {
		return nil, err
	}

	uploadOutputTTL, err := minutesEnv("UPLOAD_OUTPUT_TTL_MINUTES", 30)
	if err != nil {
		return nil, err
	}

	rps, err := strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "2"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}

	burst, err := strconv.Atoi(getEnv("RATE_LIMIT_BURST", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}

	apiKey := os.Getenv("API_KEY")
	apiKeyHash := os.Getenv("API_KEY_HASH")
	if apiKey == "" && apiKeyHash == "" {
		return nil, fmt.Errorf("API_KEY or API_KEY_HASH is required")
	}

	return &Config{
		Port:            port,
		Domain:          getEnv("DOMAIN", fmt.Sprintf("http://localhost:%d", port)),
		APIKey:          apiKey,
		APIKeyHash:      apiKeyHash,
		DataDir:         getEnv("DATA_DIR", "data"),
		MaxUploadSizeMB: maxUploadSizeMB,
		FetchTimeout:    fetchTimeout,
		OutputTTL:       outputTTL,
		UploadOutputTTL: uploadOutputTTL,
		FFmpegPath:      getEnv("FFMPEG_PATH", "ffmpeg"),
		FFprobePath:     getEnv("FFPROBE_PATH", "ffprobe"),
		YtdlpPath:       getEnv("YTDLP_PATH", "yt-dlp"),
		RateLimitRPS:    rps,
		RateLimitBurst:  burst,
	}, nil
}

// TempDir is where in-flight acquisition artifacts live.
func (c *Config) TempDir() string {
	return filepath.Join(c.DataDir, "temp")
}

// OutputDir is where finished outputs live until expiry.
func (c *Config) OutputDir() string {
	return filepath.Join(c.DataDir, "converted")
}

func minutesEnv(key string, def int) (time.Duration, error) {
	v, err := strconv.Atoi(getEnv(key, strconv.Itoa(def)))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return time.Duration(v) * time.Minute, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
