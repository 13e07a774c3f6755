package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries all process-level settings. Values are read once at startup;
// nothing re-reads the environment afterwards.
type Config struct {
	HTTPAddr    string
	DatabaseDSN string
	RedisAddr   string

	// Object storage holding the reference corpus and uploads.
	S3Bucket   string
	S3Region   string
	S3Endpoint string // optional, for S3-compatible stores

	NamesPrefix  string
	FacesPrefix  string
	UploadPrefix string

	// External vision services.
	FaceServiceURL string
	OCRServiceURL  string

	SimilarityThreshold float64
	WorkerPoolSize      int
	RequestTimeout      time.Duration
}

// Load reads configuration from the environment, consulting a .env file first
// when one is present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		HTTPAddr:            getEnv("HTTP_ADDR", ":8080"),
		DatabaseDSN:         getEnv("DATABASE_DSN", "host=postgres user=postgres password=postgres dbname=participation port=5432 sslmode=disable"),
		RedisAddr:           getEnv("REDIS_ADDR", "redis:6379"),
		S3Bucket:            getEnv("S3_BUCKET", "participation-images"),
		S3Region:            getEnv("S3_REGION", "us-east-2"),
		S3Endpoint:          getEnv("S3_ENDPOINT", ""),
		NamesPrefix:         getEnv("NAMES_PREFIX", "names/"),
		FacesPrefix:         getEnv("FACES_PREFIX", "faces/"),
		UploadPrefix:        getEnv("UPLOAD_PREFIX", "uploads/"),
		FaceServiceURL:      getEnv("FACE_SERVICE_URL", "http://face-service:8000"),
		OCRServiceURL:       getEnv("OCR_SERVICE_URL", "http://ocr-service:8001"),
		SimilarityThreshold: getFloat("SIMILARITY_THRESHOLD", 85.0),
		WorkerPoolSize:      getInt("WORKER_POOL_SIZE", 10),
		RequestTimeout:      getDuration("REQUEST_TIMEOUT", 60*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
