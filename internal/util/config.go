package util

import (
	"log"
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

//nolint:gochecknoglobals // here its ok
var once sync.Once

func init() {
	once.Do(func() {
		if err := godotenv.Load(".env"); err != nil {
			log.Printf("Warning: could not load .env file: %v", err)
		}
	})
}

const (
	defaultServerAddr      = "localhost:3000"
	defaultWriteTimeout    = 10 * time.Second
	defaultReadTimeout     = 10 * time.Second
	defaultIdleTimeout     = 30 * time.Second
	defaultGracefulTimeout = 5 * time.Second

	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 720 * time.Hour

	defaultUploadURLTTL = 60 * time.Second
	defaultSignedURLTTL = 15 * time.Minute

	JWTLeeWay = 5 * time.Second
)

type ServerConfig struct {
	ServerAddr      string
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	IdleTimeout     time.Duration
	GracefulTimeout time.Duration
}

func NewServerConfig() *ServerConfig {
	addr := os.Getenv("SERVER_ADDRESS")
	if addr == "" {
		addr = defaultServerAddr
	}

	return &ServerConfig{
		ServerAddr:      addr,
		WriteTimeout:    parseDurationOrDefault("WRITE_TIMEOUT", defaultWriteTimeout),
		ReadTimeout:     parseDurationOrDefault("READ_TIMEOUT", defaultReadTimeout),
		IdleTimeout:     parseDurationOrDefault("IDLE_TIMEOUT", defaultIdleTimeout),
		GracefulTimeout: parseDurationOrDefault("GRACEFUL_TIMEOUT", defaultGracefulTimeout),
	}
}

type TokenConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

func NewTokenConfig() *TokenConfig {
	accessSecret := os.Getenv("ACCESS_TOKEN_SECRET")
	if accessSecret == "" {
		log.Fatal("ACCESS_TOKEN_SECRET is not set")
	}
	refreshSecret := os.Getenv("REFRESH_TOKEN_SECRET")
	if refreshSecret == "" {
		log.Fatal("REFRESH_TOKEN_SECRET is not set")
	}
	return &TokenConfig{
		AccessSecret:  []byte(accessSecret),
		RefreshSecret: []byte(refreshSecret),
		AccessTTL:     parseDurationOrDefault("ACCESS_TOKEN_TTL", defaultAccessTTL),
		RefreshTTL:    parseDurationOrDefault("REFRESH_TOKEN_TTL", defaultRefreshTTL),
	}
}

type S3Config struct {
	Endpoint     string
	Region       string
	AccessKey    string
	SecretKey    string
	Bucket       string
	UseSSL       bool
	UploadURLTTL time.Duration
	SignedURLTTL time.Duration
}

func NewS3Config() *S3Config {
	bucket := os.Getenv("S3_BUCKET_NAME")
	if bucket == "" {
		log.Fatal("S3_BUCKET_NAME is not set")
	}

	endpoint := os.Getenv("S3_ENDPOINT")
	if endpoint == "" {
		endpoint = "s3.amazonaws.com"
	}

	return &S3Config{
		Endpoint:     endpoint,
		Region:       os.Getenv("AWS_REGION"),
		AccessKey:    os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretKey:    os.Getenv("AWS_SECRET_ACCESS_KEY"),
		Bucket:       bucket,
		UseSSL:       os.Getenv("S3_DISABLE_SSL") == "",
		UploadURLTTL: parseDurationOrDefault("UPLOAD_URL_TTL", defaultUploadURLTTL),
		SignedURLTTL: parseDurationOrDefault("SIGNED_URL_TTL", defaultSignedURLTTL),
	}
}

func GetWebhookURL() string {
	return os.Getenv("WEBHOOK_URL")
}

func parseDurationOrDefault(varName string, def time.Duration) time.Duration {
	if v := os.Getenv(varName); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("Invalid duration in %s: %s, using default %s", varName, v, def)
	}
	return def
}
