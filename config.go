package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	awspkg "wholesale-service/pkg/aws"
)

// Config holds all configuration for the wholesale service.
type Config struct {
	Port                string
	Env                 string
	MongoURI            string
	MongoDB             string
	RedisURL            string
	OrderSNSTopicARN    string
	POS3Bucket          string
	POS3Prefix          string
	GSTRate             float64
	ImageCacheTTL       time.Duration
	PlaceholderImageURL string
	AllowedOrigins      []string
	CloudWatchEnabled   bool
	CloudWatchLogGroup  string
	StorefrontRPS       float64
	StorefrontBurst     int
}

// LoadConfig reads configuration from environment variables with optional
// Secrets Manager override.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:                getEnv("PORT", "8095"),
		Env:                 getEnv("ENV", "development"),
		MongoURI:            os.Getenv("MONGO_URI"),
		MongoDB:             getEnv("MONGO_DB", "wholesale"),
		RedisURL:            os.Getenv("REDIS_URL"),
		OrderSNSTopicARN:    os.Getenv("ORDER_SNS_TOPIC_ARN"),
		POS3Bucket:          os.Getenv("PO_S3_BUCKET"),
		POS3Prefix:          getEnv("PO_S3_PREFIX", "purchase-orders"),
		PlaceholderImageURL: getEnv("PLACEHOLDER_IMAGE_URL", "https://placehold.co/160x200?text=No+Image"),
		AllowedOrigins:      splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		CloudWatchEnabled:   os.Getenv("CLOUDWATCH_ENABLED") == "true",
		CloudWatchLogGroup:  getEnv("CLOUDWATCH_LOG_GROUP", "/wholesale/wholesale-service"),
	}

	var err error
	if cfg.GSTRate, err = strconv.ParseFloat(getEnv("GST_RATE", "0.05"), 64); err != nil || cfg.GSTRate < 0 || cfg.GSTRate > 1 {
		return nil, fmt.Errorf("GST_RATE must be a fraction between 0 and 1")
	}
	if cfg.ImageCacheTTL, err = time.ParseDuration(getEnv("IMAGE_CACHE_TTL", "1h")); err != nil {
		return nil, fmt.Errorf("invalid IMAGE_CACHE_TTL: %w", err)
	}
	if cfg.StorefrontRPS, err = strconv.ParseFloat(getEnv("STOREFRONT_RPS", "5"), 64); err != nil {
		return nil, fmt.Errorf("invalid STOREFRONT_RPS: %w", err)
	}
	if cfg.StorefrontBurst, err = strconv.Atoi(getEnv("STOREFRONT_BURST", "10")); err != nil {
		return nil, fmt.Errorf("invalid STOREFRONT_BURST: %w", err)
	}

	// Override connection strings from Secrets Manager when running on AWS
	if os.Getenv("AWS_USE_SECRETS") == "true" {
		if awsCfg, err := awspkg.LoadAWSConfig(context.Background()); err == nil {
			sm := awspkg.NewSecretsClient(awsCfg)
			secretName := getEnv("WHOLESALE_SECRET_NAME", "wholesale/APP_SECRETS")
			if m, err := sm.GetSecretMap(context.Background(), secretName); err == nil {
				if v, ok := m["MONGO_URI"]; ok && v != "" {
					cfg.MongoURI = v
				}
				if v, ok := m["REDIS_URL"]; ok && v != "" {
					cfg.RedisURL = v
				}
			}
		}
	}

	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGO_URI is required")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
