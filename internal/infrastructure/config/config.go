package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	defaultChartBaseURL  = "https://query1.finance.yahoo.com"
	defaultSearchBaseURL = "https://query2.finance.yahoo.com"
)

type Config struct {
	ServerPort       string
	ServerHost       string
	ChartBaseURL     string
	SearchBaseURL    string
	HTTPTimeout      time.Duration
	BatchConcurrency int
	LogLevel         string
}

func Load() (*Config, error) {
	port := getEnvOrDefault("SERVER_PORT", "8080")
	host := getEnvOrDefault("SERVER_HOST", "localhost")
	logLevel := getEnvOrDefault("LOG_LEVEL", "info")

	chartBaseURL := getEnvOrDefault("YAHOO_CHART_BASE_URL", defaultChartBaseURL)
	searchBaseURL := getEnvOrDefault("YAHOO_SEARCH_BASE_URL", defaultSearchBaseURL)

	timeout, err := time.ParseDuration(getEnvOrDefault("HTTP_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}

	// 0 keeps the batch fan-out uncapped (one in-flight call per item).
	concurrency, err := strconv.Atoi(getEnvOrDefault("BATCH_CONCURRENCY", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid BATCH_CONCURRENCY: %w", err)
	}
	if concurrency < 0 {
		return nil, fmt.Errorf("BATCH_CONCURRENCY must be >= 0, got %d", concurrency)
	}

	return &Config{
		ServerPort:       port,
		ServerHost:       host,
		ChartBaseURL:     chartBaseURL,
		SearchBaseURL:    searchBaseURL,
		HTTPTimeout:      timeout,
		BatchConcurrency: concurrency,
		LogLevel:         logLevel,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
