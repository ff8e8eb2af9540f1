package utils

import (
	"os"
	"strconv"
	"time"
)

type AuthConfig struct {
	JWTSecret   string
	JWTIssuer   string
	JWTDuration time.Duration
}

func LoadAuthConfig() AuthConfig {
	secret := os.Getenv("BOOKHUB_JWT_SECRET")
	if secret == "" {
		// dev default (change for demo / production)
		secret = "dev-secret-change-me"
	}

	issuer := os.Getenv("BOOKHUB_JWT_ISSUER")
	if issuer == "" {
		issuer = "bookhub"
	}

	duration := 24 * time.Hour
	if ttl := os.Getenv("BOOKHUB_JWT_TTL_HOURS"); ttl != "" {
		if hours, err := strconv.Atoi(ttl); err == nil && hours > 0 {
			duration = time.Duration(hours) * time.Hour
		}
	}

	return AuthConfig{
		JWTSecret:   secret,
		JWTIssuer:   issuer,
		JWTDuration: duration,
	}
}

type ServerConfig struct {
	HTTPAddr   string
	EventsAddr string
}

func LoadServerConfig() ServerConfig {
	httpAddr := os.Getenv("BOOKHUB_HTTP_ADDR")
	if httpAddr == "" {
		httpAddr = ":8080"
	}

	eventsAddr := os.Getenv("BOOKHUB_EVENTS_ADDR")
	if eventsAddr == "" {
		eventsAddr = ":7070"
	}

	return ServerConfig{
		HTTPAddr:   httpAddr,
		EventsAddr: eventsAddr,
	}
}
