package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// JWTConfig defines issuer/secret pair for auth verification.
type JWTConfig struct {
	Issuer string
	Secret []byte
}

// Config holds runtime configuration of the discovery API server.
type Config struct {
	Addr                         string
	MongoURI                     string
	MongoDatabase                string
	ShopCollection               string
	CategoryCollection           string
	BookingCollection            string
	FailedNotificationCollection string
	Timeout                      time.Duration
	Timezone                     string
	JWTConfigs                   []JWTConfig
	JWTAudience                  string
	MessengerEndpoint            string
	MessengerDestination         string
	DiscordDestination           string
	SlackDestination             string
	MessengerTimeout             time.Duration
	AdminBookingBaseURL          string
	AllowedOrigins               []string
}

// ClientConfig configures the terminal discovery client.
type ClientConfig struct {
	APIBaseURL        string
	APIToken          string
	RequestsPerSecond float64
	RequestTimeout    time.Duration
	GeoEndpoint       string
	GeoUserAgent      string
	GeoTimeout        time.Duration
	// Latitude/Longitude pin the user position and skip the IP lookup.
	Latitude  *float64
	Longitude *float64
}

// Load reads environment variables and returns a fully populated Config.
func Load() (Config, error) {
	var jwtConfigs []JWTConfig
	if secret := strings.TrimSpace(os.Getenv("AUTH_LINE_JWT_SECRET")); secret != "" {
		jwtConfigs = append(jwtConfigs, JWTConfig{
			Issuer: envOrDefault("AUTH_LINE_JWT_ISSUER", "header-auth-line"),
			Secret: []byte(secret),
		})
	}
	if secret := strings.TrimSpace(os.Getenv("AUTH_KAKAO_JWT_SECRET")); secret != "" {
		jwtConfigs = append(jwtConfigs, JWTConfig{
			Issuer: envOrDefault("AUTH_KAKAO_JWT_ISSUER", "header-auth-kakao"),
			Secret: []byte(secret),
		})
	}
	if len(jwtConfigs) == 0 {
		return Config{}, errors.New("JWT secrets not configured. Set AUTH_KAKAO_JWT_SECRET or AUTH_LINE_JWT_SECRET")
	}

	jwtAudience := strings.TrimSpace(os.Getenv("AUTH_JWT_AUDIENCE"))
	if jwtAudience == "" {
		jwtAudience = strings.TrimSpace(os.Getenv("AUTH_LINE_JWT_AUDIENCE"))
	}

	return Config{
		Addr:                         envOrDefault("HTTP_ADDR", ":8080"),
		MongoURI:                     envOrDefault("MONGO_URI", "mongodb://mongo:27017"),
		MongoDatabase:                envOrDefault("MONGO_DB", "header"),
		ShopCollection:               envOrDefault("SHOP_COLLECTION", "shops"),
		CategoryCollection:           envOrDefault("CATEGORY_COLLECTION", "categories"),
		BookingCollection:            envOrDefault("BOOKING_COLLECTION", "bookings"),
		FailedNotificationCollection: envOrDefault("FAILED_NOTIFICATION_COLLECTION", "failed_notifications"),
		Timeout:                      parseDuration("MONGO_CONNECT_TIMEOUT", 10*time.Second),
		Timezone:                     envOrDefault("TIMEZONE", "Asia/Seoul"),
		JWTConfigs:                   jwtConfigs,
		JWTAudience:                  jwtAudience,
		MessengerEndpoint:            envOrDefault("MESSENGER_GATEWAY_URL", "http://messenger-gateway:3000"),
		MessengerDestination:         envOrDefault("MESSENGER_GATEWAY_DESTINATION", "line"),
		DiscordDestination:           strings.TrimSpace(os.Getenv("MESSENGER_DISCORD_INCOMING_DESTINATION")),
		SlackDestination:             strings.TrimSpace(os.Getenv("MESSENGER_SLACK_DESTINATION")),
		MessengerTimeout:             parseDuration("MESSENGER_GATEWAY_TIMEOUT", 3*time.Second),
		AdminBookingBaseURL:          strings.TrimSpace(os.Getenv("ADMIN_BOOKING_BASE_URL")),
		AllowedOrigins:               parseList("API_ALLOWED_ORIGINS", []string{"*"}),
	}, nil
}

// LoadClient reads the discovery client configuration.
func LoadClient() ClientConfig {
	cfg := ClientConfig{
		APIBaseURL:        envOrDefault("DISCOVERY_API_URL", "http://localhost:8080"),
		APIToken:          strings.TrimSpace(os.Getenv("DISCOVERY_API_TOKEN")),
		RequestsPerSecond: parseFloat("DISCOVERY_API_RPS", 5),
		RequestTimeout:    parseDuration("DISCOVERY_API_TIMEOUT", 10*time.Second),
		GeoEndpoint:       strings.TrimSpace(os.Getenv("GEOLOCATION_ENDPOINT")),
		GeoUserAgent:      envOrDefault("GEOLOCATION_USER_AGENT", "header-discover/1.0"),
		GeoTimeout:        parseDuration("GEOLOCATION_TIMEOUT", 10*time.Second),
	}
	if lat, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv("DISCOVERY_LATITUDE")), 64); err == nil {
		if lng, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv("DISCOVERY_LONGITUDE")), 64); err == nil {
			cfg.Latitude = &lat
			cfg.Longitude = &lng
		}
	}
	return cfg
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func parseFloat(key string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func parseList(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			values = append(values, part)
		}
	}

	if len(values) == 0 {
		return fallback
	}
	return values
}
