package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("AUTH_LINE_JWT_SECRET", "")
	t.Setenv("AUTH_KAKAO_JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTH_KAKAO_JWT_SECRET", "s3cret")
	t.Setenv("AUTH_LINE_JWT_SECRET", "")
	t.Setenv("MONGO_CONNECT_TIMEOUT", "bogus")
	t.Setenv("API_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Addr)
	require.Equal(t, "shops", cfg.ShopCollection)
	require.Equal(t, "Asia/Seoul", cfg.Timezone)
	require.Equal(t, 10*time.Second, cfg.Timeout)
	require.Equal(t, []JWTConfig{{Issuer: "header-auth-kakao", Secret: []byte("s3cret")}}, cfg.JWTConfigs)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestLoadClient(t *testing.T) {
	t.Setenv("DISCOVERY_API_URL", "http://api.test")
	t.Setenv("DISCOVERY_API_RPS", "-1")
	t.Setenv("DISCOVERY_LATITUDE", "37.5665")
	t.Setenv("DISCOVERY_LONGITUDE", "126.978")
	t.Setenv("GEOLOCATION_TIMEOUT", "2s")

	cfg := LoadClient()
	require.Equal(t, "http://api.test", cfg.APIBaseURL)
	require.Equal(t, float64(5), cfg.RequestsPerSecond)
	require.Equal(t, 2*time.Second, cfg.GeoTimeout)
	require.NotNil(t, cfg.Latitude)
	require.InDelta(t, 126.978, *cfg.Longitude, 1e-9)
}

func TestLoadClientIgnoresHalfPosition(t *testing.T) {
	t.Setenv("DISCOVERY_LATITUDE", "37.5665")
	t.Setenv("DISCOVERY_LONGITUDE", "")

	require.Nil(t, LoadClient().Latitude)
}
