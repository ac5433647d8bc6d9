package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BOA-with-elephant/Header-Frontend-sub001/internal/config"
	commonhttp "github.com/BOA-with-elephant/Header-Frontend-sub001/internal/interfaces/http/common"
)

var testSecret = []byte("test-secret")

func signToken(t *testing.T, secret []byte, claims authClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)
	return signed
}

func validClaims() authClaims {
	now := time.Now()
	return authClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "header-auth-kakao",
			Subject:   "user-1",
			Audience:  jwt.ClaimStrings{"header-api"},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Name: "김민지",
	}
}

func newAuthServer() *Server {
	return &Server{
		logger: zap.NewNop(),
		verifier: newTokenVerifier([]config.JWTConfig{
			{Issuer: "header-auth-line", Secret: []byte("other")},
			{Issuer: "header-auth-kakao", Secret: testSecret},
		}, "header-api"),
	}
}

func TestAuthMiddleware(t *testing.T) {
	srv := newAuthServer()
	var seen commonhttp.User
	protected := srv.authMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = commonhttp.UserFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
	wrongAudience := validClaims()
	wrongAudience.Audience = jwt.ClaimStrings{"someone-else"}
	noSubject := validClaims()
	noSubject.Subject = ""
	wrongIssuer := validClaims()
	wrongIssuer.Issuer = "header-auth-line"

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"empty token", "Bearer  ", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + signToken(t, []byte("nope"), validClaims()), http.StatusUnauthorized},
		{"expired", "Bearer " + signToken(t, testSecret, expired), http.StatusUnauthorized},
		{"wrong audience", "Bearer " + signToken(t, testSecret, wrongAudience), http.StatusUnauthorized},
		{"no subject", "Bearer " + signToken(t, testSecret, noSubject), http.StatusUnauthorized},
		{"issuer mismatch", "Bearer " + signToken(t, testSecret, wrongIssuer), http.StatusUnauthorized},
		{"valid", "Bearer " + signToken(t, testSecret, validClaims()), http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/shops/S1/bookings", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)
			require.Equal(t, tc.status, rec.Code)
		})
	}
	require.Equal(t, "user-1", seen.ID)
	require.Equal(t, "김민지", seen.Name)
}

func TestTokenVerifierErrors(t *testing.T) {
	v := newTokenVerifier(nil, "")
	_, err := v.fromHeader("Bearer abc")
	require.ErrorIs(t, err, errAuthNotConfigured)

	_, err = newAuthServer().verifier.fromHeader("Token abc")
	require.ErrorIs(t, err, errNotBearer)
}

func TestCORSPolicy(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := newCORSPolicy([]string{"https://header.example"}).middleware(next)

	req := httptest.NewRequest(http.MethodGet, "/shops", nil)
	req.Header.Set("Origin", "https://header.example")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "https://header.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/shops", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	require.True(t, newCORSPolicy(nil).allows("https://any.example"))
	require.True(t, newCORSPolicy([]string{"*", "https://a.example"}).allows("https://b.example"))
	require.False(t, newCORSPolicy(nil).allows(""))
}

func TestTraceRequestsPassesThrough(t *testing.T) {
	router := chi.NewRouter()
	router.Use(traceRequests)
	router.Get("/shops/{shopCode}", func(w http.ResponseWriter, r *http.Request) {
		require.NotNil(t, r.Context())
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/shops/S1", nil).WithContext(context.Background()))
	require.Equal(t, http.StatusTeapot, rec.Code)
}

func TestNormaliseBaseURL(t *testing.T) {
	require.Equal(t, "http://gateway:3000", normaliseBaseURL(" http://gateway:3000// "))
}
