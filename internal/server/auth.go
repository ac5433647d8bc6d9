package server

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/BOA-with-elephant/Header-Frontend-sub001/internal/config"
	commonhttp "github.com/BOA-with-elephant/Header-Frontend-sub001/internal/interfaces/http/common"
)

const tokenLeeway = 30 * time.Second

var (
	errMissingAuthorization = errors.New("Authorization 헤더가 없습니다")
	errNotBearer            = errors.New("Bearer 토큰을 지정해 주세요")
	errEmptyToken           = errors.New("액세스 토큰이 비어 있습니다")
	errAuthNotConfigured    = errors.New("인증 설정이 구성되지 않았습니다")
	errInvalidToken         = errors.New("액세스 토큰이 유효하지 않습니다")
)

type authClaims struct {
	jwt.RegisteredClaims
	Name              string `json:"name,omitempty"`
	Picture           string `json:"picture,omitempty"`
	PreferredUsername string `json:"preferred_username,omitempty"`
}

// tokenVerifier accepts HS256 tokens from any configured issuer.
type tokenVerifier struct {
	issuers  []config.JWTConfig
	audience string
}

func newTokenVerifier(issuers []config.JWTConfig, audience string) *tokenVerifier {
	return &tokenVerifier{
		issuers:  append([]config.JWTConfig(nil), issuers...),
		audience: audience,
	}
}

// fromHeader extracts and verifies the bearer token of an Authorization header.
func (v *tokenVerifier) fromHeader(header string) (commonhttp.User, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return commonhttp.User{}, errMissingAuthorization
	}
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return commonhttp.User{}, errNotBearer
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return commonhttp.User{}, errEmptyToken
	}

	claims, err := v.verify(raw)
	if err != nil {
		return commonhttp.User{}, err
	}
	return commonhttp.User{
		ID:       claims.Subject,
		Name:     claims.Name,
		Username: claims.PreferredUsername,
		Picture:  claims.Picture,
	}, nil
}

func (v *tokenVerifier) verify(raw string) (*authClaims, error) {
	if len(v.issuers) == 0 {
		return nil, errAuthNotConfigured
	}
	for _, issuer := range v.issuers {
		claims := &authClaims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
			if token.Method != jwt.SigningMethodHS256 {
				return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
			}
			return issuer.Secret, nil
		}, jwt.WithLeeway(tokenLeeway))
		if err != nil || !token.Valid {
			continue
		}
		if issuer.Issuer != "" && claims.Issuer != issuer.Issuer {
			continue
		}
		if claims.Subject == "" {
			continue
		}
		if v.audience != "" && !slices.Contains(claims.Audience, v.audience) {
			continue
		}
		return claims, nil
	}
	return nil, errInvalidToken
}

// authMiddleware rejects requests without a valid bearer token and attaches
// the user to the request context.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := s.verifier.fromHeader(r.Header.Get("Authorization"))
		if err != nil {
			commonhttp.WriteError(s.logger, w, http.StatusUnauthorized, err.Error())
			return
		}
		next.ServeHTTP(w, r.WithContext(commonhttp.WithUser(r.Context(), user)))
	})
}
