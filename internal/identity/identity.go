// Package identity сопоставляет токен запроса с идентификатором участника
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMissingToken - в запросе нет токена
	ErrMissingToken = errors.New("identity: token required")
	// ErrInvalidToken - токен не опознан ни одним провайдером
	ErrInvalidToken = errors.New("identity: invalid token")
)

// Provider возвращает участника, которому принадлежит токен
type Provider interface {
	Authenticate(ctx context.Context, token string) (string, error)
}

// APIKeyProvider - статическая таблица ключ -> участник
type APIKeyProvider struct {
	keys map[string]string
}

func NewAPIKeyProvider(keys map[string]string) *APIKeyProvider {
	copied := make(map[string]string, len(keys))
	for key, actor := range keys {
		copied[key] = actor
	}
	return &APIKeyProvider{keys: copied}
}

func (p *APIKeyProvider) Authenticate(_ context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrMissingToken
	}
	actor, ok := p.keys[token]
	if !ok {
		return "", ErrInvalidToken
	}
	return actor, nil
}

// JWTProvider проверяет HS256 токены; участник берется из claim sub
type JWTProvider struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewJWTProvider(secret, issuer string) *JWTProvider {
	return &JWTProvider{secret: []byte(secret), issuer: issuer, now: time.Now}
}

func (p *JWTProvider) Authenticate(_ context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrMissingToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	}
	if p.issuer != "" {
		opts = append(opts, jwt.WithIssuer(p.issuer))
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return p.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	actor := strings.TrimSpace(claims.Subject)
	if actor == "" {
		return "", fmt.Errorf("%w: empty subject", ErrInvalidToken)
	}
	return actor, nil
}

// Issue подписывает токен для участника; используется в тестах и утилитах
func (p *JWTProvider) Issue(actor string, ttl time.Duration) (string, error) {
	now := p.now()
	claims := jwt.RegisteredClaims{
		Subject:   actor,
		Issuer:    p.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("identity: could not sign token: %w", err)
	}
	return signed, nil
}

// Chain опрашивает провайдеров по очереди до первого успеха
type Chain []Provider

func (c Chain) Authenticate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrMissingToken
	}
	for _, provider := range c {
		actor, err := provider.Authenticate(ctx, token)
		if err == nil {
			return actor, nil
		}
		if !errors.Is(err, ErrInvalidToken) {
			return "", err
		}
	}
	return "", ErrInvalidToken
}

// FromConfig собирает цепочку: API-ключи, затем JWT, если задан секрет
func FromConfig(apiKeys map[string]string, jwtSecret, jwtIssuer string) Chain {
	chain := Chain{NewAPIKeyProvider(apiKeys)}
	if jwtSecret != "" {
		chain = append(chain, NewJWTProvider(jwtSecret, jwtIssuer))
	}
	return chain
}
