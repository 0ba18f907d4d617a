// Package secrets resolves the process-wide token-signing secret. The
// secret is resolved exactly once, at boot, and handed to the verifier
// and issuer by value; no component reads it through a global.
package secrets

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Provider supplies the raw JWT signing secret from some backend.
type Provider interface {
	JWTSecret(ctx context.Context) (string, error)
}

// Env serves the secret straight from configuration.
type Env struct {
	Value string
}

func (e Env) JWTSecret(context.Context) (string, error) {
	return strings.TrimSpace(e.Value), nil
}

// Source memoizes one provider resolution. The sync.Once guard means
// concurrent first access cannot observe divergent values or generate
// the ephemeral fallback twice.
type Source struct {
	Provider   Provider
	Production bool
	Logger     *slog.Logger

	once   sync.Once
	secret string
	err    error
}

// JWTSecret returns the resolved secret. In production a missing or
// empty secret fails hard. Outside production an ephemeral secret is
// generated once and logged once; tokens signed with it do not survive
// a restart, which is acceptable only in development.
func (s *Source) JWTSecret(ctx context.Context) (string, error) {
	s.once.Do(func() {
		s.secret, s.err = s.resolve(ctx)
	})
	return s.secret, s.err
}

func (s *Source) resolve(ctx context.Context) (string, error) {
	var value string
	if s.Provider != nil {
		v, err := s.Provider.JWTSecret(ctx)
		if err != nil {
			if s.Production {
				return "", fmt.Errorf("resolve jwt secret: %w", err)
			}
			s.log().WarnContext(ctx, "jwt secret provider failed, using ephemeral fallback", "error", err)
		}
		value = strings.TrimSpace(v)
	}

	if value != "" {
		return value, nil
	}
	if s.Production {
		return "", errors.New("jwt secret is required in production")
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate ephemeral jwt secret: %w", err)
	}
	s.log().WarnContext(ctx, "generated ephemeral jwt secret; existing tokens will not verify after restart")
	return hex.EncodeToString(buf), nil
}

func (s *Source) log() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
