// Package notify is the dispatch port: it carries rendered messages to an
// external destination through a named provider. The registry is an
// explicit object built once at startup, not a package-level singleton.
package notify

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Payload is one message to one destination. Built per delivery attempt,
// never persisted.
type Payload struct {
	UserID string // external user id, for logging
	ChatID string // destination
	Body   string // rendered HTML message
}

// Provider delivers a payload. Send returns false for ordinary delivery
// failures (destination unreachable, transport refused); errors are
// reserved for configuration-class problems such as ErrNotImplemented.
type Provider interface {
	Name() string
	Send(ctx context.Context, p Payload) (bool, error)
}

var (
	ErrNoProviderRegistered = errors.New("no notification provider registered")
	ErrProviderNotFound     = errors.New("notification provider not found")
	ErrNotImplemented       = errors.New("notification provider not implemented")
)

// Service holds the registered providers and the designated default.
type Service struct {
	log             *zap.Logger
	providers       map[string]Provider
	defaultProvider string
}

func NewService(log *zap.Logger) *Service {
	return &Service{
		log:       log,
		providers: make(map[string]Provider),
	}
}

// Register adds a provider. The first registered provider becomes the
// default; isDefault overrides that.
func (s *Service) Register(p Provider, isDefault bool) {
	s.providers[p.Name()] = p
	if isDefault || len(s.providers) == 1 {
		s.defaultProvider = p.Name()
	}
	s.log.Info("registered notification provider", zap.String("provider", p.Name()))
}

// Send resolves providerName (or the default when empty) and delivers the
// payload. A missing or unknown provider is a configuration error, not a
// delivery failure.
func (s *Service) Send(ctx context.Context, p Payload, providerName string) (bool, error) {
	name := providerName
	if name == "" {
		name = s.defaultProvider
	}
	if name == "" {
		return false, ErrNoProviderRegistered
	}
	provider, ok := s.providers[name]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrProviderNotFound, name)
	}
	return provider.Send(ctx, p)
}

// Providers lists registered provider names.
func (s *Service) Providers() []string {
	names := make([]string, 0, len(s.providers))
	for name := range s.providers {
		names = append(names, name)
	}
	return names
}
