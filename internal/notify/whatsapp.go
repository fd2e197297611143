package notify

import "context"

// WhatsAppProvider is a placeholder for a future premium-tier channel.
// It is registered so operators can see it in the provider list, but every
// send fails with ErrNotImplemented, which callers treat as a configuration
// gap rather than a transient delivery failure.
type WhatsAppProvider struct{}

func NewWhatsAppProvider() *WhatsAppProvider { return &WhatsAppProvider{} }

func (w *WhatsAppProvider) Name() string { return "whatsapp" }

func (w *WhatsAppProvider) Send(_ context.Context, _ Payload) (bool, error) {
	return false, ErrNotImplemented
}
