package gateway

import (
	"context"
	"fmt"
)

// Registry manages the configured gateway instances. The reconciliation
// engine resolves the gateway recorded on an AdvancePayment attempt through
// it, so historical attempts keep working when the primary provider changes.
type Registry struct {
	gateways map[Provider]PaymentGateway
	primary  Provider
}

func NewRegistry() *Registry {
	return &Registry{
		gateways: make(map[Provider]PaymentGateway),
	}
}

// Register adds a gateway instance. The first registered gateway becomes
// the primary.
func (r *Registry) Register(gw PaymentGateway) {
	r.gateways[gw.Provider()] = gw

	if r.primary == "" {
		r.primary = gw.Provider()
	}
}

// Get returns a gateway instance by provider name.
func (r *Registry) Get(provider Provider) (PaymentGateway, error) {
	gw, exists := r.gateways[provider]
	if !exists {
		return nil, fmt.Errorf("gateway provider %s not registered", provider)
	}
	return gw, nil
}

// Primary returns the gateway new orders are opened with.
func (r *Registry) Primary() (PaymentGateway, error) {
	if r.primary == "" {
		return nil, fmt.Errorf("no primary gateway configured")
	}
	return r.Get(r.primary)
}

// SetPrimary switches the provider used for new orders.
func (r *Registry) SetPrimary(provider Provider) error {
	if _, exists := r.gateways[provider]; !exists {
		return fmt.Errorf("gateway provider %s not registered", provider)
	}
	r.primary = provider
	return nil
}

// Providers returns the registered provider names.
func (r *Registry) Providers() []Provider {
	providers := make([]Provider, 0, len(r.gateways))
	for provider := range r.gateways {
		providers = append(providers, provider)
	}
	return providers
}

// Close is a hook for providers that hold connections; none of the current
// implementations do, but the registry owns shutdown regardless.
func (r *Registry) Close(_ context.Context) error {
	return nil
}
