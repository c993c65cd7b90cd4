package services

import (
	"fmt"

	"github.com/relaykit/connect-cli/internal/connectors"
	"github.com/relaykit/connect-cli/internal/connectors/reddit"
	"github.com/relaykit/connect-cli/internal/connectors/xcom"
	"github.com/relaykit/connect-cli/internal/core/domain"
)

// ConnectorRegistry maps connector types to their OAuth handlers.
type ConnectorRegistry struct {
	handlers map[domain.ConnectorType]connectors.OAuthHandler
}

// NewConnectorRegistry creates a registry with the built-in connectors.
func NewConnectorRegistry() *ConnectorRegistry {
	return &ConnectorRegistry{
		handlers: map[domain.ConnectorType]connectors.OAuthHandler{
			domain.ConnectorXCom:   xcom.NewOAuthHandler(),
			domain.ConnectorReddit: reddit.NewOAuthHandler(),
		},
	}
}

// Register adds or replaces the handler for a connector type.
func (r *ConnectorRegistry) Register(connector domain.ConnectorType, handler connectors.OAuthHandler) {
	r.handlers[connector] = handler
}

// Handler returns the OAuth handler for a connector type.
func (r *ConnectorRegistry) Handler(connector domain.ConnectorType) (connectors.OAuthHandler, error) {
	h, ok := r.handlers[connector]
	if !ok {
		return nil, fmt.Errorf("%w: unknown connector %q", domain.ErrInvalidInput, connector)
	}
	return h, nil
}

// Types lists the registered connector types.
func (r *ConnectorRegistry) Types() []domain.ConnectorType {
	types := make([]domain.ConnectorType, 0, len(r.handlers))
	for t := range r.handlers {
		types = append(types, t)
	}
	return types
}
