// Package payment abstracts the card processor used by checkout.
package payment

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/config"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Gateway attempts a charge. A decline is reported as (false, nil); an error
// means the outcome is unknown.
type Gateway interface {
	Attempt(ctx context.Context, token string, amount decimal.Decimal) (bool, error)
}

// New builds the Gateway selected by cfg.Gateway.
func New(cfg config.PaymentConfig, logger zerolog.Logger) (Gateway, error) {
	logger = logger.With().Str("component", "payment-gateway").Str("gateway", cfg.Gateway).Logger()

	switch cfg.Gateway {
	case "sandbox":
		return &sandboxGateway{declinePrefix: cfg.DeclinePrefix, logger: logger}, nil
	case "approve_all":
		return staticGateway{approve: true}, nil
	case "decline_all":
		return staticGateway{approve: false}, nil
	default:
		return nil, fmt.Errorf("invalid payment gateway: %s", cfg.Gateway)
	}
}

// sandboxGateway approves every token except those carrying the decline prefix.
type sandboxGateway struct {
	declinePrefix string
	logger        zerolog.Logger
}

func (g *sandboxGateway) Attempt(ctx context.Context, token string, amount decimal.Decimal) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	approved := g.declinePrefix == "" || !strings.HasPrefix(token, g.declinePrefix)
	g.logger.Info().
		Str("amount", amount.StringFixed(2)).
		Bool("approved", approved).
		Msg("sandbox payment attempted")

	return approved, nil
}

type staticGateway struct {
	approve bool
}

func (g staticGateway) Attempt(ctx context.Context, _ string, _ decimal.Decimal) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return g.approve, nil
}
