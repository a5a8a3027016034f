// Package clients initializes the MOLIT open-data clients from configuration.
//
// Example usage:
//
//	cfg := config.LoadOrEnv()
//	c, err := clients.NewClients(cfg, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// Use c.Feed, c.Registry
package clients

import (
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/eshaffer321/realestate-detective-backend/internal/adapters/providers/molit"
	"github.com/eshaffer321/realestate-detective-backend/internal/infrastructure/config"
)

// Clients holds the initialized upstream clients
type Clients struct {
	Feed     *molit.FeedClient
	Registry *molit.RegistryClient
	Limiter  *rate.Limiter // shared by Feed and Registry
}

// NewClients creates the feed and ledger clients. Both share one limiter
// since data.go.kr meters requests per service key.
// Returns molit.ErrMissingServiceKey if no key is configured.
func NewClients(cfg *config.Config, logger *slog.Logger) (*Clients, error) {
	clientCfg := cfg.ClientConfig()
	if clientCfg.ServiceKey == "" {
		return nil, molit.ErrMissingServiceKey
	}

	limiter := molit.NewLimiter(clientCfg)
	return &Clients{
		Feed:     molit.NewFeedClient(clientCfg, limiter, logger),
		Registry: molit.NewRegistryClient(clientCfg, limiter, logger),
		Limiter:  limiter,
	}, nil
}
