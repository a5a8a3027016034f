package matcher

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/eshaffer321/realestate-detective-backend/internal/adapters/providers"
	"github.com/eshaffer321/realestate-detective-backend/internal/domain/parcel"
)

// CandidateFetcher queries the building registry for a parcel.
// It never returns an error: failures and timeouts degrade to no candidates.
type CandidateFetcher struct {
	registry providers.BuildingRegistry
	timeout  time.Duration
	logger   *slog.Logger
}

// NewCandidateFetcher creates a fetcher with a per-lookup timeout
func NewCandidateFetcher(registry providers.BuildingRegistry, timeout time.Duration, logger *slog.Logger) *CandidateFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &CandidateFetcher{
		registry: registry,
		timeout:  timeout,
		logger:   logger,
	}
}

// Fetch returns the candidate buildings for key in upstream order
func (f *CandidateFetcher) Fetch(ctx context.Context, key parcel.Key) []Candidate {
	if f == nil || f.registry == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	query := BuildQuery(key)
	start := time.Now()
	buildings, err := f.registry.FetchCandidates(ctx, query)
	if err != nil {
		f.logger.Warn("registry lookup failed, treating as no candidates",
			"registry", f.registry.Name(),
			"sigungu", query.DistrictCode,
			"bjdong", query.SubdivisionCode,
			"bun", query.Lot,
			"ji", query.SubLot,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
		return nil
	}

	f.logger.Debug("registry lookup",
		"sigungu", query.DistrictCode,
		"bjdong", query.SubdivisionCode,
		"bun", query.Lot,
		"ji", query.SubLot,
		"candidates", len(buildings),
	)

	return buildings
}

// BuildQuery converts a parcel key into a registry query with 4-digit lot numbers
func BuildQuery(key parcel.Key) providers.RegistryQuery {
	return providers.RegistryQuery{
		DistrictCode:    key.DistrictCode,
		SubdivisionCode: key.SubdivisionCode,
		Lot:             padLot(key.Lot),
		SubLot:          padLot(key.SubLot),
	}
}

func padLot(s string) string {
	if len(s) >= 4 {
		return s
	}
	return strings.Repeat("0", 4-len(s)) + s
}
