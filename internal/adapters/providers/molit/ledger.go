package molit

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/eshaffer321/realestate-detective-backend/internal/adapters/providers"
)

const titleInfoOperation = "getBrTitleInfo"

// RegistryClient implements providers.BuildingRegistry against the building
// ledger title-info operation
type RegistryClient struct {
	config    ClientConfig
	transport *transport
	logger    *slog.Logger
}

// Compile-time check that RegistryClient implements BuildingRegistry
var _ providers.BuildingRegistry = (*RegistryClient)(nil)

// NewRegistryClient creates a building-ledger client
func NewRegistryClient(cfg ClientConfig, limiter *rate.Limiter, logger *slog.Logger) *RegistryClient {
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()
	logger = logger.With(slog.String("provider", "molit-ledger"))
	return &RegistryClient{
		config:    cfg,
		transport: newTransport(cfg, limiter, logger),
		logger:    logger,
	}
}

// Name returns the provider identifier
func (c *RegistryClient) Name() string {
	return "molit-ledger"
}

// GetRateLimit returns the minimum spacing between requests
func (c *RegistryClient) GetRateLimit() time.Duration {
	return c.transport.rateLimit
}

// FetchCandidates returns ledger rows for the parcel in upstream order
func (c *RegistryClient) FetchCandidates(ctx context.Context, q providers.RegistryQuery) ([]providers.Building, error) {
	params := url.Values{}
	params.Set("sigunguCd", q.DistrictCode)
	params.Set("bjdongCd", q.SubdivisionCode)
	params.Set("bun", q.Lot)
	params.Set("ji", q.SubLot)
	params.Set("numOfRows", strconv.Itoa(c.config.RegistryRows))

	body, err := c.transport.get(ctx, c.config.RegistryBaseURL+"/"+titleInfoOperation, params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ledger: %w", err)
	}

	env, err := decodeEnvelope(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ledger: %w", err)
	}

	records := env.records()
	buildings := make([]providers.Building, 0, len(records))
	for _, rec := range records {
		siteArea, siteOK := parseArea(rec["platArea"])
		floorArea, floorOK := parseArea(rec["totArea"])
		buildings = append(buildings, providers.Building{
			Address:               rec["platPlc"],
			SiteArea:              siteArea,
			TotalFloorArea:        floorArea,
			Name:                  rec["bldNm"],
			MainUse:               rec["mainPurpsCdNm"],
			SiteAreaUnknown:       !siteOK,
			TotalFloorAreaUnknown: !floorOK,
		})
	}

	return buildings, nil
}

// parseArea reports false for blank, negative or non-numeric ledger areas
func parseArea(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", ""), 64)
	if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
