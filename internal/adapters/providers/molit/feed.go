package molit

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/eshaffer321/realestate-detective-backend/internal/adapters/providers"
	"github.com/eshaffer321/realestate-detective-backend/internal/domain/transaction"
)

// feedOperations maps each property type to its RTMS operation
var feedOperations = map[transaction.PropertyType]string{
	transaction.Apartment:     "getRTMSDataSvcAptTrade",
	transaction.Commercial:    "getRTMSDataSvcNrgTrade",
	transaction.RowHouse:      "getRTMSDataSvcRHTrade",
	transaction.DetachedHouse: "getRTMSDataSvcSHTrade",
	transaction.Factory:       "getRTMSDataSvcInduTrade",
	transaction.Land:          "getRTMSDataSvcLandTrade",
}

// FeedClient implements providers.TransactionFeed for the RTMS trade services
type FeedClient struct {
	config    ClientConfig
	transport *transport
	logger    *slog.Logger
}

// Compile-time check that FeedClient implements TransactionFeed
var _ providers.TransactionFeed = (*FeedClient)(nil)

// NewFeedClient creates a trade-feed client. limiter may be shared with a
// RegistryClient; nil creates a private one.
func NewFeedClient(cfg ClientConfig, limiter *rate.Limiter, logger *slog.Logger) *FeedClient {
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()
	logger = logger.With(slog.String("provider", "molit-feed"))
	return &FeedClient{
		config:    cfg,
		transport: newTransport(cfg, limiter, logger),
		logger:    logger,
	}
}

// Name returns the provider identifier
func (c *FeedClient) Name() string {
	return "molit-feed"
}

// GetRateLimit returns the minimum spacing between requests
func (c *FeedClient) GetRateLimit() time.Duration {
	return c.transport.rateLimit
}

// Endpoint returns the full URL of the operation for pt
func (c *FeedClient) Endpoint(pt transaction.PropertyType) (string, error) {
	op, ok := feedOperations[pt]
	if !ok {
		return "", fmt.Errorf("no trade feed for property type %q", pt)
	}
	return c.config.FeedBaseURL + "/" + op, nil
}

// FetchTransactions fetches every page of trades for the query
func (c *FeedClient) FetchTransactions(ctx context.Context, q providers.FeedQuery) ([]transaction.RawRecord, error) {
	endpoint, err := c.Endpoint(q.PropertyType)
	if err != nil {
		return nil, err
	}

	c.logger.Info("fetching trades",
		slog.String("property_type", q.PropertyType.String()),
		slog.String("lawd_cd", q.DistrictCode),
		slog.String("deal_ymd", q.Period),
	)

	var all []transaction.RawRecord
	for page := 1; page <= c.config.MaxPages; page++ {
		params := url.Values{}
		params.Set("LAWD_CD", q.DistrictCode)
		params.Set("DEAL_YMD", q.Period)
		params.Set("numOfRows", strconv.Itoa(c.config.RowsPerPage))
		params.Set("pageNo", strconv.Itoa(page))

		body, err := c.transport.get(ctx, endpoint, params)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch trades page %d: %w", page, err)
		}

		env, err := decodeEnvelope(body)
		if err != nil {
			return nil, fmt.Errorf("failed to parse trades page %d: %w", page, err)
		}

		records := env.records()
		all = append(all, records...)

		if len(records) == 0 || env.Body.TotalCount <= len(all) {
			break
		}
	}

	c.logger.Info("fetched trades", slog.Int("total", len(all)))

	return all, nil
}
