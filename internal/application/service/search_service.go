// Package service exposes the search use cases shared by the HTTP API and the CLI.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/eshaffer321/realestate-detective-backend/internal/adapters/providers"
	"github.com/eshaffer321/realestate-detective-backend/internal/application/reconcile"
	"github.com/eshaffer321/realestate-detective-backend/internal/domain/matcher"
	"github.com/eshaffer321/realestate-detective-backend/internal/domain/transaction"
)

const (
	dateLayout = "2006-01-02"

	// MaxSearchMonths caps the span of a range search
	MaxSearchMonths = 24

	// DefaultMaxParallelBatches bounds concurrent feed fetches in a range search
	DefaultMaxParallelBatches = 4
)

// SearchRequest holds parameters for a date-range search
type SearchRequest struct {
	RegionCode    string                     // 5-digit sigungu code
	Start         string                     // YYYY-MM-DD, inclusive
	End           string                     // YYYY-MM-DD, inclusive
	PropertyTypes []transaction.PropertyType // default: commercial
}

// BatchSummary describes one (month, property type) batch of a range search
type BatchSummary struct {
	Period       string                   `json:"period"`
	PropertyType transaction.PropertyType `json:"propertyType"`
	BatchID      string                   `json:"batchId,omitempty"`
	Count        int                      `json:"count"`
	Message      string                   `json:"message,omitempty"`
}

// SearchResult is the merged outcome of a range search
type SearchResult struct {
	Success bool                  `json:"success"`
	Message string                `json:"message,omitempty"`
	Data    []matcher.MatchResult `json:"data"`
	Batches []BatchSummary        `json:"batches"`
}

// SearchService fetches trades from the feed and reconciles them
type SearchService struct {
	feed               providers.TransactionFeed
	orchestrator       *reconcile.Orchestrator
	maxParallelBatches int
	logger             *slog.Logger
}

// NewSearchService creates a new search service
func NewSearchService(feed providers.TransactionFeed, orchestrator *reconcile.Orchestrator, logger *slog.Logger) *SearchService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchService{
		feed:               feed,
		orchestrator:       orchestrator,
		maxParallelBatches: DefaultMaxParallelBatches,
		logger:             logger,
	}
}

// SetMaxParallelBatches changes the number of batches fetched at once
func (s *SearchService) SetMaxParallelBatches(n int) {
	if n > 0 {
		s.maxParallelBatches = n
	}
}

// MaxParallelBatches returns the range-search batch bound
func (s *SearchService) MaxParallelBatches() int {
	return s.maxParallelBatches
}

// SearchMonth reconciles one month of one property type. Feed failures degrade to an
// empty successful batch with a message; only invalid requests return an error.
func (s *SearchService) SearchMonth(ctx context.Context, regionCode, ymd string, pt transaction.PropertyType) (*reconcile.BatchResult, error) {
	return s.searchMonth(ctx, reconcile.Request{
		DistrictCode: regionCode,
		Period:       ymd,
		PropertyType: pt,
	})
}

func (s *SearchService) searchMonth(ctx context.Context, req reconcile.Request) (*reconcile.BatchResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	records, err := s.feed.FetchTransactions(ctx, providers.FeedQuery{
		PropertyType: req.PropertyType,
		DistrictCode: req.DistrictCode,
		Period:       req.Period,
	})
	if err != nil {
		s.logger.Warn("trade feed failed, returning empty batch",
			"feed", s.feed.Name(),
			"district_code", req.DistrictCode,
			"period", req.Period,
			"property_type", req.PropertyType.String(),
			"error", err,
		)
		return &reconcile.BatchResult{
			Success: true,
			Message: fmt.Sprintf("trade feed unavailable for %s %s: %v", req.Period, req.PropertyType, err),
			Data:    []matcher.MatchResult{},
		}, nil
	}

	return s.orchestrator.Reconcile(ctx, req, records)
}

// Validate checks the request and fills in default property types
func (r *SearchRequest) Validate() (start, end time.Time, err error) {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", reconcile.ErrInvalidRequest, fmt.Sprintf(format, args...))
	}

	if r.RegionCode == "" {
		return start, end, invalid("region code is required")
	}
	if r.Start == "" || r.End == "" {
		return start, end, invalid("start and end dates are required")
	}
	if start, err = time.Parse(dateLayout, r.Start); err != nil {
		return start, end, invalid("start %q must be YYYY-MM-DD", r.Start)
	}
	if end, err = time.Parse(dateLayout, r.End); err != nil {
		return start, end, invalid("end %q must be YYYY-MM-DD", r.End)
	}
	if end.Before(start) {
		return start, end, invalid("end %s is before start %s", r.End, r.Start)
	}
	if n := len(ExpandMonths(start, end)); n > MaxSearchMonths {
		return start, end, invalid("range spans %d months, at most %d allowed", n, MaxSearchMonths)
	}
	if len(r.PropertyTypes) == 0 {
		r.PropertyTypes = []transaction.PropertyType{transaction.Commercial}
	}
	return start, end, nil
}

type batchJob struct {
	period string
	pt     transaction.PropertyType
}

// Search runs every (month, property type) batch in the range, merges the results,
// keeps trades dated within [Start, End] and sorts them newest first.
func (s *SearchService) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	start, end, err := req.Validate()
	if err != nil {
		return nil, err
	}

	var jobs []batchJob
	for _, month := range ExpandMonths(start, end) {
		for _, pt := range req.PropertyTypes {
			jobs = append(jobs, batchJob{period: month, pt: pt})
		}
	}

	s.logger.Info("range search",
		"region_code", req.RegionCode,
		"start", req.Start,
		"end", req.End,
		"batches", len(jobs),
	)

	batches := make([]*reconcile.BatchResult, len(jobs))
	errs := make([]error, len(jobs))
	sem := make(chan struct{}, s.maxParallelBatches)
	var wg sync.WaitGroup

	for i, job := range jobs {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, job batchJob) {
			defer wg.Done()
			defer func() { <-sem }()
			batches[i], errs[i] = s.searchMonth(ctx, reconcile.Request{
				DistrictCode: req.RegionCode,
				Period:       job.period,
				PropertyType: job.pt,
				IDPrefix:     job.period + "-" + job.pt.String(),
			})
		}(i, job)
	}
	wg.Wait()

	result := &SearchResult{
		Success: true,
		Data:    []matcher.MatchResult{},
		Batches: make([]BatchSummary, 0, len(jobs)),
	}
	var messages []string

	for i, job := range jobs {
		if errs[i] != nil {
			return nil, errs[i]
		}
		batch := batches[i]
		result.Batches = append(result.Batches, BatchSummary{
			Period:       job.period,
			PropertyType: job.pt,
			BatchID:      batch.BatchID,
			Count:        len(batch.Data),
			Message:      batch.Message,
		})
		if batch.BatchID == "" && batch.Message != "" {
			messages = append(messages, batch.Message)
		}
		result.Data = append(result.Data, batch.Data...)
	}

	result.Data = FilterByDealDate(result.Data, req.Start, req.End)
	SortNewestFirst(result.Data)

	if len(messages) > 0 {
		result.Message = strings.Join(messages, "; ")
	}

	return result, nil
}

// ExpandMonths returns every YYYYMM from start's month through end's month
func ExpandMonths(start, end time.Time) []string {
	var months []string
	current := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !current.After(last) {
		months = append(months, current.Format("200601"))
		current = current.AddDate(0, 1, 0)
	}
	return months
}

// FilterByDealDate keeps results whose deal date is within [start, end].
// A trade without a day ("00") is kept when its month is within the range.
func FilterByDealDate(results []matcher.MatchResult, start, end string) []matcher.MatchResult {
	out := results[:0]
	for _, r := range results {
		date := r.Transaction.DealDate()
		if len(date) < len(dateLayout) {
			continue
		}
		if r.Transaction.DealDay == "00" {
			month := date[:7]
			if month >= start[:7] && month <= end[:7] {
				out = append(out, r)
			}
			continue
		}
		if date >= start && date <= end {
			out = append(out, r)
		}
	}
	return out
}

// SortNewestFirst orders results by deal date, newest first, keeping batch order on ties
func SortNewestFirst(results []matcher.MatchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Transaction.DealDate() > results[j].Transaction.DealDate()
	})
}
