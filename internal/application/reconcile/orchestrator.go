// Package reconcile runs one batch of trade records through normalization,
// parcel resolution and registry matching.
//
// Records are processed concurrently. The output keeps the input order, so two
// runs over the same records against the same registry produce the same batch.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eshaffer321/realestate-detective-backend/internal/domain/matcher"
	"github.com/eshaffer321/realestate-detective-backend/internal/domain/parcel"
	"github.com/eshaffer321/realestate-detective-backend/internal/domain/transaction"
)

// DefaultMaxConcurrency bounds concurrent registry lookups per batch
const DefaultMaxConcurrency = 8

// Orchestrator reconciles batches of raw trade records
type Orchestrator struct {
	matcher        *matcher.Matcher
	lookups        LookupProvider
	maxConcurrency int
	logger         *slog.Logger
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithMaxConcurrency sets the number of records processed at once
func WithMaxConcurrency(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxConcurrency = n
		}
	}
}

// NewOrchestrator creates a batch orchestrator
func NewOrchestrator(m *matcher.Matcher, lookups LookupProvider, logger *slog.Logger, opts ...Option) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	o := &Orchestrator{
		matcher:        m,
		lookups:        lookups,
		maxConcurrency: DefaultMaxConcurrency,
		logger:         logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// outcome is the per-record slot filled by a worker
type outcome struct {
	result matcher.MatchResult
	ok     bool
}

// Reconcile classifies every record in the batch. It only returns an error for an
// invalid request; per-record failures drop that record.
func (o *Orchestrator) Reconcile(ctx context.Context, req Request, records []transaction.RawRecord) (*BatchResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	batchID := uuid.New().String()
	logger := o.logger.With(
		slog.String("batch_id", batchID),
		slog.String("district_code", req.DistrictCode),
		slog.String("period", req.Period),
		slog.String("property_type", req.PropertyType.String()),
	)

	lookup := o.lookupFor(ctx, req.DistrictCode, logger)
	start := time.Now()

	logger.Info("reconciling batch", "records", len(records))

	outcomes := make([]outcome, len(records))
	sem := make(chan struct{}, o.maxConcurrency)
	var wg sync.WaitGroup

	for i, raw := range records {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			// no worker slot after cancellation; classify without the registry
			outcomes[i] = o.processRecord(ctx, req, lookup, i, raw, logger)
			continue
		}
		wg.Add(1)
		go func(i int, raw transaction.RawRecord) {
			defer wg.Done()
			defer func() { <-sem }()
			outcomes[i] = o.processRecord(ctx, req, lookup, i, raw, logger)
		}(i, raw)
	}
	wg.Wait()

	result := &BatchResult{
		Success: true,
		BatchID: batchID,
		Data:    make([]matcher.MatchResult, 0, len(records)),
	}
	for _, out := range outcomes {
		if !out.ok {
			result.Dropped++
			continue
		}
		result.Data = append(result.Data, out.result)
	}
	if len(records) == 0 {
		result.Message = "no transactions for the requested period"
	}

	counts := result.Counts()
	logger.Info("batch reconciled",
		"results", len(result.Data),
		"exact", counts[matcher.StatusExact],
		"multiple", counts[matcher.StatusMultiple],
		"none", counts[matcher.StatusNone],
		"dropped", result.Dropped,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return result, nil
}

// processRecord runs one record through the pipeline. A panic or error leaves the
// slot empty. Once ctx is done the record is classified as none without a lookup.
func (o *Orchestrator) processRecord(
	ctx context.Context,
	req Request,
	lookup parcel.Lookup,
	index int,
	raw transaction.RawRecord,
	logger *slog.Logger,
) (out outcome) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("record processing panicked, dropping", "index", index, "panic", fmt.Sprint(r))
			out = outcome{}
		}
	}()

	tx, err := transaction.Normalize(raw, req.PropertyType)
	if err != nil {
		logger.Warn("dropping record", "index", index, "error", err)
		return outcome{}
	}

	var result matcher.MatchResult
	if ctx.Err() != nil {
		result = o.matcher.Classify(tx, nil, lookup.Municipality())
	} else {
		key := parcel.Resolve(tx, req.DistrictCode, lookup)
		result = o.matcher.Match(ctx, tx, key, lookup.Municipality())
	}
	result.ID = resultID(req.IDPrefix, index)

	logger.Debug("record classified",
		"id", result.ID,
		"status", result.Status,
		"dong", tx.Subdivision,
		"jibun", tx.Parcel,
	)

	return outcome{result: result, ok: true}
}

// lookupFor falls back to an empty table so unknown municipalities classify as none
func (o *Orchestrator) lookupFor(ctx context.Context, districtCode string, logger *slog.Logger) parcel.Lookup {
	if o.lookups != nil {
		lookup, err := o.lookups.LookupFor(ctx, districtCode)
		if err == nil && lookup != nil {
			return lookup
		}
		logger.Warn("no subdivision table, records will not resolve", "error", err)
	}
	return parcel.NewStaticLookup(districtCode, nil)
}

func resultID(prefix string, index int) string {
	if prefix == "" {
		return fmt.Sprintf("trade-%d", index)
	}
	return fmt.Sprintf("%s-trade-%d", prefix, index)
}
