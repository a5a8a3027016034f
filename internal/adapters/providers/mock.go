package providers

import (
	"context"
	"sync"
	"time"

	"github.com/eshaffer321/realestate-detective-backend/internal/domain/transaction"
)

// StubRegistry is an in-memory BuildingRegistry for testing.
// Safe for concurrent use.
type StubRegistry struct {
	mu        sync.Mutex
	buildings map[RegistryQuery][]Building
	errs      map[RegistryQuery]error
	calls     []RegistryQuery

	// Delay is applied before every reply; the context deadline still applies
	Delay time.Duration
	// Err, when set, is returned for every query
	Err error
}

// Compile-time check that StubRegistry implements BuildingRegistry
var _ BuildingRegistry = (*StubRegistry)(nil)

// NewStubRegistry creates an empty stub registry
func NewStubRegistry() *StubRegistry {
	return &StubRegistry{
		buildings: make(map[RegistryQuery][]Building),
		errs:      make(map[RegistryQuery]error),
	}
}

// Add registers the buildings returned for q
func (s *StubRegistry) Add(q RegistryQuery, buildings ...Building) *StubRegistry {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buildings[q] = append(s.buildings[q], buildings...)
	return s
}

// FailOn makes queries for q return err
func (s *StubRegistry) FailOn(q RegistryQuery, err error) *StubRegistry {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[q] = err
	return s
}

// Name returns the stub name
func (s *StubRegistry) Name() string {
	return "stub-registry"
}

// GetRateLimit returns zero; the stub is never throttled
func (s *StubRegistry) GetRateLimit() time.Duration {
	return 0
}

// FetchCandidates returns the registered buildings for q
func (s *StubRegistry) FetchCandidates(ctx context.Context, q RegistryQuery) ([]Building, error) {
	s.mu.Lock()
	s.calls = append(s.calls, q)
	delay := s.Delay
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}
	if err, ok := s.errs[q]; ok {
		return nil, err
	}
	out := make([]Building, len(s.buildings[q]))
	copy(out, s.buildings[q])
	return out, nil
}

// Calls returns every query received so far
func (s *StubRegistry) Calls() []RegistryQuery {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RegistryQuery, len(s.calls))
	copy(out, s.calls)
	return out
}

// StubFeed is an in-memory TransactionFeed for testing
type StubFeed struct {
	mu      sync.Mutex
	records map[FeedQuery][]transaction.RawRecord
	errs    map[FeedQuery]error
	calls   []FeedQuery
}

// Compile-time check that StubFeed implements TransactionFeed
var _ TransactionFeed = (*StubFeed)(nil)

// NewStubFeed creates an empty stub feed
func NewStubFeed() *StubFeed {
	return &StubFeed{
		records: make(map[FeedQuery][]transaction.RawRecord),
		errs:    make(map[FeedQuery]error),
	}
}

// Add registers records returned for q
func (s *StubFeed) Add(q FeedQuery, records ...transaction.RawRecord) *StubFeed {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[q] = append(s.records[q], records...)
	return s
}

// FailOn makes queries for q return err
func (s *StubFeed) FailOn(q FeedQuery, err error) *StubFeed {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[q] = err
	return s
}

// Name returns the stub name
func (s *StubFeed) Name() string {
	return "stub-feed"
}

// GetRateLimit returns zero
func (s *StubFeed) GetRateLimit() time.Duration {
	return 0
}

// FetchTransactions returns the registered records for q
func (s *StubFeed) FetchTransactions(_ context.Context, q FeedQuery) ([]transaction.RawRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, q)
	if err, ok := s.errs[q]; ok {
		return nil, err
	}
	out := make([]transaction.RawRecord, len(s.records[q]))
	copy(out, s.records[q])
	return out, nil
}

// Calls returns every query received so far
func (s *StubFeed) Calls() []FeedQuery {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]FeedQuery, len(s.calls))
	copy(out, s.calls)
	return out
}
