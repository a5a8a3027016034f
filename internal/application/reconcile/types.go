package reconcile

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/eshaffer321/realestate-detective-backend/internal/domain/matcher"
	"github.com/eshaffer321/realestate-detective-backend/internal/domain/parcel"
	"github.com/eshaffer321/realestate-detective-backend/internal/domain/transaction"
)

// ErrInvalidRequest is returned for a request that cannot be reconciled
var ErrInvalidRequest = errors.New("invalid request")

var (
	districtPattern = regexp.MustCompile(`^\d{5}$`)
	periodPattern   = regexp.MustCompile(`^\d{6}$`)
)

// Request identifies one batch: a municipality, a month and a property type
type Request struct {
	DistrictCode string                   // 5-digit sigungu code (LAWD_CD)
	Period       string                   // YYYYMM
	PropertyType transaction.PropertyType // feed selector and tolerance policy
	IDPrefix     string                   // optional, prepended to result IDs
}

// Validate checks that every field is present and well formed
func (r Request) Validate() error {
	if r.DistrictCode == "" {
		return fmt.Errorf("%w: district code is required", ErrInvalidRequest)
	}
	if !districtPattern.MatchString(r.DistrictCode) {
		return fmt.Errorf("%w: district code %q must be 5 digits", ErrInvalidRequest, r.DistrictCode)
	}
	if r.Period == "" {
		return fmt.Errorf("%w: period is required", ErrInvalidRequest)
	}
	if !periodPattern.MatchString(r.Period) {
		return fmt.Errorf("%w: period %q must be YYYYMM", ErrInvalidRequest, r.Period)
	}
	if month, _ := strconv.Atoi(r.Period[4:]); month < 1 || month > 12 {
		return fmt.Errorf("%w: period %q has invalid month", ErrInvalidRequest, r.Period)
	}
	if r.PropertyType == "" {
		return fmt.Errorf("%w: property type is required", ErrInvalidRequest)
	}
	if _, err := transaction.ParsePropertyType(string(r.PropertyType)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}

// BatchResult is the outcome of one reconciliation batch
type BatchResult struct {
	Success bool                  `json:"success"`
	Message string                `json:"message,omitempty"`
	BatchID string                `json:"batchId"`
	Data    []matcher.MatchResult `json:"data"`
	// Dropped counts records that failed processing and were left out of Data
	Dropped int `json:"dropped,omitempty"`
}

// Counts tallies results by status
func (b *BatchResult) Counts() map[matcher.Status]int {
	counts := map[matcher.Status]int{
		matcher.StatusExact:    0,
		matcher.StatusMultiple: 0,
		matcher.StatusNone:     0,
	}
	for _, r := range b.Data {
		counts[r.Status]++
	}
	return counts
}

// LookupProvider supplies the subdivision lookup for a municipality
type LookupProvider interface {
	LookupFor(ctx context.Context, districtCode string) (parcel.Lookup, error)
}

// StaticLookups is a LookupProvider backed by an in-memory map
type StaticLookups map[string]parcel.Lookup

// LookupFor returns the lookup registered for districtCode
func (s StaticLookups) LookupFor(_ context.Context, districtCode string) (parcel.Lookup, error) {
	lookup, ok := s[districtCode]
	if !ok {
		return nil, fmt.Errorf("no subdivision table for district %s", districtCode)
	}
	return lookup, nil
}
