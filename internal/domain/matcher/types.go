package matcher

import (
	"time"

	"github.com/eshaffer321/realestate-detective-backend/internal/adapters/providers"
	"github.com/eshaffer321/realestate-detective-backend/internal/domain/transaction"
)

// Combine selects how the land and building checks are joined
type Combine string

const (
	CombineAny Combine = "any" // land OR building
	CombineAll Combine = "all" // land AND building
)

// Policy holds the tolerances for one property type
type Policy struct {
	LandTolerance  float64 // m², strict less-than
	BuildTolerance float64 // m², strict less-than
	Combine        Combine
}

// Config holds matcher configuration
type Config struct {
	Policies        map[transaction.PropertyType]Policy
	DefaultPolicy   Policy        // used for types missing from Policies
	RegistryTimeout time.Duration // per lookup (default: 10s)
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Policies: map[transaction.PropertyType]Policy{
			transaction.Apartment:     {LandTolerance: 1.0, BuildTolerance: 30.0, Combine: CombineAny},
			transaction.Commercial:    {LandTolerance: 1.0, BuildTolerance: 10.0, Combine: CombineAny},
			transaction.RowHouse:      {LandTolerance: 1.0, BuildTolerance: 30.0, Combine: CombineAny},
			transaction.DetachedHouse: {LandTolerance: 1.0, BuildTolerance: 10.0, Combine: CombineAny},
			transaction.Factory:       {LandTolerance: 1.0, BuildTolerance: 10.0, Combine: CombineAny},
			transaction.Land:          {LandTolerance: 1.0, BuildTolerance: 0, Combine: CombineAll},
		},
		DefaultPolicy:   Policy{LandTolerance: 1.0, BuildTolerance: 10.0, Combine: CombineAny},
		RegistryTimeout: 10 * time.Second,
	}
}

// PolicyFor returns the policy for a property type
func (c Config) PolicyFor(pt transaction.PropertyType) Policy {
	if p, ok := c.Policies[pt]; ok {
		return p
	}
	return c.DefaultPolicy
}

// Status classifies a reconciliation outcome
type Status string

const (
	StatusExact    Status = "exact"
	StatusMultiple Status = "multiple"
	StatusNone     Status = "none"
)

// Similarity reports which fields agreed with the chosen building.
// Zoning is not compared and is always true.
type Similarity struct {
	Land     bool `json:"land"`
	Building bool `json:"building"`
	Zoning   bool `json:"zoning"`
}

// Candidate is a registry building considered for a transaction
type Candidate = providers.Building

// MatchResult is the reconciliation outcome for one transaction
type MatchResult struct {
	ID             string                           `json:"id"`
	Status         Status                           `json:"status"`
	Transaction    transaction.CanonicalTransaction `json:"tradeData"`
	MatchedAddress []string                         `json:"matchedAddress"`
	Similarity     Similarity                       `json:"similarity"`
}
