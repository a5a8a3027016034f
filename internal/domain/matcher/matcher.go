// Package matcher reconciles a canonical transaction with building-ledger rows.
//
// The matcher uses tolerance-based criteria per property type:
//   - Land area must be within LandTolerance (default 1 m²)
//   - Building area must be within BuildTolerance (10 or 30 m² by type)
//   - The two checks are joined with OR ("any") or AND ("all")
//   - Land transactions have no structure, so the building check always passes
//   - A ledger area the registry left blank never passes a check
//
// The first candidate in registry order that satisfies the policy wins. Nothing is
// ranked.
//
// Example usage:
//
//	fetcher := matcher.NewCandidateFetcher(registry, 10*time.Second, logger)
//	m := matcher.NewMatcher(matcher.DefaultConfig(), fetcher)
//	result := m.Match(ctx, tx, key, lookup.Municipality())
//	if result.Status == matcher.StatusExact {
//		// result.MatchedAddress[0] is the ledger address
//	}
package matcher

import (
	"context"
	"fmt"
	"math"

	"github.com/eshaffer321/realestate-detective-backend/internal/domain/parcel"
	"github.com/eshaffer321/realestate-detective-backend/internal/domain/transaction"
)

// Matcher classifies transactions against registry candidates
type Matcher struct {
	config  Config
	fetcher *CandidateFetcher
}

// NewMatcher creates a new matcher with the given config
func NewMatcher(config Config, fetcher *CandidateFetcher) *Matcher {
	return &Matcher{
		config:  config,
		fetcher: fetcher,
	}
}

// Config returns the matcher configuration
func (m *Matcher) Config() Config {
	return m.config
}

// Match resolves candidates for key and classifies tx against them.
// The registry is not called when the key is not resolvable.
func (m *Matcher) Match(ctx context.Context, tx transaction.CanonicalTransaction, key parcel.Key, municipality string) MatchResult {
	if !key.Resolvable() {
		return noneResult(tx, municipality)
	}

	candidates := m.fetcher.Fetch(ctx, key)
	return m.Classify(tx, candidates, municipality)
}

// Classify scores tx against an already fetched candidate list
func (m *Matcher) Classify(tx transaction.CanonicalTransaction, candidates []Candidate, municipality string) MatchResult {
	if len(candidates) == 0 {
		return noneResult(tx, municipality)
	}

	policy := m.config.PolicyFor(tx.PropertyType)

	for _, c := range candidates {
		land, building := m.compare(policy, tx, c)
		if !policy.accepts(land, building) {
			continue
		}
		return MatchResult{
			Status:         StatusExact,
			Transaction:    tx,
			MatchedAddress: []string{c.Address},
			Similarity:     Similarity{Land: land, Building: building, Zoning: true},
		}
	}

	addresses := make([]string, 0, len(candidates))
	for _, c := range candidates {
		addresses = append(addresses, c.Address)
	}

	return MatchResult{
		Status:         StatusMultiple,
		Transaction:    tx,
		MatchedAddress: addresses,
		Similarity:     Similarity{Zoning: true},
	}
}

// compare returns the per-field checks of tx against c
func (m *Matcher) compare(policy Policy, tx transaction.CanonicalTransaction, c Candidate) (land, building bool) {
	land = !c.SiteAreaUnknown && math.Abs(c.SiteArea-tx.LandArea) < policy.LandTolerance
	if !tx.PropertyType.HasStructure() {
		return land, true
	}
	building = !c.TotalFloorAreaUnknown && math.Abs(c.TotalFloorArea-tx.BuildArea) < policy.BuildTolerance
	return land, building
}

func (p Policy) accepts(land, building bool) bool {
	if p.Combine == CombineAll {
		return land && building
	}
	return land || building
}

// FallbackAddress composes the literal address used when no ledger row applies
func FallbackAddress(municipality string, tx transaction.CanonicalTransaction) string {
	return fmt.Sprintf("%s %s %s", municipality, tx.Subdivision, tx.Parcel)
}

func noneResult(tx transaction.CanonicalTransaction, municipality string) MatchResult {
	return MatchResult{
		Status:         StatusNone,
		Transaction:    tx,
		MatchedAddress: []string{FallbackAddress(municipality, tx)},
		Similarity:     Similarity{Zoning: true},
	}
}
