package dto

import (
	"time"

	"github.com/eshaffer321/realestate-detective-backend/internal/application/reconcile"
	"github.com/eshaffer321/realestate-detective-backend/internal/application/service"
	"github.com/eshaffer321/realestate-detective-backend/internal/domain/matcher"
	"github.com/eshaffer321/realestate-detective-backend/internal/domain/transaction"
	"github.com/eshaffer321/realestate-detective-backend/internal/infrastructure/storage"
)

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// NewHealthResponse creates a healthy response stamped with the current time.
func NewHealthResponse() HealthResponse {
	return HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// SearchResponse is returned by POST /api/search.
type SearchResponse struct {
	Success bool                  `json:"success"`
	Message string                `json:"message,omitempty"`
	BatchID string                `json:"batchId,omitempty"`
	Data    []matcher.MatchResult `json:"data"`
}

// NewSearchResponse converts a reconciliation batch.
func NewSearchResponse(b *reconcile.BatchResult) SearchResponse {
	data := b.Data
	if data == nil {
		data = []matcher.MatchResult{}
	}
	return SearchResponse{
		Success: b.Success,
		Message: b.Message,
		BatchID: b.BatchID,
		Data:    data,
	}
}

// RangeSearchResponse is returned by POST /api/search/range.
type RangeSearchResponse struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message,omitempty"`
	Data    []matcher.MatchResult  `json:"data"`
	Batches []service.BatchSummary `json:"batches"`
	Counts  map[matcher.Status]int `json:"counts"`
}

// NewRangeSearchResponse converts a merged search result.
func NewRangeSearchResponse(r *service.SearchResult) RangeSearchResponse {
	counts := map[matcher.Status]int{
		matcher.StatusExact:    0,
		matcher.StatusMultiple: 0,
		matcher.StatusNone:     0,
	}
	for _, m := range r.Data {
		counts[m.Status]++
	}
	return RangeSearchResponse{
		Success: r.Success,
		Message: r.Message,
		Data:    r.Data,
		Batches: r.Batches,
		Counts:  counts,
	}
}

// RegionsResponse is returned by GET /api/regions.
type RegionsResponse struct {
	Success bool                 `json:"success"`
	Data    []storage.RegionTree `json:"data"`
}

// MunicipalityResponse is returned by GET /api/regions/:code.
type MunicipalityResponse struct {
	Success bool                     `json:"success"`
	Data    storage.MunicipalityNode `json:"data"`
}

// PropertyTypeResponse describes one supported property type and its tolerance policy.
type PropertyTypeResponse struct {
	Tag            transaction.PropertyType `json:"tag"`
	HasStructure   bool                     `json:"hasStructure"`
	LandTolerance  float64                  `json:"landTolerance"`
	BuildTolerance float64                  `json:"buildTolerance,omitempty"`
	Combine        matcher.Combine          `json:"combine"`
}

// PropertyTypesResponse is returned by GET /api/property-types.
type PropertyTypesResponse struct {
	Success bool                   `json:"success"`
	Data    []PropertyTypeResponse `json:"data"`
}

// NewPropertyTypesResponse lists every property type with the policy in effect.
func NewPropertyTypesResponse(cfg matcher.Config) PropertyTypesResponse {
	out := make([]PropertyTypeResponse, 0, len(transaction.AllPropertyTypes))
	for _, pt := range transaction.AllPropertyTypes {
		p := cfg.PolicyFor(pt)
		item := PropertyTypeResponse{
			Tag:           pt,
			HasStructure:  pt.HasStructure(),
			LandTolerance: p.LandTolerance,
			Combine:       p.Combine,
		}
		if pt.HasStructure() {
			item.BuildTolerance = p.BuildTolerance
		}
		out = append(out, item)
	}
	return PropertyTypesResponse{Success: true, Data: out}
}
