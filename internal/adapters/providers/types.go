package providers

import (
	"context"
	"errors"
	"time"

	"github.com/eshaffer321/realestate-detective-backend/internal/domain/transaction"
)

// ErrUpstream marks failures of an upstream open-data service
var ErrUpstream = errors.New("upstream service error")

// FeedQuery selects one month of trades for one municipality and property type
type FeedQuery struct {
	PropertyType transaction.PropertyType
	DistrictCode string // LAWD_CD, 5-digit sigungu code
	Period       string // DEAL_YMD, YYYYMM
}

// Building is one building-ledger row returned for a parcel
type Building struct {
	Address        string  `json:"address"`        // platPlc
	SiteArea       float64 `json:"siteArea"`       // platArea
	TotalFloorArea float64 `json:"totalFloorArea"` // totArea
	Name           string  `json:"name,omitempty"`
	MainUse        string  `json:"mainUse,omitempty"`

	// Set when the ledger left the area blank or unreadable. An unknown
	// area never satisfies a tolerance check.
	SiteAreaUnknown       bool `json:"siteAreaUnknown,omitempty"`
	TotalFloorAreaUnknown bool `json:"totalFloorAreaUnknown,omitempty"`
}

// RegistryQuery selects ledger rows for a parcel. Lot and SubLot are sent
// zero-padded to four digits.
type RegistryQuery struct {
	DistrictCode    string // sigunguCd
	SubdivisionCode string // bjdongCd
	Lot             string // bun
	SubLot          string // ji
}

// TransactionFeed delivers raw trade rows
type TransactionFeed interface {
	// Name identifies the feed in logs
	Name() string

	FetchTransactions(ctx context.Context, q FeedQuery) ([]transaction.RawRecord, error)

	// GetRateLimit returns the minimum spacing between requests
	GetRateLimit() time.Duration
}

// BuildingRegistry delivers candidate buildings for a parcel
type BuildingRegistry interface {
	Name() string

	FetchCandidates(ctx context.Context, q RegistryQuery) ([]Building, error)

	GetRateLimit() time.Duration
}
