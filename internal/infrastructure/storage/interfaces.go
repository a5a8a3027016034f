package storage

import (
	"context"
	"errors"

	"github.com/eshaffer321/realestate-detective-backend/internal/domain/parcel"
)

// ErrNotFound is returned when a region does not exist
var ErrNotFound = errors.New("region not found")

// Repository defines the complete storage interface.
// This interface allows swapping implementations and makes testing with mocks straightforward.
type Repository interface {
	RegionRepository
	Close() error
}

// RegionRepository serves the administrative region directory
type RegionRepository interface {
	// ListProvinces returns all provinces ordered by code
	ListProvinces(ctx context.Context) ([]Province, error)

	// ListMunicipalities returns the municipalities of a province ordered by code.
	// An empty provinceCode returns every municipality.
	ListMunicipalities(ctx context.Context, provinceCode string) ([]Municipality, error)

	// GetMunicipality returns one municipality or ErrNotFound
	GetMunicipality(ctx context.Context, code string) (*Municipality, error)

	// ListSubdivisions returns the subdivisions of a municipality ordered by code
	ListSubdivisions(ctx context.Context, municipalityCode string) ([]Subdivision, error)

	// UpsertSubdivision adds or renames a subdivision
	UpsertSubdivision(ctx context.Context, sub Subdivision) error

	// RegionTree returns the full directory as a tree
	RegionTree(ctx context.Context) ([]RegionTree, error)

	// LookupFor builds the subdivision lookup for a municipality, or ErrNotFound
	LookupFor(ctx context.Context, municipalityCode string) (parcel.Lookup, error)
}
