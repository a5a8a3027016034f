package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/eshaffer321/realestate-detective-backend/internal/domain/parcel"
)

// MockRepository is an in-memory implementation of Repository for testing.
// It stores all data in maps, making tests fast and isolated.
type MockRepository struct {
	mu             sync.Mutex
	provinces      map[string]Province
	municipalities map[string]Municipality
	subdivisions   map[string][]Subdivision // keyed by municipality code

	// Hooks for test assertions
	LookupForCalls []string

	// Error injection for testing error paths
	ListErr   error
	LookupErr error
}

// Compile-time check that MockRepository implements Repository
var _ Repository = (*MockRepository)(nil)

// NewMockRepository creates a new mock repository for testing
func NewMockRepository() *MockRepository {
	return &MockRepository{
		provinces:      make(map[string]Province),
		municipalities: make(map[string]Municipality),
		subdivisions:   make(map[string][]Subdivision),
	}
}

// AddMunicipality registers a municipality and its subdivisions (name -> code)
func (m *MockRepository) AddMunicipality(muni Municipality, subs map[string]string) *MockRepository {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.provinces[muni.ProvinceCode]; !ok {
		m.provinces[muni.ProvinceCode] = Province{Code: muni.ProvinceCode, Name: muni.ProvinceName}
	}
	m.municipalities[muni.Code] = muni
	for name, code := range subs {
		m.subdivisions[muni.Code] = append(m.subdivisions[muni.Code], Subdivision{
			MunicipalityCode: muni.Code,
			Code:             code,
			Name:             name,
		})
	}
	sortSubdivisions(m.subdivisions[muni.Code])
	return m
}

func (m *MockRepository) ListProvinces(_ context.Context) ([]Province, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := make([]Province, 0, len(m.provinces))
	for _, p := range m.provinces {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (m *MockRepository) ListMunicipalities(_ context.Context, provinceCode string) ([]Municipality, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	var out []Municipality
	for _, muni := range m.municipalities {
		if provinceCode == "" || muni.ProvinceCode == provinceCode {
			out = append(out, muni)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (m *MockRepository) GetMunicipality(_ context.Context, code string) (*Municipality, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	muni, ok := m.municipalities[code]
	if !ok {
		return nil, fmt.Errorf("%w: municipality %s", ErrNotFound, code)
	}
	return &muni, nil
}

func (m *MockRepository) ListSubdivisions(_ context.Context, municipalityCode string) ([]Subdivision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := make([]Subdivision, len(m.subdivisions[municipalityCode]))
	copy(out, m.subdivisions[municipalityCode])
	return out, nil
}

func (m *MockRepository) UpsertSubdivision(_ context.Context, sub Subdivision) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.municipalities[sub.MunicipalityCode]; !ok {
		return fmt.Errorf("%w: municipality %s", ErrNotFound, sub.MunicipalityCode)
	}
	subs := m.subdivisions[sub.MunicipalityCode]
	for i := range subs {
		if subs[i].Code == sub.Code {
			subs[i].Name = sub.Name
			return nil
		}
	}
	m.subdivisions[sub.MunicipalityCode] = append(subs, sub)
	sortSubdivisions(m.subdivisions[sub.MunicipalityCode])
	return nil
}

func (m *MockRepository) RegionTree(ctx context.Context) ([]RegionTree, error) {
	provinces, err := m.ListProvinces(ctx)
	if err != nil {
		return nil, err
	}
	tree := make([]RegionTree, 0, len(provinces))
	for _, p := range provinces {
		munis, _ := m.ListMunicipalities(ctx, p.Code)
		node := RegionTree{Province: p, Municipalities: make([]MunicipalityNode, 0, len(munis))}
		for _, muni := range munis {
			subs, _ := m.ListSubdivisions(ctx, muni.Code)
			node.Municipalities = append(node.Municipalities, MunicipalityNode{Municipality: muni, Subdivisions: subs})
		}
		tree = append(tree, node)
	}
	return tree, nil
}

func (m *MockRepository) LookupFor(ctx context.Context, municipalityCode string) (parcel.Lookup, error) {
	m.mu.Lock()
	m.LookupForCalls = append(m.LookupForCalls, municipalityCode)
	lookupErr := m.LookupErr
	m.mu.Unlock()

	if lookupErr != nil {
		return nil, lookupErr
	}
	muni, err := m.GetMunicipality(ctx, municipalityCode)
	if err != nil {
		return nil, err
	}
	subs, _ := m.ListSubdivisions(ctx, municipalityCode)
	return lookupFrom(*muni, subs), nil
}

func (m *MockRepository) Close() error {
	return nil
}

func sortSubdivisions(subs []Subdivision) {
	sort.Slice(subs, func(i, j int) bool { return subs[i].Code < subs[j].Code })
}
