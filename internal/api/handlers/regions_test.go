package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/realestate-detective-backend/internal/api/dto"
	"github.com/eshaffer321/realestate-detective-backend/internal/api/handlers"
	"github.com/eshaffer321/realestate-detective-backend/internal/domain/matcher"
	"github.com/eshaffer321/realestate-detective-backend/internal/domain/transaction"
	"github.com/eshaffer321/realestate-detective-backend/internal/infrastructure/storage"
)

func newRegionsRouter(repo storage.RegionRepository) *gin.Engine {
	h := handlers.NewRegionsHandler(repo, nil)
	router := gin.New()
	router.GET("/api/regions", h.List)
	router.GET("/api/regions/:code", h.Get)
	router.GET("/api/property-types", handlers.NewPropertyTypesHandler(matcher.DefaultConfig()).List)
	return router
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func gangnamRepo() *storage.MockRepository {
	return storage.NewMockRepository().AddMunicipality(
		storage.Municipality{Code: "11680", ProvinceCode: "11", ProvinceName: "서울특별시", Name: "강남구"},
		map[string]string{"역삼동": "10100", "삼성동": "10500"},
	)
}

func TestRegionsHandler_List(t *testing.T) {
	t.Run("returns region tree", func(t *testing.T) {
		rec := get(newRegionsRouter(gangnamRepo()), "/api/regions")

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp dto.RegionsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 1)
		assert.Equal(t, "서울특별시", resp.Data[0].Name)
		require.Len(t, resp.Data[0].Municipalities, 1)
		assert.Len(t, resp.Data[0].Municipalities[0].Subdivisions, 2)
	})

	t.Run("empty directory returns empty list", func(t *testing.T) {
		rec := get(newRegionsRouter(storage.NewMockRepository()), "/api/regions")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"success":true,"data":[]}`, rec.Body.String())
	})

	t.Run("storage error is 500", func(t *testing.T) {
		repo := gangnamRepo()
		repo.ListErr = errors.New("disk gone")

		rec := get(newRegionsRouter(repo), "/api/regions")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestRegionsHandler_Get(t *testing.T) {
	t.Run("returns municipality with subdivisions", func(t *testing.T) {
		rec := get(newRegionsRouter(gangnamRepo()), "/api/regions/11680")

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp dto.MunicipalityResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "강남구", resp.Data.Name)
		assert.Equal(t, "10100", resp.Data.Subdivisions[0].Code)
	})

	t.Run("unknown code is 404", func(t *testing.T) {
		rec := get(newRegionsRouter(gangnamRepo()), "/api/regions/99999")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		var resp dto.APIError
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, dto.ErrCodeNotFound, resp.Code)
	})
}

func TestPropertyTypesHandler_List(t *testing.T) {
	rec := get(newRegionsRouter(storage.NewMockRepository()), "/api/property-types")

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp dto.PropertyTypesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, len(transaction.AllPropertyTypes))

	byTag := map[transaction.PropertyType]dto.PropertyTypeResponse{}
	for _, item := range resp.Data {
		byTag[item.Tag] = item
	}
	assert.Equal(t, 30.0, byTag[transaction.Apartment].BuildTolerance)
	assert.False(t, byTag[transaction.Land].HasStructure)
	assert.Equal(t, matcher.CombineAll, byTag[transaction.Land].Combine)
}
