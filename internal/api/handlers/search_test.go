package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/realestate-detective-backend/internal/api/dto"
	"github.com/eshaffer321/realestate-detective-backend/internal/api/handlers"
	"github.com/eshaffer321/realestate-detective-backend/internal/application/reconcile"
	"github.com/eshaffer321/realestate-detective-backend/internal/application/service"
	"github.com/eshaffer321/realestate-detective-backend/internal/domain/matcher"
	"github.com/eshaffer321/realestate-detective-backend/internal/domain/transaction"
)

// MockSearcher implements handlers.Searcher for testing
type MockSearcher struct {
	mock.Mock
}

var _ handlers.Searcher = (*MockSearcher)(nil)

func (m *MockSearcher) SearchMonth(ctx context.Context, regionCode, ymd string, pt transaction.PropertyType) (*reconcile.BatchResult, error) {
	args := m.Called(ctx, regionCode, ymd, pt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reconcile.BatchResult), args.Error(1)
}

func (m *MockSearcher) Search(ctx context.Context, req service.SearchRequest) (*service.SearchResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SearchResult), args.Error(1)
}

func newSearchRouter(s handlers.Searcher) *gin.Engine {
	h := handlers.NewSearchHandler(s, nil)
	router := gin.New()
	router.POST("/api/search", h.Search)
	router.POST("/api/search/range", h.SearchRange)
	return router
}

func post(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSearchHandler_Search(t *testing.T) {
	t.Run("returns batch for valid request", func(t *testing.T) {
		searcher := new(MockSearcher)
		searcher.On("SearchMonth", mock.Anything, "11680", "202403", transaction.Commercial).Return(&reconcile.BatchResult{
			Success: true,
			BatchID: "b-1",
			Data: []matcher.MatchResult{{
				ID:             "trade-0",
				Status:         matcher.StatusExact,
				MatchedAddress: []string{"서울특별시 강남구 역삼동 123-45"},
				Similarity:     matcher.Similarity{Land: true, Zoning: true},
			}},
		}, nil)

		rec := post(newSearchRouter(searcher), "/api/search", `{"regionCode":"11680","ymd":"202403"}`)

		assert.Equal(t, http.StatusOK, rec.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, true, body["success"])
		data := body["data"].([]any)
		require.Len(t, data, 1)
		first := data[0].(map[string]any)
		assert.Equal(t, "exact", first["status"])
		assert.Equal(t, []any{"서울특별시 강남구 역삼동 123-45"}, first["matchedAddress"])
		assert.Contains(t, first, "tradeData")
		searcher.AssertExpectations(t)
	})

	t.Run("passes property type", func(t *testing.T) {
		searcher := new(MockSearcher)
		searcher.On("SearchMonth", mock.Anything, "11680", "202403", transaction.Land).
			Return(&reconcile.BatchResult{Success: true}, nil)

		rec := post(newSearchRouter(searcher), "/api/search", `{"regionCode":"11680","ymd":"202403","propertyType":"land"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp dto.SearchResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotNil(t, resp.Data)
		searcher.AssertExpectations(t)
	})

	t.Run("degraded batch keeps success with message", func(t *testing.T) {
		searcher := new(MockSearcher)
		searcher.On("SearchMonth", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(&reconcile.BatchResult{Success: true, Message: "trade feed unavailable"}, nil)

		rec := post(newSearchRouter(searcher), "/api/search", `{"regionCode":"11680","ymd":"202403"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp dto.SearchResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "trade feed unavailable", resp.Message)
		assert.Empty(t, resp.Data)
	})

	tests := []struct {
		name string
		body string
		code string
	}{
		{name: "malformed JSON", body: `{"regionCode":`, code: dto.ErrCodeBadRequest},
		{name: "missing ymd", body: `{"regionCode":"11680"}`, code: dto.ErrCodeValidation},
		{name: "missing region", body: `{"ymd":"202403"}`, code: dto.ErrCodeValidation},
		{name: "unknown type", body: `{"regionCode":"11680","ymd":"202403","propertyType":"castle"}`, code: dto.ErrCodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			searcher := new(MockSearcher)

			rec := post(newSearchRouter(searcher), "/api/search", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var resp dto.APIError
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Equal(t, tt.code, resp.Code)
			assert.NotEmpty(t, resp.Error)
			searcher.AssertNotCalled(t, "SearchMonth", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}

	t.Run("service validation error is 400", func(t *testing.T) {
		searcher := new(MockSearcher)
		searcher.On("SearchMonth", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, reconcile.ErrInvalidRequest)

		rec := post(newSearchRouter(searcher), "/api/search", `{"regionCode":"abc","ymd":"202403"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unexpected error is 500", func(t *testing.T) {
		searcher := new(MockSearcher)
		searcher.On("SearchMonth", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, errors.New("boom"))

		rec := post(newSearchRouter(searcher), "/api/search", `{"regionCode":"11680","ymd":"202403"}`)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "boom")
	})
}

func TestSearchHandler_SearchRange(t *testing.T) {
	t.Run("converts property types and counts statuses", func(t *testing.T) {
		searcher := new(MockSearcher)
		expected := service.SearchRequest{
			RegionCode:    "11680",
			Start:         "2024-01-01",
			End:           "2024-02-29",
			PropertyTypes: []transaction.PropertyType{transaction.Commercial, transaction.Apartment},
		}
		searcher.On("Search", mock.Anything, expected).Return(&service.SearchResult{
			Success: true,
			Data: []matcher.MatchResult{
				{ID: "a", Status: matcher.StatusNone},
				{ID: "b", Status: matcher.StatusExact},
			},
			Batches: []service.BatchSummary{{Period: "202401", PropertyType: transaction.Commercial, Count: 2}},
		}, nil)

		rec := post(newSearchRouter(searcher), "/api/search/range",
			`{"regionCode":"11680","start":"2024-01-01","end":"2024-02-29","propertyTypes":["commercial","apt"]}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp dto.RangeSearchResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Len(t, resp.Data, 2)
		assert.Equal(t, 1, resp.Counts[matcher.StatusExact])
		assert.Equal(t, 1, resp.Counts[matcher.StatusNone])
		assert.Equal(t, 0, resp.Counts[matcher.StatusMultiple])
		searcher.AssertExpectations(t)
	})

	t.Run("unknown property type is 400", func(t *testing.T) {
		searcher := new(MockSearcher)

		rec := post(newSearchRouter(searcher), "/api/search/range",
			`{"regionCode":"11680","start":"2024-01-01","end":"2024-01-31","propertyTypes":["castle"]}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		searcher.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
	})

	t.Run("invalid range is 400", func(t *testing.T) {
		searcher := new(MockSearcher)
		searcher.On("Search", mock.Anything, mock.Anything).Return(nil, reconcile.ErrInvalidRequest)

		rec := post(newSearchRouter(searcher), "/api/search/range", `{"regionCode":"11680"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
