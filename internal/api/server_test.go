package api_test

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/realestate-detective-backend/internal/adapters/providers"
	"github.com/eshaffer321/realestate-detective-backend/internal/api"
	"github.com/eshaffer321/realestate-detective-backend/internal/api/dto"
	"github.com/eshaffer321/realestate-detective-backend/internal/application/reconcile"
	"github.com/eshaffer321/realestate-detective-backend/internal/application/service"
	"github.com/eshaffer321/realestate-detective-backend/internal/domain/matcher"
	"github.com/eshaffer321/realestate-detective-backend/internal/domain/transaction"
	"github.com/eshaffer321/realestate-detective-backend/internal/infrastructure/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	server   *api.Server
	repo     *storage.MockRepository
	feed     *providers.StubFeed
	registry *providers.StubRegistry
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	repo := storage.NewMockRepository().AddMunicipality(
		storage.Municipality{Code: "11680", ProvinceCode: "11", ProvinceName: "서울특별시", Name: "강남구"},
		map[string]string{"역삼동": "10100", "삼성동": "10500"},
	)
	feed := providers.NewStubFeed()
	registry := providers.NewStubRegistry()

	m := matcher.NewMatcher(matcher.DefaultConfig(), matcher.NewCandidateFetcher(registry, time.Second, logger))
	orchestrator := reconcile.NewOrchestrator(m, repo, logger)
	search := service.NewSearchService(feed, orchestrator, logger)

	return &testServer{
		server:   api.NewServer(api.DefaultConfig(), repo, search, logger),
		repo:     repo,
		feed:     feed,
		registry: registry,
	}
}

func (ts *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	ts.server.Router().ServeHTTP(rec, req)
	return rec
}

func yeoksamTrade(jibun, land, build string) transaction.RawRecord {
	return transaction.RawRecord{
		"거래금액": "150,000",
		"년":    "2024", "월": "3", "일": "15",
		"법정동":  "역삼동",
		"지번":   jibun,
		"대지면적": land,
		"건물면적": build,
	}
}

func TestServer_HealthEndpoint(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)

	var response dto.HealthResponse
	err := json.NewDecoder(rec.Body).Decode(&response)
	require.NoError(t, err)
	assert.Equal(t, "ok", response.Status)
}

func TestServer_SearchEndpoint(t *testing.T) {
	t.Run("POST /api/search reconciles one month", func(t *testing.T) {
		ts := newTestServer(t)
		ts.feed.Add(providers.FeedQuery{PropertyType: transaction.Commercial, DistrictCode: "11680", Period: "202403"},
			yeoksamTrade("123-45", "200", "1000"),
			yeoksamTrade("9", "50", "80"),
		)
		ts.registry.Add(
			providers.RegistryQuery{DistrictCode: "11680", SubdivisionCode: "10100", Lot: "0123", SubLot: "0045"},
			providers.Building{Address: "서울특별시 강남구 역삼동 123-45", SiteArea: 200.4, TotalFloorArea: 1500},
		)

		rec := ts.do(http.MethodPost, "/api/search", `{"regionCode":"11680","ymd":"202403"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp dto.SearchResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.NotEmpty(t, resp.BatchID)
		require.Len(t, resp.Data, 2)

		assert.Equal(t, "trade-0", resp.Data[0].ID)
		assert.Equal(t, matcher.StatusExact, resp.Data[0].Status)
		assert.Equal(t, []string{"서울특별시 강남구 역삼동 123-45"}, resp.Data[0].MatchedAddress)
		assert.True(t, resp.Data[0].Similarity.Land)
		assert.False(t, resp.Data[0].Similarity.Building)

		assert.Equal(t, matcher.StatusNone, resp.Data[1].Status)
		assert.Equal(t, []string{"서울특별시 강남구 역삼동 9"}, resp.Data[1].MatchedAddress)
	})

	t.Run("feed outage is reported as an empty successful batch", func(t *testing.T) {
		ts := newTestServer(t)
		ts.feed.FailOn(providers.FeedQuery{PropertyType: transaction.Commercial, DistrictCode: "11680", Period: "202403"},
			errors.New("connection reset"))

		rec := ts.do(http.MethodPost, "/api/search", `{"regionCode":"11680","ymd":"202403"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp dto.SearchResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Empty(t, resp.Data)
		assert.NotEmpty(t, resp.Message)
	})

	t.Run("bad period is 400", func(t *testing.T) {
		ts := newTestServer(t)

		rec := ts.do(http.MethodPost, "/api/search", `{"regionCode":"11680","ymd":"2024-03"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, ts.feed.Calls())
	})
}

func TestServer_SearchRangeEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.feed.Add(providers.FeedQuery{PropertyType: transaction.Land, DistrictCode: "11680", Period: "202401"},
		transaction.RawRecord{"년": "2024", "월": "1", "일": "5", "법정동": "삼성동", "지번": "7", "거래면적": "300"},
	)
	ts.feed.Add(providers.FeedQuery{PropertyType: transaction.Land, DistrictCode: "11680", Period: "202402"},
		transaction.RawRecord{"년": "2024", "월": "2", "일": "20", "법정동": "삼성동", "지번": "8", "거래면적": "300"},
	)

	rec := ts.do(http.MethodPost, "/api/search/range",
		`{"regionCode":"11680","start":"2024-01-01","end":"2024-02-29","propertyTypes":["land"]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.RangeSearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "2024-02-20", resp.Data[0].Transaction.DealDate())
	assert.Equal(t, 2, resp.Counts[matcher.StatusNone])
	assert.Len(t, resp.Batches, 2)
	assert.Len(t, ts.feed.Calls(), 2)
}

func TestServer_RegionsEndpoints(t *testing.T) {
	ts := newTestServer(t)

	t.Run("GET /api/regions returns the tree", func(t *testing.T) {
		rec := ts.do(http.MethodGet, "/api/regions", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp dto.RegionsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 1)
		assert.Equal(t, "11", resp.Data[0].Code)
	})

	t.Run("GET /api/regions/:code returns 404 for missing code", func(t *testing.T) {
		rec := ts.do(http.MethodGet, "/api/regions/00000", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("GET /api/property-types lists every type", func(t *testing.T) {
		rec := ts.do(http.MethodGet, "/api/property-types", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp dto.PropertyTypesResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp.Data, len(transaction.AllPropertyTypes))
	})
}

func TestServer_WithoutSearch(t *testing.T) {
	server := api.NewServer(api.DefaultConfig(), storage.NewMockRepository(), nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_CORS(t *testing.T) {
	ts := newTestServer(t)

	t.Run("sets CORS headers for allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rec := httptest.NewRecorder()

		ts.server.Router().ServeHTTP(rec, req)

		assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("handles OPTIONS preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/search", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()

		ts.server.Router().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}
