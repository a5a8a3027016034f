package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/realestate-detective-backend/internal/api/dto"
	"github.com/eshaffer321/realestate-detective-backend/internal/application/reconcile"
	"github.com/eshaffer321/realestate-detective-backend/internal/application/service"
	"github.com/eshaffer321/realestate-detective-backend/internal/domain/transaction"
)

// Searcher runs reconciliation searches.
type Searcher interface {
	SearchMonth(ctx context.Context, regionCode, ymd string, pt transaction.PropertyType) (*reconcile.BatchResult, error)
	Search(ctx context.Context, req service.SearchRequest) (*service.SearchResult, error)
}

// SearchHandler handles reconciliation search requests.
type SearchHandler struct {
	Base
	search Searcher
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(search Searcher, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{Base: NewBase(logger), search: search}
}

// Search handles POST /api/search.
func (h *SearchHandler) Search(c *gin.Context) {
	var req dto.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.WriteError(c, http.StatusBadRequest, dto.BadRequestError("invalid JSON body"))
		return
	}

	if req.RegionCode == "" || req.YMD == "" {
		h.WriteError(c, http.StatusBadRequest, dto.ValidationError("regionCode and ymd are required"))
		return
	}

	pt := transaction.Commercial
	if req.PropertyType != "" {
		parsed, err := transaction.ParsePropertyType(req.PropertyType)
		if err != nil {
			h.WriteError(c, http.StatusBadRequest, dto.ValidationError(err.Error()))
			return
		}
		pt = parsed
	}

	batch, err := h.search.SearchMonth(c.Request.Context(), req.RegionCode, req.YMD, pt)
	if err != nil {
		h.WriteServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSearchResponse(batch))
}

// SearchRange handles POST /api/search/range.
func (h *SearchHandler) SearchRange(c *gin.Context) {
	var req dto.RangeSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.WriteError(c, http.StatusBadRequest, dto.BadRequestError("invalid JSON body"))
		return
	}

	types := make([]transaction.PropertyType, 0, len(req.PropertyTypes))
	for _, tag := range req.PropertyTypes {
		pt, err := transaction.ParsePropertyType(tag)
		if err != nil {
			h.WriteError(c, http.StatusBadRequest, dto.ValidationError(err.Error()))
			return
		}
		types = append(types, pt)
	}

	result, err := h.search.Search(c.Request.Context(), service.SearchRequest{
		RegionCode:    req.RegionCode,
		Start:         req.Start,
		End:           req.End,
		PropertyTypes: types,
	})
	if err != nil {
		h.WriteServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewRangeSearchResponse(result))
}
