package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/realestate-detective-backend/internal/api/dto"
	"github.com/eshaffer321/realestate-detective-backend/internal/domain/matcher"
	"github.com/eshaffer321/realestate-detective-backend/internal/infrastructure/storage"
)

// RegionsHandler serves the region directory.
type RegionsHandler struct {
	Base
	repo storage.RegionRepository
}

// NewRegionsHandler creates a new regions handler.
func NewRegionsHandler(repo storage.RegionRepository, logger *slog.Logger) *RegionsHandler {
	return &RegionsHandler{Base: NewBase(logger), repo: repo}
}

// List handles GET /api/regions.
func (h *RegionsHandler) List(c *gin.Context) {
	tree, err := h.repo.RegionTree(c.Request.Context())
	if err != nil {
		h.WriteServiceError(c, err)
		return
	}
	if tree == nil {
		tree = []storage.RegionTree{}
	}
	c.JSON(http.StatusOK, dto.RegionsResponse{Success: true, Data: tree})
}

// Get handles GET /api/regions/:code.
func (h *RegionsHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	code := c.Param("code")

	m, err := h.repo.GetMunicipality(ctx, code)
	if err != nil {
		h.WriteServiceError(c, err)
		return
	}

	subs, err := h.repo.ListSubdivisions(ctx, code)
	if err != nil {
		h.WriteServiceError(c, err)
		return
	}
	if subs == nil {
		subs = []storage.Subdivision{}
	}

	c.JSON(http.StatusOK, dto.MunicipalityResponse{
		Success: true,
		Data:    storage.MunicipalityNode{Municipality: *m, Subdivisions: subs},
	})
}

// PropertyTypesHandler lists the supported property types.
type PropertyTypesHandler struct {
	config matcher.Config
}

// NewPropertyTypesHandler creates a handler reporting the given policies.
func NewPropertyTypesHandler(cfg matcher.Config) *PropertyTypesHandler {
	return &PropertyTypesHandler{config: cfg}
}

// List handles GET /api/property-types.
func (h *PropertyTypesHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewPropertyTypesResponse(h.config))
}
