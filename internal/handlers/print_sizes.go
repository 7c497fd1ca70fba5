package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pet3d-backend/internal/models"
	"pet3d-backend/internal/services"
)

type PrintSizesHandler struct {
	sizes *services.PrintSizeService
}

func NewPrintSizesHandler(sizes *services.PrintSizeService) *PrintSizesHandler {
	return &PrintSizesHandler{sizes: sizes}
}

// ListPrintSizes godoc
// @Summary     List print sizes
// @Description Returns the active print size catalog with prices in USD
// @Tags        print-sizes
// @Produce     json
// @Success     200 {object} models.PrintSizeListResponse
// @Router      /print-sizes [get]
func (h *PrintSizesHandler) ListPrintSizes(c *gin.Context) {
	sizes, err := h.sizes.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	resp := models.PrintSizeListResponse{PrintSizes: make([]models.PrintSizeResponse, 0, len(sizes))}
	for i := range sizes {
		resp.PrintSizes = append(resp.PrintSizes, models.NewPrintSizeResponse(&sizes[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// GetPrintSize godoc
// @Summary     Get a print size
// @Tags        print-sizes
// @Produce     json
// @Param       id path string true "Print size ID (UUID)"
// @Success     200 {object} models.PrintSizeResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /print-sizes/{id} [get]
func (h *PrintSizesHandler) GetPrintSize(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	size, err := h.sizes.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewPrintSizeResponse(size))
}
