package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pet3d-backend/internal/models"
	"pet3d-backend/internal/services"
)

type ModelsHandler struct {
	models *services.ModelService
}

func NewModelsHandler(svc *services.ModelService) *ModelsHandler {
	return &ModelsHandler{models: svc}
}

// CreateModel godoc
// @Summary     Generate a 3D model
// @Description Submits one of the caller's pet photos to the 3D generation provider.
// @Description The model starts in "processing"; poll /models/{id}/status until it completes or fails.
// @Tags        models
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.CreateModelRequest true "Source pet image"
// @Success     201 {object} models.ModelResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /models [post]
func (h *ModelsHandler) CreateModel(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}
	var req models.CreateModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	imageID, err := uuid.Parse(req.PetImageID)
	if err != nil {
		badRequest(c, "pet_image_id must be a UUID")
		return
	}

	m, err := h.models.Submit(c.Request.Context(), userID, imageID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.NewModelResponse(m))
}

// ListModels godoc
// @Summary     List 3D models
// @Tags        models
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.ModelListResponse
// @Router      /models [get]
func (h *ModelsHandler) ListModels(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}
	list, err := h.models.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	resp := models.ModelListResponse{Models: make([]models.ModelResponse, 0, len(list))}
	for i := range list {
		resp.Models = append(resp.Models, models.NewModelResponse(&list[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// GetModel godoc
// @Summary     Get a 3D model
// @Description Returns the stored row without contacting the provider.
// @Tags        models
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Model ID (UUID)"
// @Success     200 {object} models.ModelResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /models/{id} [get]
func (h *ModelsHandler) GetModel(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	m, err := h.models.Get(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewModelResponse(m))
}

// CheckStatus godoc
// @Summary     Refresh 3D model status
// @Description Asks the provider for the job status of a processing model and applies it.
// @Description Completed and failed models are returned as stored. Rate limited per user.
// @Tags        models
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Model ID (UUID)"
// @Success     200 {object} models.ModelResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     429 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /models/{id}/status [get]
func (h *ModelsHandler) CheckStatus(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	m, err := h.models.CheckStatus(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewModelResponse(m))
}

// DeleteModel godoc
// @Summary     Delete a 3D model
// @Description Fails with 409 when the model has been ordered.
// @Tags        models
// @Security    Bearer
// @Param       id path string true "Model ID (UUID)"
// @Success     204
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /models/{id} [delete]
func (h *ModelsHandler) DeleteModel(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.models.Delete(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
