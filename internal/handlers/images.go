package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"pet3d-backend/internal/models"
	"pet3d-backend/internal/services"
)

type ImagesHandler struct {
	images   *services.ImageService
	maxBytes int64
}

func NewImagesHandler(images *services.ImageService, maxBytes int64) *ImagesHandler {
	return &ImagesHandler{images: images, maxBytes: maxBytes}
}

// UploadImage godoc
// @Summary     Upload a pet photo
// @Description Stores a pet photograph that 3D models can be generated from.
// @Description The file must be an image and no larger than the configured upload limit.
// @Tags        pet-images
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Param       file formData file true "Pet photo"
// @Success     201 {object} models.PetImageResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /pet-images [post]
func (h *ImagesHandler) UploadImage(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "multipart field \"file\" is required")
		return
	}
	f, err := fh.Open()
	if err != nil {
		badRequest(c, "could not read uploaded file")
		return
	}
	defer f.Close()

	// One byte over the limit is enough for the service to reject it.
	data, err := io.ReadAll(io.LimitReader(f, h.maxBytes+1))
	if err != nil {
		badRequest(c, "could not read uploaded file")
		return
	}

	img, err := h.images.Upload(c.Request.Context(), userID, services.UploadImageInput{
		FileName: fh.Filename,
		MimeType: fh.Header.Get("Content-Type"),
		Data:     data,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.NewPetImageResponse(img))
}

// ListImages godoc
// @Summary     List pet photos
// @Tags        pet-images
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.PetImageListResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /pet-images [get]
func (h *ImagesHandler) ListImages(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}
	images, err := h.images.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	resp := models.PetImageListResponse{Images: make([]models.PetImageResponse, 0, len(images))}
	for i := range images {
		resp.Images = append(resp.Images, models.NewPetImageResponse(&images[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// GetImage godoc
// @Summary     Get a pet photo
// @Tags        pet-images
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Pet image ID (UUID)"
// @Success     200 {object} models.PetImageResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /pet-images/{id} [get]
func (h *ImagesHandler) GetImage(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	img, err := h.images.Get(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewPetImageResponse(img))
}

// DeleteImage godoc
// @Summary     Delete a pet photo
// @Description Fails with 409 when a 3D model was generated from the photo.
// @Tags        pet-images
// @Security    Bearer
// @Param       id path string true "Pet image ID (UUID)"
// @Success     204
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /pet-images/{id} [delete]
func (h *ImagesHandler) DeleteImage(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.images.Delete(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
