package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pet3d-backend/internal/models"
	"pet3d-backend/internal/services"
)

type UsersHandler struct {
	users *services.UserService
}

func NewUsersHandler(users *services.UserService) *UsersHandler {
	return &UsersHandler{users: users}
}

// Me godoc
// @Summary     Current user
// @Description Returns the authenticated user's profile and role
// @Tags        users
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.UserResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /me [get]
func (h *UsersHandler) Me(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}
	user, err := h.users.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewUserResponse(user))
}
