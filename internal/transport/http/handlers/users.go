package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JCCG-code/tripshot-backend/internal/transport/http/middleware"
	"github.com/JCCG-code/tripshot-backend/internal/usecase"
)

// UserHandler exposes profile endpoints. The :ref path parameter accepts
// either a canonical identity id or a handle.
type UserHandler struct {
	auth     *usecase.AuthService
	profiles *usecase.ProfileService
}

// NewUserHandler constructs UserHandler.
func NewUserHandler(auth *usecase.AuthService, profiles *usecase.ProfileService) *UserHandler {
	return &UserHandler{auth: auth, profiles: profiles}
}

// RegisterRoutes binds profile routes. Reads are public; mutations require a
// session and are restricted to the identity itself.
func (h *UserHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/:ref", h.get)
	r.PUT("/:ref", middleware.RequireAuth(h.auth), h.update)
	r.DELETE("/:ref", middleware.RequireAuth(h.auth), h.delete)
}

func (h *UserHandler) get(c *gin.Context) {
	public, err := h.profiles.Get(c.Request.Context(), c.Param("ref"))
	if err != nil {
		respondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newIdentitySummary(public))
}

func (h *UserHandler) update(c *gin.Context) {
	actor, ok := middleware.GetAuthenticatedIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid profile payload"))
		return
	}

	public, err := h.profiles.Update(c.Request.Context(), actor, c.Param("ref"), usecase.ProfileUpdate{
		Handle:         req.Handle,
		Email:          req.Email,
		Bio:            req.Bio,
		ProfilePicture: req.ProfilePicture,
		Password:       req.Password,
	})
	if err != nil {
		respondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newIdentitySummary(public))
}

func (h *UserHandler) delete(c *gin.Context) {
	actor, ok := middleware.GetAuthenticatedIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	if err := h.profiles.Delete(c.Request.Context(), actor, c.Param("ref")); err != nil {
		respondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "identity deleted"})
}
