package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JCCG-code/tripshot-backend/internal/transport/http/middleware"
	"github.com/JCCG-code/tripshot-backend/internal/usecase"
)

// GraphHandler exposes the follow graph endpoints.
type GraphHandler struct {
	auth  *usecase.AuthService
	graph *usecase.GraphService
}

// NewGraphHandler constructs GraphHandler.
func NewGraphHandler(auth *usecase.AuthService, graph *usecase.GraphService) *GraphHandler {
	return &GraphHandler{auth: auth, graph: graph}
}

// RegisterRoutes binds graph routes onto the users group. Traversals are
// public; follow and unfollow act on behalf of the authenticated identity.
func (h *GraphHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/:ref/follow", middleware.RequireAuth(h.auth), h.follow)
	r.DELETE("/:ref/follow", middleware.RequireAuth(h.auth), h.unfollow)
	r.GET("/:ref/followers", h.followers)
	r.GET("/:ref/following", h.following)
}

func (h *GraphHandler) follow(c *gin.Context) {
	actor, ok := middleware.GetAuthenticatedIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	if err := h.graph.Follow(c.Request.Context(), actor, c.Param("ref")); err != nil {
		respondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, MessageResponse{Message: "now following"})
}

func (h *GraphHandler) unfollow(c *gin.Context) {
	actor, ok := middleware.GetAuthenticatedIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	if err := h.graph.Unfollow(c.Request.Context(), actor, c.Param("ref")); err != nil {
		respondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "no longer following"})
}

func (h *GraphHandler) followers(c *gin.Context) {
	profiles, err := h.graph.Followers(c.Request.Context(), c.Param("ref"))
	if err != nil {
		respondWithServiceError(c, err)
		return
	}

	entries := newFollowEntries(profiles)
	c.JSON(http.StatusOK, FollowListResponse{Identities: entries, Count: len(entries)})
}

func (h *GraphHandler) following(c *gin.Context) {
	profiles, err := h.graph.Following(c.Request.Context(), c.Param("ref"))
	if err != nil {
		respondWithServiceError(c, err)
		return
	}

	entries := newFollowEntries(profiles)
	c.JSON(http.StatusOK, FollowListResponse{Identities: entries, Count: len(entries)})
}
