package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JCCG-code/tripshot-backend/internal/transport/http/middleware"
	"github.com/JCCG-code/tripshot-backend/internal/usecase"
)

// AuthHandler exposes registration, login, and introspection endpoints.
type AuthHandler struct {
	auth     *usecase.AuthService
	profiles *usecase.ProfileService
	tokenTTL int
}

// NewAuthHandler constructs AuthHandler. tokenTTLSeconds is echoed in session
// responses so clients know when to re-authenticate.
func NewAuthHandler(auth *usecase.AuthService, profiles *usecase.ProfileService, tokenTTLSeconds int) *AuthHandler {
	return &AuthHandler{auth: auth, profiles: profiles, tokenTTL: tokenTTLSeconds}
}

// RegisterRoutes binds authentication routes, applying optional middleware
// ahead of the register and login handlers.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup, registerMiddlewares, loginMiddlewares []gin.HandlerFunc) {
	registerChain := append([]gin.HandlerFunc{}, registerMiddlewares...)
	registerChain = append(registerChain, h.register)
	r.POST("/register", registerChain...)

	loginChain := append([]gin.HandlerFunc{}, loginMiddlewares...)
	loginChain = append(loginChain, h.login)
	r.POST("/login", loginChain...)

	r.GET("/me", middleware.RequireAuth(h.auth), h.me)
}

func (h *AuthHandler) register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid registration payload"))
		return
	}

	session, err := h.auth.Register(c.Request.Context(), req.Handle, req.Email, req.Password)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SessionResponse{
		Token:     session.Token,
		TokenType: "Bearer",
		ExpiresIn: h.tokenTTL,
		Identity:  newIdentitySummary(session.Identity),
	})
}

func (h *AuthHandler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid login payload"))
		return
	}

	session, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SessionResponse{
		Token:     session.Token,
		TokenType: "Bearer",
		ExpiresIn: h.tokenTTL,
		Identity:  newIdentitySummary(session.Identity),
	})
}

func (h *AuthHandler) me(c *gin.Context) {
	identity, ok := middleware.GetAuthenticatedIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	public, err := h.profiles.Get(c.Request.Context(), identity.ID)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newIdentitySummary(public))
}
