package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JCCG-code/tripshot-backend/internal/usecase"
)

// respondWithServiceError maps a service error kind onto an HTTP status code.
// Internal failures get a generic message so repository details never leak.
func respondWithServiceError(c *gin.Context, err error) {
	switch usecase.KindOf(err) {
	case usecase.KindValidation:
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, err.Error()))
	case usecase.KindConflict:
		c.JSON(http.StatusConflict, NewErrorResponse(c, err.Error()))
	case usecase.KindUnauthorized:
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, err.Error()))
	case usecase.KindNotFound:
		c.JSON(http.StatusNotFound, NewErrorResponse(c, err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "internal server error"))
	}
}
