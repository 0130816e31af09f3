package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type JSONResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, JSONResponse{
		Status:  code >= 200 && code < 300,
		Message: message,
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, err error) {
	c.JSON(code, JSONResponse{
		Status:  false,
		Message: err.Error(),
		Data:    nil,
	})
}

// RespondServiceError maps a service-layer error onto the right HTTP status.
// Unknown errors become a 500 without leaking internals.
func RespondServiceError(c *gin.Context, err error) {
	var (
		validationErr *ValidationError
		notFoundErr   *NotFoundError
		gatewayErr    *GatewayError
	)
	switch {
	case errors.As(err, &validationErr):
		RespondError(c, http.StatusBadRequest, err)
	case errors.As(err, &notFoundErr):
		RespondError(c, http.StatusNotFound, err)
	case errors.As(err, &gatewayErr):
		RespondError(c, http.StatusServiceUnavailable, err)
	default:
		ErrorLogger.Printf("internal error: %v", err)
		RespondError(c, http.StatusInternalServerError, errors.New("internal server error"))
	}
}
