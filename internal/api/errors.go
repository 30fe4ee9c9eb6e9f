package api

import (
	"errors"
	"net/http"

	"cadence/internal/queue"
	"cadence/internal/services"
)

// HTTPStatus maps an error to the response code the daemon should return.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	switch {
	case errors.Is(err, queue.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, queue.ErrNotFound):
		return http.StatusNotFound
	}
	switch services.Marker(err) {
	case services.ErrValidation:
		return http.StatusBadRequest
	case services.ErrNotFound:
		return http.StatusNotFound
	case services.ErrUnavailable:
		return http.StatusServiceUnavailable
	case services.ErrTimeout:
		return http.StatusGatewayTimeout
	case services.ErrExternalTool:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
