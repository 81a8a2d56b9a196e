package response

import (
	"net/http"

	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal"
)

type APIResponse struct {
	Data  interface{}        `json:"data,omitempty"`
	Meta  map[string]any     `json:"meta,omitempty"`
	Error *internal.AppError `json:"error,omitempty"`
}

func Success(data interface{}, meta map[string]any) APIResponse {
	return APIResponse{Data: data, Meta: meta}
}

// Invalid carries the offending field alongside the message.
func Invalid(field, msg string) APIResponse {
	e := internal.NewAppError(http.StatusBadRequest, msg)
	e.Field = field
	return APIResponse{Error: e}
}

func BadRequest(msg string) APIResponse {
	return APIResponse{Error: internal.NewAppError(http.StatusBadRequest, msg)}
}

func InternalError(msg string) APIResponse {
	return APIResponse{Error: internal.NewAppError(http.StatusInternalServerError, msg)}
}

func NotFound(msg string) APIResponse {
	return APIResponse{Error: internal.NewAppError(http.StatusNotFound, msg)}
}

func NewAppError(status int, msg string) APIResponse {
	return APIResponse{Error: internal.NewAppError(status, msg)}
}
