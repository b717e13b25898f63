package apperrors

import (
	"errors"

	"looplane/internal/config"
)

// Extensions is the machine-readable part of an error response.
type Extensions struct {
	Code       Code        `json:"code"`
	Violations []Violation `json:"violations,omitempty"`
	Detail     string      `json:"detail,omitempty"`
}

// Response is the error body returned for every failed request.
type Response struct {
	Message    string     `json:"message"`
	Extensions Extensions `json:"extensions"`
}

// Mapper turns errors into wire responses. Internal detail is attached only in
// development mode.
type Mapper struct {
	development bool
}

// NewMapper creates a Mapper for the configured environment.
func NewMapper(cfg *config.Config) *Mapper {
	return &Mapper{development: cfg.IsDevelopment()}
}

// Map classifies err and returns the HTTP status and response body.
func (m *Mapper) Map(err error) (int, Response) {
	var appErr *Error
	if !errors.As(err, &appErr) {
		appErr = Internal(err)
	}

	resp := Response{
		Message: appErr.Message,
		Extensions: Extensions{
			Code:       appErr.Code,
			Violations: appErr.Violations,
		},
	}
	if m.development && appErr.Err != nil {
		resp.Extensions.Detail = appErr.Err.Error()
	}

	return HTTPStatus(appErr.Code), resp
}
