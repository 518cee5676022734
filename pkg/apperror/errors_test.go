package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", ErrNotFound, http.StatusNotFound},
		{"wrapped forbidden", fmt.Errorf("update prompt: %w", ErrForbidden), http.StatusForbidden},
		{"invalid input", ErrInvalidInput, http.StatusBadRequest},
		{"not configured", fmt.Errorf("sign in: %w", ErrNotConfigured), http.StatusServiceUnavailable},
		{"too large", ErrPayloadTooLarge, http.StatusRequestEntityTooLarge},
		{"unsupported", ErrUnsupportedMedia, http.StatusUnsupportedMediaType},
		{"in flight", ErrConflict, http.StatusTooManyRequests},
		{"app error code wins", New(http.StatusTeapot, "teapot", ErrNotFound), http.StatusTeapot},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapErrorToStatus(tt.err))
		})
	}
}

func TestAppErrorMessage(t *testing.T) {
	err := New(http.StatusBadRequest, "", ErrInvalidInput)
	assert.Equal(t, "invalid input", err.Error())
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = New(http.StatusBadRequest, "Tiêu đề là bắt buộc", ErrInvalidInput)
	assert.Equal(t, "Tiêu đề là bắt buộc", err.Error())
}
