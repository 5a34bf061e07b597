package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsCode(t *testing.T) {
	base := NotFound("proposal")
	wrapped := Wrap(base, "failed to load proposal")

	assert.Equal(t, CodeNotFound, GetCode(wrapped))
	assert.Equal(t, "failed to load proposal: proposal not found", wrapped.Error())
	assert.True(t, stderrors.Is(wrapped, base))
}

func TestWrapPlainErrorIsInternal(t *testing.T) {
	err := Wrap(fmt.Errorf("boom"), "context")
	assert.Equal(t, CodeInternalError, GetCode(err))
	assert.Nil(t, Wrap(nil, "ignored"))
}

func TestGetCodeThroughFmtWrapping(t *testing.T) {
	err := fmt.Errorf("outer: %w", Forbidden("not yours"))
	assert.Equal(t, CodeForbidden, GetCode(err))
	assert.True(t, HasCode(err, CodeForbidden))
	assert.Equal(t, "UNKNOWN", GetCode(fmt.Errorf("plain")))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ValidationError("bad"), http.StatusBadRequest},
		{UnknownVariant("x"), http.StatusNotFound},
		{NotFound("user"), http.StatusNotFound},
		{Unauthorized("login"), http.StatusUnauthorized},
		{Forbidden("no"), http.StatusForbidden},
		{Conflict("dup"), http.StatusConflict},
		{NotReady("dashboard"), http.StatusServiceUnavailable},
		{fmt.Errorf("other"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(GetCode(tt.err), func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
