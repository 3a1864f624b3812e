package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorFormatting(t *testing.T) {
	err := New(ErrCodeInvalidReq, "O tema da aula é obrigatório.")
	assert.Equal(t, "[INVALID_REQUEST] O tema da aula é obrigatório.", err.Error())

	wrapped := Wrap(fmt.Errorf("dial tcp: refused"), ErrCodeUpstreamAPI, "generation API request failed")
	assert.Equal(t, "[UPSTREAM_API_ERROR] generation API request failed: dial tcp: refused", wrapped.Error())
}

func TestIsWalksChain(t *testing.T) {
	inner := New(ErrCodeStreamDecode, "bad segment")
	outer := fmt.Errorf("streaming: %w", inner)

	assert.True(t, Is(outer, ErrCodeStreamDecode))
	assert.False(t, Is(outer, ErrCodeNotFound))
	assert.Equal(t, ErrCodeStreamDecode, CodeOf(outer))
	assert.Equal(t, "bad segment", MessageOf(outer))
	assert.Equal(t, ErrCodeInternal, CodeOf(fmt.Errorf("plain")))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{ErrCodeInvalidReq, http.StatusBadRequest},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeTemplateNotFound, http.StatusNotFound},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{ErrCodeUpstreamAPI, http.StatusBadGateway},
		{ErrCodeStorage, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(New(tt.code, "x")), tt.code)
	}
}
