package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeRateLimit, http.StatusTooManyRequests},
		{CodeTimeout, http.StatusRequestTimeout},
		{CodeUnknownTool, http.StatusNotFound},
		{CodeDuplicate, http.StatusConflict},
		{CodeInternal, http.StatusInternalServerError},
		{"SOMETHING_NEW", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := StatusFor(tt.code); got != tt.want {
				t.Errorf("StatusFor(%q) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}

func TestConstructors(t *testing.T) {
	nf := NotFound("skill", "rust")
	assert.Equal(t, "skill not found: rust", nf.Message)
	assert.Equal(t, CodeNotFound, nf.Code)
	assert.Equal(t, http.StatusNotFound, nf.Status)
	assert.False(t, nf.Timestamp.IsZero())

	rl := RateLimited(42)
	assert.Equal(t, "Rate limit exceeded. Please try again later.", rl.Message)
	assert.Equal(t, 42, rl.Context["resetTime"])

	ut := UnknownTool("get_nonexistent")
	assert.Equal(t, "Unknown tool: get_nonexistent", ut.Message)
	assert.Equal(t, CodeUnknownTool, ut.Code)

	val := Validation("Invalid parameters: limit too large", []string{"limit too large"})
	assert.Equal(t, CodeValidation, val.Code)
	assert.Equal(t, []string{"limit too large"}, val.Context["details"])
}

func TestInternal_HidesCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := Internal(cause)

	assert.Equal(t, "An unexpected error occurred", err.Error())
	assert.Equal(t, "dial tcp: connection refused", err.Context["cause"])
	assert.ErrorIs(t, err, cause)
}

func TestNormalize(t *testing.T) {
	typed := NotFound("project", "p9")
	assert.Same(t, typed, Normalize(typed))

	wrapped := fmt.Errorf("lookup failed: %w", typed)
	assert.Same(t, typed, Normalize(wrapped))

	plain := errors.New("something broke")
	norm := Normalize(plain)
	require.NotNil(t, norm)
	assert.Equal(t, CodeInternal, norm.Code)
	assert.NotContains(t, norm.Message, "something broke")
}

func TestWith_Chains(t *testing.T) {
	err := New(CodeExport, "export to pdf failed").
		With("format", "pdf").
		With("section", "all")
	assert.Equal(t, "pdf", err.Context["format"])
	assert.Equal(t, "all", err.Context["section"])
}
