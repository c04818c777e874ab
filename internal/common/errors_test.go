package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypedErrors_MatchSentinels(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
	}{
		{"validation", NewValidationError("version", "is required"), ErrValidation},
		{"configuration", &ConfigurationError{Missing: []string{"token"}}, ErrConfiguration},
		{"not found", &NotFoundError{Kind: "history entry", ID: "x"}, ErrNotFound},
		{"source", &SourceUnavailableError{Source: "device feed", Err: errors.New("dial")}, ErrSourceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("op: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.target)
		})
	}
}

func TestValidationError_Message(t *testing.T) {
	assert.Equal(t, "version: is required", NewValidationError("version", "is required").Error())
	assert.Equal(t, "bad input", NewValidationError("", "bad input").Error())
}

func TestConfigurationError_ListsMissing(t *testing.T) {
	err := &ConfigurationError{Missing: []string{"token", "owner"}}
	assert.Equal(t, "missing settings: token, owner", err.Error())
}

func TestSourceUnavailableError_Unwraps(t *testing.T) {
	inner := errors.New("connection refused")
	err := &SourceUnavailableError{Source: "device feed", Err: inner}
	require.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "device feed unavailable")
}
