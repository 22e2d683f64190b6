package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWidthError(t *testing.T) {
	err := &WidthError{Field: "severity", Required: 7, Available: 4, Unit: "base-10 digits"}

	require.ErrorIs(t, err, ErrWidthOverflow)
	require.Contains(t, err.Error(), `"severity"`)
	require.Contains(t, err.Error(), "requires 7 base-10 digits, 4 available")

	wrapped := fmt.Errorf("build composite layout: %w", err)
	require.ErrorIs(t, wrapped, ErrWidthOverflow)

	var we *WidthError
	require.True(t, errors.As(wrapped, &we))
	require.Equal(t, "severity", we.Field)
}

func TestWidthError_DefaultUnit(t *testing.T) {
	err := &WidthError{Field: "unit", Required: 20, Available: 19}
	require.Contains(t, err.Error(), "requires 20 digits, 19 available")
}
