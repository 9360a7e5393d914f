package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidationError_MatchesSentinel(t *testing.T) {
	err := NewValidationError("title", "must not be empty")

	require.ErrorIs(t, err, ErrValidation)
	require.Equal(t, "title: must not be empty", err.Error())

	var ve *ValidationError
	require.True(t, errors.As(fmt.Errorf("commit: %w", err), &ve))
	require.Equal(t, "title", ve.Field)
}

func TestNetworkErrors_WrapBothSentinels(t *testing.T) {
	err := fmt.Errorf("%w: %w", ErrNetwork, ErrOrderConflict)

	require.ErrorIs(t, err, ErrNetwork)
	require.ErrorIs(t, err, ErrOrderConflict)
	require.NotErrorIs(t, err, ErrBusy)
}
