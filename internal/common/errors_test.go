package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError_MatchesInvalidInput(t *testing.T) {
	err := fmt.Errorf("push: %w", NewValidationError("collection", "unknown collection"))

	require.ErrorIs(t, err, ErrorInvalidInput)
	assert.NotErrorIs(t, err, ErrorNotFound)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "collection", verr.Field)
	assert.Equal(t, "invalid collection: unknown collection", verr.Error())
}
