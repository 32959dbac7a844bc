package moderation_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wardenhq/warden/internal/moderation"
)

func TestAsActionErrorUnwrapsChain(t *testing.T) {
	t.Parallel()

	inner := moderation.NewActionError(moderation.CodeNotFound, "warning not found")
	wrapped := fmt.Errorf("handling request: %w", inner)

	got := moderation.AsActionError(wrapped)
	assert.Equal(t, moderation.CodeNotFound, got.Code)
	assert.Equal(t, "warning not found", got.Message)
}

func TestAsActionErrorUnknown(t *testing.T) {
	t.Parallel()

	got := moderation.AsActionError(errors.New("boom"))
	assert.Equal(t, moderation.CodeInternal, got.Code)
}

func TestInternalPreservesCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	err := moderation.Internal("failed to persist ban", cause)

	require.ErrorIs(t, err, cause)
	assert.True(t, moderation.IsCode(err, moderation.CodeInternal))
	assert.Contains(t, err.Error(), "failed to persist ban")
}

func TestIsCode(t *testing.T) {
	t.Parallel()

	err := moderation.NewActionError(moderation.CodeForbidden, "no permission")
	assert.True(t, moderation.IsCode(err, moderation.CodeForbidden))
	assert.False(t, moderation.IsCode(err, moderation.CodeNotFound))
	assert.False(t, moderation.IsCode(errors.New("plain"), moderation.CodeForbidden))
}
