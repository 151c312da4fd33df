package stack_error

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aisa-it/aiplan/docexport/internal/aiplan/apierrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackErrorStack(t *testing.T) {
	cause := fmt.Errorf("%w: chrome exited", apierrors.ErrRenderEngineFailure)

	te := TrackErrorStack(cause).AddContext("doc_id", "42")
	require.NotNil(t, te)
	assert.Len(t, te.ErrStack, 1)

	again := TrackErrorStack(te).AddContext("doc_id", "other")
	assert.Same(t, te, again)
	assert.Len(t, again.ErrStack, 2)
	assert.Equal(t, "42", again.Context["doc_id"])

	assert.ErrorIs(t, again, apierrors.ErrRenderEngineFailure)
	assert.Equal(t, apierrors.ErrRenderEngineFailure, Class(again))
}

func TestTrackNil(t *testing.T) {
	assert.Nil(t, TrackErrorStack(nil))
}

func TestClassFallback(t *testing.T) {
	assert.Equal(t, apierrors.ErrGeneric, Class(errors.New("boom")))
}
