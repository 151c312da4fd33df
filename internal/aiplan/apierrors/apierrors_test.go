package apierrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefinedErrorWrapping(t *testing.T) {
	err := fmt.Errorf("%w: %w", ErrRenderTimeout, errors.New("context deadline exceeded"))

	assert.ErrorIs(t, err, ErrRenderTimeout)
	assert.NotErrorIs(t, err, ErrRenderEngineFailure)

	var defined DefinedError
	assert.True(t, errors.As(err, &defined))
	assert.Equal(t, 3412, defined.Code)
}

func TestWithFormattedMessage(t *testing.T) {
	base := DefinedError{Code: 9, Err: "doc %s", RuErr: "документ %s"}
	e := base.WithFormattedMessage("abc")

	assert.Equal(t, "doc abc", e.Error())
	assert.Equal(t, "документ abc", e.RuErr)
	assert.Equal(t, "doc %s", base.Err)
}
