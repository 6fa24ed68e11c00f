package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	t.Run("matches direct code", func(t *testing.T) {
		err := New(CodeNotFound, "mandate not found")
		assert.True(t, HasCode(err, CodeNotFound))
		assert.False(t, HasCode(err, CodeConflict))
	})

	t.Run("matches through fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("load: %w", New(CodeInvalidTransition, "cannot approve"))
		assert.True(t, HasCode(err, CodeInvalidTransition))
	})

	t.Run("matches inner code of nested domain errors", func(t *testing.T) {
		inner := New(CodeDuplicateReference, "reference taken")
		err := Wrap(inner, CodeInternal, "create mandate")
		assert.True(t, HasCode(err, CodeInternal))
		assert.True(t, HasCode(err, CodeDuplicateReference))
		assert.Equal(t, CodeInternal, CodeOf(err))
	})

	t.Run("plain errors carry no code", func(t *testing.T) {
		err := errors.New("boom")
		assert.False(t, HasCode(err, CodeInternal))
		assert.Equal(t, CodeInternal, CodeOf(err))
		assert.Empty(t, MessageOf(err))
	})
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(cause, CodeInternal, "failed to save mandate")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to save mandate", MessageOf(err))
}
