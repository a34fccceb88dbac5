//go:build unit

package errs_test

import (
	"errors"
	"testing"

	"commerce-core/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
)

func TestMark(t *testing.T) {
	sentinel := errs.New("quota exhausted")
	cause := errs.New("update rejected")

	t.Run("the mark is visible to errors.Is", func(t *testing.T) {
		err := errs.Mark(cause, sentinel)
		assert.ErrorIs(t, err, sentinel)
	})

	t.Run("the cause chain survives the mark", func(t *testing.T) {
		err := errs.Mark(cause, sentinel)
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, cause.Error(), err.Error())
	})

	t.Run("marks stay visible through further wrapping", func(t *testing.T) {
		err := errs.Wrap(errs.Mark(cause, sentinel), "drain entry")
		assert.ErrorIs(t, err, sentinel)
	})

	t.Run("a nil cause collapses to the mark", func(t *testing.T) {
		err := errs.Mark(nil, sentinel)
		assert.ErrorIs(t, err, sentinel)
	})

	t.Run("unrelated sentinels do not match", func(t *testing.T) {
		err := errs.Mark(cause, sentinel)
		assert.False(t, errors.Is(err, errs.New("quota exhausted")))
	})
}
