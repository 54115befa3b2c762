package tasks

import (
	"errors"
	"fmt"
	"testing"

	"github.com/desertthunder/plx/internal/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskOutcome(t *testing.T) {
	t.Run("first recorded outcome wins", func(t *testing.T) {
		task := NewTask("op", nil, nil, nil)
		task.Succeed(1)
		task.Fail(errors.New("late"))
		task.Succeed(2)

		assert.False(t, task.Failed())
		assert.Equal(t, 1, task.Payload())
	})

	t.Run("failure then success", func(t *testing.T) {
		task := NewTask("op", nil, nil, nil)
		task.Fail(shared.ErrNotFound)
		task.Succeed("ignored")

		require.True(t, task.Failed())
		assert.Equal(t, NotFoundError, task.Err().Name)
		assert.Nil(t, task.Payload())
	})

	t.Run("nil error records nothing", func(t *testing.T) {
		task := NewTask("op", nil, nil, nil)
		task.Fail(nil)
		task.Succeed("ok")

		assert.False(t, task.Failed())
		assert.Equal(t, "ok", task.Payload())
	})

	t.Run("ids are unique", func(t *testing.T) {
		a := NewTask("op", nil, nil, nil)
		b := NewTask("op", nil, nil, nil)
		assert.NotEqual(t, a.ID, b.ID)
	})

	t.Run("deliver invokes exactly one callback", func(t *testing.T) {
		var successes, failures int
		task := NewTask("op", nil,
			func(any) { successes++ },
			func(*Error) { failures++ },
		)
		task.Fail(shared.ErrInvalidValues)
		task.deliver()

		assert.Equal(t, 0, successes)
		assert.Equal(t, 1, failures)
	})

	t.Run("release drops callbacks", func(t *testing.T) {
		called := false
		task := NewTask("op", nil, func(any) { called = true }, nil)
		task.Succeed("payload")
		task.release()
		task.deliver()

		assert.False(t, called)
		assert.True(t, task.Released())
		assert.Nil(t, task.Payload())
	})
}

func TestNewError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorName
	}{
		{name: "invalid values", err: fmt.Errorf("%w: bad", shared.ErrInvalidValues), want: InvalidValuesError},
		{name: "name in use", err: fmt.Errorf("%w: taken", shared.ErrNameInUse), want: InvalidValuesError},
		{name: "not found", err: fmt.Errorf("%w: playlist 3", shared.ErrNotFound), want: NotFoundError},
		{name: "anything else", err: errors.New("disk on fire"), want: UnknownError},
		{name: "already classified", err: Invalid("index %d", 4), want: InvalidValuesError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewError(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Name)
		})
	}

	assert.Nil(t, NewError(nil))
}

func TestErrorIs(t *testing.T) {
	err := Invalid("member %d belongs to another playlist", 7)

	assert.ErrorIs(t, err, ErrInvalid)
	assert.ErrorIs(t, err, shared.ErrInvalidValues)
	assert.NotErrorIs(t, err, ErrMissing)
	assert.NotErrorIs(t, err, ErrOther)
	assert.ErrorIs(t, NewError(errors.New("disk on fire")), ErrOther)
	assert.Contains(t, err.Error(), "InvalidValuesError")
	assert.Contains(t, err.Error(), "member 7")
}
