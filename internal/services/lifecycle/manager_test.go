package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShutdownRunsHooksInReverseOrder(t *testing.T) {
	m := New(time.Second, nil)

	var order []string
	m.Register("first", func(context.Context) error {
		order = append(order, "first")
		return nil
	})
	m.Register("second", func(context.Context) error {
		order = append(order, "second")
		return nil
	})

	require.NoError(t, m.Shutdown(context.Background()))
	assert.Equal(t, []string{"second", "first"}, order)
}

func TestShutdownCollectsErrors(t *testing.T) {
	m := New(time.Second, nil)

	sentinel := errors.New("close failed")
	m.Register("bad", func(context.Context) error { return sentinel })

	var called bool
	m.Register("good", func(context.Context) error {
		called = true
		return nil
	})

	err := m.Shutdown(context.Background())
	require.ErrorIs(t, err, sentinel)
	assert.True(t, called, "remaining hooks still run after a failure")
}

func TestShutdownRunsOnce(t *testing.T) {
	m := New(time.Second, nil)

	var calls int
	m.Register("counter", func(context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, m.Shutdown(context.Background()))
	require.NoError(t, m.Shutdown(context.Background()))
	assert.Equal(t, 1, calls)
}

func TestRegisterIgnoresNil(t *testing.T) {
	m := New(0, nil)
	m.Register("noop", nil)
	require.NoError(t, m.Shutdown(nil))
}
