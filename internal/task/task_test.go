package task

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewFunc(t *testing.T) {
	boom := errors.New("boom")
	a := NewFunc("cleanup", func(ctx context.Context) error { return boom })
	b := NewFunc("cleanup", nil)

	assert.Equal(t, "cleanup", a.Type())
	assert.NotEqual(t, a.ID(), b.ID())
	assert.ErrorIs(t, a.Execute(context.Background()), boom)
	assert.NoError(t, b.Execute(context.Background()))
}
