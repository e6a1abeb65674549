package inmem

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klu2500030136/lptd-app/core"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	s := Open()

	_, err := s.Get(ctx, "users")
	assert.Equal(t, core.ErrKeyNotFound, err)

	val := []byte(`[1]`)
	require.NoError(t, s.Set(ctx, "users", val))
	val[1] = '2' // the store keeps its own copy

	got, err := s.Get(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[1]`), got)
	assert.Equal(t, []string{"users"}, s.Keys())

	require.NoError(t, s.Delete(ctx, "users"))
	require.NoError(t, s.Delete(ctx, "users"))
	_, err = s.Get(ctx, "users")
	assert.Equal(t, core.ErrKeyNotFound, err)

	require.NoError(t, s.Close())
	assert.Error(t, s.Set(ctx, "users", val))
}
