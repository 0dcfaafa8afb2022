//go:build integration

package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestRedis_RoundTrip(t *testing.T) {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	c, err := NewRedis(ctx, fmt.Sprintf("redis://%s/0", endpoint), time.Minute)
	require.NoError(t, err)
	defer c.Close()

	user := uuid.New()
	_, err = c.Get(ctx, user)
	assert.ErrorIs(t, err, ErrMiss)

	gen, err := c.Generation(ctx, user)
	require.NoError(t, err)
	require.NoError(t, c.Set(ctx, user, gen, []byte(`[{"name":"Widget"}]`)))
	got, err := c.Get(ctx, user)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"Widget"}]`, string(got))

	require.NoError(t, c.Invalidate(ctx, user))
	_, err = c.Get(ctx, user)
	assert.ErrorIs(t, err, ErrMiss)

	// A reader holding the old generation must not repopulate the entry.
	assert.ErrorIs(t, c.Set(ctx, user, gen, []byte(`[{"name":"Stale"}]`)), ErrStale)
	_, err = c.Get(ctx, user)
	assert.ErrorIs(t, err, ErrMiss)

	next, err := c.Generation(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, gen+1, next)
	require.NoError(t, c.Set(ctx, user, next, []byte(`[]`)))
}
