package browserprovider_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/polystore/pkg/store"
	"github.com/shashiranjanraj/polystore/pkg/store/browserprovider"
)

func TestLifecycleSucceeds(t *testing.T) {
	ctx := context.Background()
	p := browserprovider.New(browserprovider.Config{DatabaseName: "app"})
	require.NoError(t, p.Connect(ctx))
	assert.True(t, p.IsConnected())
	require.NoError(t, p.Disconnect(ctx))
	assert.False(t, p.IsConnected())
}

// storetest.Conformance is not run here: every data operation is expected
// to return Unsupported by design, which the conformance suite would
// report as failures rather than as the intended behaviour.
func TestDataOperationsAreUnsupported(t *testing.T) {
	ctx := context.Background()
	p := browserprovider.New(browserprovider.Config{DatabaseName: "app"})
	require.NoError(t, p.Connect(ctx))

	_, err := p.Create(ctx, "items", store.Document{})
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrUnsupported)

	_, err = p.Query(ctx, "items", store.QueryOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrUnsupported)
}
