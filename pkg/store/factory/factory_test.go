package factory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/polystore/pkg/store"
	"github.com/shashiranjanraj/polystore/pkg/store/factory"
	"github.com/shashiranjanraj/polystore/pkg/store/memoryprovider"
)

func TestNewMemoryProvider(t *testing.T) {
	p, err := factory.New(factory.Config{Type: "memory"})
	require.NoError(t, err)
	_, ok := p.(*memoryprovider.Provider)
	assert.True(t, ok)
}

func TestNewUnknownTypeFails(t *testing.T) {
	_, err := factory.New(factory.Config{Type: "does-not-exist"})
	require.Error(t, err)
}

func TestNewGitSyncRequiresInnerConfig(t *testing.T) {
	_, err := factory.New(factory.Config{Type: "git-sync"})
	require.Error(t, err)
}

func TestRegisterCustomConstructor(t *testing.T) {
	factory.Register("custom-memory", func(cfg factory.Config) (store.Provider, error) {
		return memoryprovider.New(), nil
	})

	p, err := factory.New(factory.Config{Type: "custom-memory"})
	require.NoError(t, err)
	_, ok := p.(*memoryprovider.Provider)
	assert.True(t, ok)
}
