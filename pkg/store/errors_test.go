package store_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/polystore/pkg/store"
)

func TestErrorsIsByKind(t *testing.T) {
	err := store.Errorf(store.KindQuery, "memoryprovider.Create", "boom")
	assert.True(t, errors.Is(err, store.ErrQuery))
	assert.False(t, errors.Is(err, store.ErrValidation))
}

func TestDuplicateKeyError(t *testing.T) {
	err := store.NewDuplicateKeyError("fileprovider.Create", "items", "abc")
	assert.True(t, store.IsDuplicateKey(err))
	assert.True(t, errors.Is(err, store.ErrQuery))

	other := store.Errorf(store.KindQuery, "op", "some other query failure")
	assert.False(t, store.IsDuplicateKey(other))
}

func TestValidateCollectionAndID(t *testing.T) {
	assert.NoError(t, store.ValidateCollection("op", "items"))
	assert.Error(t, store.ValidateCollection("op", ""))
	assert.Error(t, store.ValidateCollection("op", "a/b"))
	assert.Error(t, store.ValidateID("op", "a\\b"))
}
