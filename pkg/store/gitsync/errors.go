package gitsync

import "github.com/shashiranjanraj/polystore/pkg/store"

func newSyncError(op string, cause error) *store.StoreError {
	return store.NewError(store.KindSync, op, cause)
}

func newMergeConflictError(op string, cause error) *store.StoreError {
	return store.NewError(store.KindMergeConflict, op, cause)
}
