// Package store provides the in-memory btree backed implementation of the
// framework KVStore interfaces. The host gives every contract one
// CacheableKVStore and wraps it once per delivered call, which is what
// makes a call all-or-nothing: Write on success, Discard on failure.
package store

import "github.com/iov-one/mintgate"

// Move references for all storage types into this package for shorter
// names everywhere.

type ReadOnlyKVStore = mintgate.ReadOnlyKVStore
type KVStore = mintgate.KVStore
type Iterator = mintgate.Iterator
type CacheableKVStore = mintgate.CacheableKVStore
type KVCacheWrap = mintgate.KVCacheWrap
