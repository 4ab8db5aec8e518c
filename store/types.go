package store

import "github.com/iov-one/splitter"

// Move references for all storage types into this package for shorter
// names everywhere.

type KVStore = splitter.KVStore
type ReadOnlyKVStore = splitter.ReadOnlyKVStore
type SetDeleter = splitter.SetDeleter
type Batch = splitter.Batch
type CacheableKVStore = splitter.CacheableKVStore
type KVCacheWrap = splitter.KVCacheWrap
type CommitKVStore = splitter.CommitKVStore
type CommitID = splitter.CommitID
