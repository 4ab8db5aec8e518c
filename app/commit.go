package app

import (
	"github.com/iov-one/splitter"
	"github.com/iov-one/splitter/errors"
)

// CommitStore maintains a working cache on top of a CommitKVStore. All
// executions write to the working cache, Commit flushes it and persists a
// new version.
type CommitStore struct {
	committed splitter.CommitKVStore
	working   splitter.KVCacheWrap
}

// NewCommitStore returns a commit store on top of given store.
func NewCommitStore(store splitter.CommitKVStore) *CommitStore {
	return &CommitStore{
		committed: store,
		working:   store.CacheWrap(),
	}
}

// CommitInfo returns the current version and hash.
func (cs *CommitStore) CommitInfo() splitter.CommitID {
	return cs.committed.LatestVersion()
}

// Commit flushes the working cache to the store and persists it.
func (cs *CommitStore) Commit() (splitter.CommitID, error) {
	if err := cs.working.Write(); err != nil {
		return splitter.CommitID{}, errors.Wrap(err, "flush working cache")
	}
	res, err := cs.committed.Commit()
	if err != nil {
		return res, err
	}
	cs.working = cs.committed.CacheWrap()
	return res, nil
}

// Rollback drops all changes made since the last commit.
func (cs *CommitStore) Rollback() {
	cs.working.Discard()
	cs.working = cs.committed.CacheWrap()
}

// WorkingStore returns the store that all executions must use.
func (cs *CommitStore) WorkingStore() splitter.CacheableKVStore {
	return cs.working
}
