package orm

import (
	"encoding/hex"

	"github.com/iov-one/mintgate"
	"github.com/iov-one/mintgate/errors"
	"golang.org/x/crypto/sha3"
)

// IDSet is a persistent set of ids kept as a secondary index next to a
// bucket. Each set instance is scoped to one dynamic value, for example
// one owner account, and derives its own key namespace from that value by
// hashing:
//    _i.<bucket>.<index>:<hash(scope)>:<id>
//
// Ids come back in ascending byte order. For the monotonic 8 byte ids the
// buckets hand out, that is insertion order.
type IDSet struct {
	prefix []byte
}

// NewIDSet returns the id set for the given bucket index and scope value.
func NewIDSet(bucket, index string, scope []byte) IDSet {
	sum := sha3.Sum256(scope)
	prefix := "_i." + bucket + "." + index + ":" + hex.EncodeToString(sum[:8]) + ":"
	return IDSet{prefix: []byte(prefix)}
}

func (s IDSet) dbKey(id []byte) []byte {
	return append(append([]byte{}, s.prefix...), id...)
}

// Add inserts the id into the set. Adding an existing id is a no-op.
func (s IDSet) Add(db mintgate.KVStore, id []byte) error {
	return db.Set(s.dbKey(id), []byte{})
}

// Remove drops the id from the set. Removing an absent id is an error:
// index entries are maintained in lock-step with their primary bucket, a
// miss means the index drifted.
func (s IDSet) Remove(db mintgate.KVStore, id []byte) error {
	ok, err := db.Has(s.dbKey(id))
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "id %X not indexed", id)
	}
	return db.Delete(s.dbKey(id))
}

// Has returns true if the id belongs to the set.
func (s IDSet) Has(db mintgate.ReadOnlyKVStore, id []byte) (bool, error) {
	return db.Has(s.dbKey(id))
}

// All returns every id in the set in ascending byte order. An empty set
// returns an empty slice, never an error.
func (s IDSet) All(db mintgate.ReadOnlyKVStore) ([][]byte, error) {
	start := s.dbKey(nil)
	it, err := db.Iterator(start, prefixEnd(start))
	if err != nil {
		return nil, err
	}
	defer it.Release()

	ids := make([][]byte, 0)
	for {
		k, _, err := it.Next()
		switch {
		case err == nil:
			id := append([]byte{}, k[len(s.prefix):]...)
			ids = append(ids, id)
		case errors.ErrIteratorDone.Is(err):
			return ids, nil
		default:
			return nil, err
		}
	}
}
