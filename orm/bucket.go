package orm

import (
	"regexp"

	"github.com/iov-one/mintgate"
	"github.com/iov-one/mintgate/errors"
	"github.com/tendermint/go-amino"
)

// Model is implemented by any entity that can be stored in a ModelBucket.
type Model interface {
	Validate() error
}

// isBucketName limits bucket names to short, printable identifiers so the
// derived key prefixes stay readable in store dumps.
var isBucketName = regexp.MustCompile(`^[a-z_]{3,12}$`).MatchString

// ModelBucket stores encoded models of a single type under a private key
// namespace.
type ModelBucket struct {
	name   string
	prefix []byte
	cdc    *amino.Codec
}

// NewModelBucket returns a bucket using the given name as its namespace.
// It panics on an invalid name, as bucket construction happens only
// during contract setup.
func NewModelBucket(name string) *ModelBucket {
	if !isBucketName(name) {
		panic("invalid bucket name: " + name)
	}
	return &ModelBucket{
		name:   name,
		prefix: []byte(name + ":"),
		cdc:    amino.NewCodec(),
	}
}

// Name returns the bucket namespace name.
func (b *ModelBucket) Name() string {
	return b.name
}

// DBKey returns the full store key for the given model key.
func (b *ModelBucket) DBKey(key []byte) []byte {
	return append(append([]byte{}, b.prefix...), key...)
}

// One loads a single model by its key into dest. Returns ErrNotFound when
// there is no entity under that key.
func (b *ModelBucket) One(db mintgate.ReadOnlyKVStore, key []byte, dest Model) error {
	raw, err := db.Get(b.DBKey(key))
	if err != nil {
		return err
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%s %X", b.name, key)
	}
	if err := b.cdc.UnmarshalBinaryBare(raw, dest); err != nil {
		return errors.Wrapf(errors.ErrDatabase, "cannot decode %s: %v", b.name, err)
	}
	return nil
}

// Has returns true if an entity is stored under the given key.
func (b *ModelBucket) Has(db mintgate.ReadOnlyKVStore, key []byte) (bool, error) {
	return db.Has(b.DBKey(key))
}

// Put validates and stores the given model under the given key,
// overwriting any previous value.
func (b *ModelBucket) Put(db mintgate.KVStore, key []byte, m Model) error {
	if err := m.Validate(); err != nil {
		return errors.Wrap(err, "invalid model")
	}
	raw, err := b.cdc.MarshalBinaryBare(m)
	if err != nil {
		return errors.Wrapf(errors.ErrDatabase, "cannot encode %s: %v", b.name, err)
	}
	return db.Set(b.DBKey(key), raw)
}

// Delete removes the entity with the given key. Returns ErrNotFound when
// there is nothing to remove.
func (b *ModelBucket) Delete(db mintgate.KVStore, key []byte) error {
	ok, err := db.Has(b.DBKey(key))
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "%s %X", b.name, key)
	}
	return db.Delete(b.DBKey(key))
}

// Iterate walks all entities of the bucket in ascending key order. The
// callback receives the model key (without the bucket prefix) and the
// raw encoded value. Returning an error stops the iteration.
func (b *ModelBucket) Iterate(db mintgate.ReadOnlyKVStore, fn func(key, raw []byte) error) error {
	start := b.DBKey(nil)
	end := prefixEnd(start)
	it, err := db.Iterator(start, end)
	if err != nil {
		return err
	}
	defer it.Release()

	for {
		k, v, err := it.Next()
		switch {
		case err == nil:
			if err := fn(k[len(b.prefix):], v); err != nil {
				return err
			}
		case errors.ErrIteratorDone.Is(err):
			return nil
		default:
			return err
		}
	}
}

// Decode unpacks a raw value obtained through Iterate.
func (b *ModelBucket) Decode(raw []byte, dest Model) error {
	if err := b.cdc.UnmarshalBinaryBare(raw, dest); err != nil {
		return errors.Wrapf(errors.ErrDatabase, "cannot decode %s: %v", b.name, err)
	}
	return nil
}

// prefixEnd returns the smallest key that is greater than every key with
// the given prefix.
func prefixEnd(prefix []byte) []byte {
	end := append([]byte{}, prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	// Prefix of all 0xff bytes, iterate to the end of the store.
	return nil
}
