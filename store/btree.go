package store

import (
	"bytes"

	"github.com/google/btree"
	"github.com/iov-one/mintgate/errors"
)

// degree is the btree branching factor. Low values are faster for the
// small working sets a single call touches.
const degree = 2

// MemStore returns a btree backed store with no persistence. The host
// uses one per contract; tests use it directly.
func MemStore() CacheableKVStore {
	return &memStore{
		bt: btree.New(degree),
	}
}

type memStore struct {
	bt *btree.BTree
}

var _ CacheableKVStore = (*memStore)(nil)

func (s *memStore) Get(key []byte) ([]byte, error) {
	assertKey(key)
	if item := s.bt.Get(bkey{key}); item != nil {
		return item.(setItem).value, nil
	}
	return nil, nil
}

func (s *memStore) Has(key []byte) (bool, error) {
	assertKey(key)
	return s.bt.Has(bkey{key}), nil
}

func (s *memStore) Set(key, value []byte) error {
	assertKey(key)
	s.bt.ReplaceOrInsert(newSetItem(key, value))
	return nil
}

func (s *memStore) Delete(key []byte) error {
	assertKey(key)
	s.bt.Delete(bkey{key})
	return nil
}

func (s *memStore) Iterator(start, end []byte) (Iterator, error) {
	items := ascend(s.bt, start, end)
	return newSliceIterator(items), nil
}

func (s *memStore) ReverseIterator(start, end []byte) (Iterator, error) {
	items := ascend(s.bt, start, end)
	reverse(items)
	return newSliceIterator(items), nil
}

// CacheWrap places a scratch-pad btree over this store.
func (s *memStore) CacheWrap() KVCacheWrap {
	return newCacheWrap(s)
}

// cacheWrap records writes and deletes in its own btree and falls back to
// the parent for everything it did not touch. Write replays the recorded
// operations on the parent, Discard drops them.
type cacheWrap struct {
	bt     *btree.BTree
	parent KVStore
}

func newCacheWrap(parent KVStore) *cacheWrap {
	return &cacheWrap{
		bt:     btree.New(degree),
		parent: parent,
	}
}

var _ KVCacheWrap = (*cacheWrap)(nil)

func (c *cacheWrap) Get(key []byte) ([]byte, error) {
	assertKey(key)
	if res := c.bt.Get(bkey{key}); res != nil {
		switch t := res.(type) {
		case setItem:
			return t.value, nil
		case deletedItem:
			return nil, nil
		default:
			return nil, errors.Wrapf(errors.ErrDatabase, "unknown item in btree: %#v", res)
		}
	}
	return c.parent.Get(key)
}

func (c *cacheWrap) Has(key []byte) (bool, error) {
	assertKey(key)
	if res := c.bt.Get(bkey{key}); res != nil {
		switch res.(type) {
		case setItem:
			return true, nil
		case deletedItem:
			return false, nil
		default:
			return false, errors.Wrapf(errors.ErrDatabase, "unknown item in btree: %#v", res)
		}
	}
	return c.parent.Has(key)
}

func (c *cacheWrap) Set(key, value []byte) error {
	assertKey(key)
	c.bt.ReplaceOrInsert(newSetItem(key, value))
	return nil
}

func (c *cacheWrap) Delete(key []byte) error {
	assertKey(key)
	c.bt.ReplaceOrInsert(newDeletedItem(key))
	return nil
}

// Iterator combines results from the overlay and the parent store. The
// overlay wins on conflicting keys and hides deleted ones.
func (c *cacheWrap) Iterator(start, end []byte) (Iterator, error) {
	parentIter, err := c.parent.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	items, err := c.merge(parentIter, start, end)
	if err != nil {
		return nil, err
	}
	return newSliceIterator(items), nil
}

func (c *cacheWrap) ReverseIterator(start, end []byte) (Iterator, error) {
	parentIter, err := c.parent.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	items, err := c.merge(parentIter, start, end)
	if err != nil {
		return nil, err
	}
	reverse(items)
	return newSliceIterator(items), nil
}

// merge produces the ascending key/value sequence visible through this
// cache layer.
func (c *cacheWrap) merge(parent Iterator, start, end []byte) ([]keyValue, error) {
	defer parent.Release()

	overlay := ascendAll(c.bt, start, end)
	var out []keyValue

	k, v, err := parent.Next()
	for _, item := range overlay {
		// Emit parent keys preceding this overlay item.
		for err == nil && bytes.Compare(k, item.key()) < 0 {
			out = append(out, keyValue{k, v})
			k, v, err = parent.Next()
		}
		if err == nil && bytes.Equal(k, item.key()) {
			// Shadowed by the overlay.
			k, v, err = parent.Next()
		}
		if err != nil && !errors.ErrIteratorDone.Is(err) {
			return nil, err
		}
		if set, ok := item.(setItem); ok {
			out = append(out, keyValue{set.key(), set.value})
		}
	}
	for err == nil {
		out = append(out, keyValue{k, v})
		k, v, err = parent.Next()
	}
	if !errors.ErrIteratorDone.Is(err) {
		return nil, err
	}
	return out, nil
}

// CacheWrap layers another scratch-pad on top of this one.
func (c *cacheWrap) CacheWrap() KVCacheWrap {
	return newCacheWrap(c)
}

// Write replays the recorded operations on the parent store and then
// invalidates this layer.
func (c *cacheWrap) Write() error {
	var err error
	c.bt.Ascend(func(item btree.Item) bool {
		switch t := item.(type) {
		case setItem:
			err = c.parent.Set(t.key(), t.value)
		case deletedItem:
			err = c.parent.Delete(t.key())
		default:
			err = errors.Wrapf(errors.ErrDatabase, "unknown item in btree: %#v", item)
		}
		return err == nil
	})
	c.Discard()
	return err
}

// Discard invalidates this CacheWrap and releases all data.
func (c *cacheWrap) Discard() {
	c.bt.Clear(false)
}

func assertKey(key []byte) {
	if key == nil {
		panic("nil key is not allowed")
	}
}

// Items stored in the btrees. All of them implement keyer so entries
// compare by key.

type keyer interface {
	btree.Item
	key() []byte
}

// bkey is a bare key, used for lookups.
type bkey struct {
	k []byte
}

func (k bkey) key() []byte {
	return k.k
}

func (k bkey) Less(than btree.Item) bool {
	return bytes.Compare(k.k, than.(keyer).key()) < 0
}

// setItem is a key with a stored value.
type setItem struct {
	bkey
	value []byte
}

func newSetItem(key, value []byte) setItem {
	return setItem{bkey: bkey{key}, value: value}
}

// deletedItem marks a key removed in a cache layer.
type deletedItem struct {
	bkey
}

func newDeletedItem(key []byte) deletedItem {
	return deletedItem{bkey{key}}
}

// ascend snapshots the [start, end) range of set items in the tree.
func ascend(bt *btree.BTree, start, end []byte) []keyValue {
	var out []keyValue
	for _, item := range ascendAll(bt, start, end) {
		if set, ok := item.(setItem); ok {
			out = append(out, keyValue{set.key(), set.value})
		}
	}
	return out
}

// ascendAll snapshots the [start, end) range including deletion markers.
func ascendAll(bt *btree.BTree, start, end []byte) []keyer {
	var out []keyer
	insert := func(item btree.Item) bool {
		out = append(out, item.(keyer))
		return true
	}
	switch {
	case start == nil && end == nil:
		bt.Ascend(insert)
	case start == nil:
		bt.AscendLessThan(bkey{end}, insert)
	case end == nil:
		bt.AscendGreaterOrEqual(bkey{start}, insert)
	default:
		bt.AscendRange(bkey{start}, bkey{end}, insert)
	}
	return out
}

func reverse(items []keyValue) {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
}
