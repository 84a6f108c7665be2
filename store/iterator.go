package store

import (
	"github.com/iov-one/mintgate/errors"
)

type keyValue struct {
	key   []byte
	value []byte
}

// sliceIterator iterates over a snapshot of key/value pairs. Taking a
// snapshot keeps the iterator valid even when the caller writes to the
// domain while consuming it.
type sliceIterator struct {
	data []keyValue
	idx  int
}

var _ Iterator = (*sliceIterator)(nil)

func newSliceIterator(data []keyValue) *sliceIterator {
	return &sliceIterator{data: data}
}

func (s *sliceIterator) Next() ([]byte, []byte, error) {
	if s.idx >= len(s.data) {
		return nil, nil, errors.ErrIteratorDone
	}
	kv := s.data[s.idx]
	s.idx++
	return kv.key, kv.value, nil
}

func (s *sliceIterator) Release() {
	s.data = nil
	s.idx = 0
}
