package relation

import (
	"errors"
	"sync"
)

type iterItem struct {
	tuple Tuple
	err   error
}

// Iterator is a lazy, restartable sequence of decoded tuples. It is closed
// by explicitly calling Stop or by calling Next until it returns
// ErrIteratorDone. Obtaining a fresh iterator from the relation re-reads
// the dataset.
type Iterator struct {
	items chan iterItem
	stop  chan struct{}
	once  sync.Once
}

func newIterator(ds Dataset, decode func(Tuple) (Tuple, error)) *Iterator {
	it := &Iterator{
		items: make(chan iterItem),
		stop:  make(chan struct{}),
	}

	go func() {
		defer close(it.items)

		err := ds.Each(func(raw Tuple) error {
			tuple, derr := decode(raw)
			if derr != nil {
				return derr
			}
			select {
			case it.items <- iterItem{tuple: tuple}:
				return nil
			case <-it.stop:
				return errStopIteration
			}
		})
		if err != nil && !errors.Is(err, errStopIteration) {
			select {
			case it.items <- iterItem{err: err}:
			case <-it.stop:
			}
		}
	}()

	return it
}

// Next returns the next decoded tuple, or ErrIteratorDone once the
// sequence is exhausted.
func (it *Iterator) Next() (Tuple, error) {
	item, ok := <-it.items
	if !ok {
		return nil, ErrIteratorDone
	}
	if item.err != nil {
		return nil, item.err
	}
	return item.tuple, nil
}

// Stop terminates iteration. It is safe to call more than once and safe to
// call concurrently with Next.
func (it *Iterator) Stop() {
	it.once.Do(func() {
		close(it.stop)
		// Drain so the producer can observe the stop and exit.
		go func() {
			for range it.items {
			}
		}()
	})
}
