package relation

import "errors"

// Common relation error types
var (
	// ErrViewNotFound is returned when a named view is not defined on the
	// relation's definition
	ErrViewNotFound = errors.New("view not found")

	// ErrUnsatisfiedView is returned when a curried view is materialized
	// before all of its arguments were supplied
	ErrUnsatisfiedView = errors.New("curried view is missing arguments")

	// ErrArity is returned when a view receives more arguments than it
	// declares
	ErrArity = errors.New("too many arguments for view")

	// ErrMapperNotFound is returned when a mapper name is not registered
	ErrMapperNotFound = errors.New("mapper not found")

	// ErrDuplicateMapper is returned when a mapper name is registered twice
	ErrDuplicateMapper = errors.New("mapper is already registered")

	// ErrNoDataset is returned when a definition is built without a dataset
	ErrNoDataset = errors.New("relation requires a dataset")

	// ErrIteratorDone is returned by Iterator.Next once the sequence is
	// exhausted
	ErrIteratorDone = errors.New("iterator done")
)

// errStopIteration terminates a dataset scan early when an iterator is
// stopped. It never escapes this package.
var errStopIteration = errors.New("stop iteration")
