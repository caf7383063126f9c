package gateway

import "errors"

// Common gateway error types
var (
	// ErrNoAdapter is returned when a gateway never declared an adapter
	// identifier
	ErrNoAdapter = errors.New("gateway declares no adapter identifier")

	// ErrAdapterLoad is returned when an adapter identifier cannot be
	// resolved against the registry
	ErrAdapterLoad = errors.New("adapter could not be loaded")

	// ErrInvalidSetup is returned when Setup is called with an ambiguous or
	// unsupported argument combination
	ErrInvalidSetup = errors.New("invalid setup arguments")

	// ErrRawURL is returned for the removed scheme-less connection-string
	// form; no scheme inference is attempted
	ErrRawURL = errors.New("connection string has no adapter scheme")

	// ErrDuplicateAdapter is returned when an adapter identifier is
	// registered twice on the same registry
	ErrDuplicateAdapter = errors.New("adapter is already registered")

	// ErrNoDataset is returned when a gateway cannot provide the requested
	// dataset
	ErrNoDataset = errors.New("dataset not found")
)

// IsAdapterLoad returns true if the error is ErrAdapterLoad
func IsAdapterLoad(err error) bool {
	return errors.Is(err, ErrAdapterLoad)
}

// IsInvalidSetup returns true if the error is ErrInvalidSetup or ErrRawURL
func IsInvalidSetup(err error) bool {
	return errors.Is(err, ErrInvalidSetup) || errors.Is(err, ErrRawURL)
}
