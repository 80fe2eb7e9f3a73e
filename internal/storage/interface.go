package storage

import "errors"

// ErrNotInitialized is returned by Load when the backing store does not exist yet.
var ErrNotInitialized = errors.New("storage not initialized, run 'sleepwatch init' first")

// Provider is the durable key/value cache behind the controller's state.
// Values are strings; typed access goes through the helpers in state.go.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool, error)
	// Set writes all values in one transaction; the last write for a key wins.
	Set(values map[string]string) error
	// Delete removes keys. Missing keys are not an error.
	Delete(keys ...string) error

	// Utils
	GetConfigPath() string
}
