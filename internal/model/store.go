package model

import "errors"

// ErrNotFound is returned by Store implementations for missing keys.
var ErrNotFound = errors.New("key not found")

// Store is a key-value container for saved filters and other small
// configuration blobs. Persistence is injected through this interface
// rather than reached for ambiently; values are opaque bytes owned by the
// caller.
type Store interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	Delete(key string) error
	List() ([]string, error)
}
