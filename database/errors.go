package database

import (
	"errors"
	"fmt"
)

var ErrStoreClosed = errors.New("store is closed")

// StoreOpenError reports a store file that exists but cannot be read or
// migrated. The application cannot proceed without a working store.
type StoreOpenError struct {
	Path string
	Err  error
}

func (e *StoreOpenError) Error() string {
	return fmt.Sprintf("failed to open store %s: %v", e.Path, e.Err)
}

func (e *StoreOpenError) Unwrap() error {
	return e.Err
}
