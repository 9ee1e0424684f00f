package storage

import (
	"errors"
	"strings"
)

var (
	// ErrQuotaExceeded marks write failures caused by storage capacity.
	// This is the only error class the save ladder retries; everything
	// else propagates untouched.
	ErrQuotaExceeded = errors.New("storage quota exceeded")

	// ErrNotFound is returned when a key or blob does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrImportInvalid is returned when an import document is parseable
	// but structurally unusable. The stored document is left untouched.
	ErrImportInvalid = errors.New("import document is invalid")

	// ErrStoreClosed is returned by operations on a closed store.
	ErrStoreClosed = errors.New("store is closed")
)

// quotaMessageFragments are backend-specific substrings that indicate a
// capacity failure. SQLite reports SQLITE_FULL as "database or disk is
// full"; Bolt and plain files surface ENOSPC as "no space left on
// device".
var quotaMessageFragments = []string{
	"database or disk is full",
	"no space left on device",
	"file too large",
}

// IsQuotaError reports whether err is a capacity failure from any
// supported backend.
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrQuotaExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, frag := range quotaMessageFragments {
		if strings.Contains(msg, frag) {
			return true
		}
	}
	return false
}
