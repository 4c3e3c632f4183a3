package definefile

import "errors"

var (
	// ErrNotFound is returned by Open when the file does not exist.
	ErrNotFound = errors.New("config file not found")
	// ErrRead is returned by Open when the file exists but cannot be read.
	ErrRead = errors.New("cannot read config file")
	// ErrWrite is returned by Save when the backup or the replacement fails.
	ErrWrite = errors.New("cannot save config file")
	// ErrParse is returned when a list value holds something other than integers.
	ErrParse = errors.New("invalid integer list")
	// ErrKind is returned by the typed getters when the stored value has the other kind.
	ErrKind = errors.New("value has a different kind")
	// ErrDuplicate is returned when a name is declared more than once in the file.
	ErrDuplicate = errors.New("name declared more than once")
	// ErrInvalidName is returned for names that cannot be written between double quotes.
	ErrInvalidName = errors.New("invalid declaration name")
)
