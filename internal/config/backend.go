package config

import "github.com/kalambet/payctl/internal/definefile"

// ConfigBackend abstracts the storage config keys are read from and written
// to. *definefile.Document is the only production implementation.
type ConfigBackend interface {
	GetString(name string) (val string, ok bool, err error)
	GetInts(name string) (val []int, ok bool, err error)
	SetString(name, val string) error
	SetInts(name string, val []int) error
	Delete(name string) (bool, error)
	Save() error
}

var _ ConfigBackend = (*definefile.Document)(nil)
