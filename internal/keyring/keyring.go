// Package keyring keeps the PostgreSQL connection string out of flags and
// shell history by storing it in the OS secret store.
package keyring

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/habitcycle/internal/constants"
)

var (
	ErrNotFound           = errors.New("no connection string stored in keyring")
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// Entry is one secret in the OS keyring.
type Entry struct {
	Service string
	User    string
}

// Connection is the entry holding the database connection string.
var Connection = Entry{Service: constants.AppName, User: constants.DefaultKeyringUser}

type Status struct {
	Available bool
	Stored    bool
	Value     string
}

func (e Entry) wrap(op string, err error) error {
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %s %s/%s: %v", ErrKeyringUnavailable, op, e.Service, e.User, err)
}

func (e Entry) Get() (string, error) {
	v, err := keyring.Get(e.Service, e.User)
	if err != nil {
		return "", e.wrap("read", err)
	}
	return v, nil
}

func (e Entry) Set(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return errors.New("connection string cannot be empty")
	}
	if err := keyring.Set(e.Service, e.User, value); err != nil {
		return e.wrap("write", err)
	}
	return nil
}

// Delete removes the entry. Deleting a missing entry returns ErrNotFound.
func (e Entry) Delete() error {
	if err := keyring.Delete(e.Service, e.User); err != nil {
		return e.wrap("delete", err)
	}
	return nil
}

func (e Entry) Status() Status {
	v, err := e.Get()
	switch {
	case err == nil:
		return Status{Available: true, Stored: true, Value: v}
	case errors.Is(err, ErrNotFound):
		return Status{Available: true}
	}
	return Status{}
}
