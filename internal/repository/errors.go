// Package repository persists the gateway's own records. Catalog and booking
// state belong to the travel API; only the submission ledger lives here.
package repository

import "errors"

// ErrNotFound is returned when a ledger row does not exist. Handlers
// translate it into a 404.
var ErrNotFound = errors.New("not found")
