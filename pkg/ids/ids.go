// Package ids generates document ids.
package ids

import "github.com/samborkent/uuidv7"

// New returns a time-ordered UUIDv7 string.
func New() string {
	return uuidv7.New().String()
}
