package port

import "io"

// ImageStore persists book cover assets addressed by an opaque reference.
type ImageStore interface {
	// Save writes the asset and returns the reference under which it can be
	// retrieved later.
	Save(filename string, r io.Reader) (string, error)
	Delete(ref string) error
}
