// Package imagesource provides the collaborators that hand ready image
// payloads to the frame sender: a local PNG file, a remote chart endpoint,
// and the conversion from fetched PNG bytes to the wire payload shape.
package imagesource

import (
	"os"
)

// File reads the PNG at Path on every fetch, so edits to the file show up
// on the next refresh.
type File struct {
	Path string
}

// Fetch returns the current file contents.
func (f *File) Fetch() ([]byte, error) {
	return os.ReadFile(f.Path)
}
