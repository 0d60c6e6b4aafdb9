package comic

import "errors"

var (
	ErrNoImages = errors.New("no supported image files in archive")
	ErrClosed   = errors.New("book is closed")
)
