package uploads

import "errors"

// Sentinel kinds for upload errors.
var (
	ErrUploadTooLarge   = errors.New("upload too large")
	ErrUnsupportedMedia = errors.New("only image files are allowed")
	ErrEmptyUpload      = errors.New("empty upload")
)
