package ingest

import "errors"

// ErrUnsupportedFormat is returned synchronously at submission when the
// declared MIME type is not in the accepted set. No document record is
// created.
var ErrUnsupportedFormat = errors.New("ingest: unsupported file type")

// ErrFileTooLarge is returned synchronously at submission when the
// spooled upload exceeds the size cap. No document record is created.
var ErrFileTooLarge = errors.New("ingest: file exceeds size limit")

// ErrInvalidURL is returned when a URL submission is not an absolute
// http(s) URL.
var ErrInvalidURL = errors.New("ingest: invalid URL")

// ErrNotFound is returned for documents that do not exist or that the
// caller does not own; the two cases are deliberately indistinguishable
// so existence is not leaked to non-owners.
var ErrNotFound = errors.New("ingest: document not found")
