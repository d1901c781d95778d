package tagfile

import (
	"github.com/pkg/errors"
)

var (
	// ErrFormat marks a stream that does not follow the tagfile layout:
	// bad magic, unsupported version, unknown tags or field types, truncation.
	ErrFormat = errors.New("tagfile format violation")
	// ErrReference marks a node or definition reference that cannot be resolved.
	ErrReference = errors.New("tagfile reference violation")
)
