package spline

import (
	"github.com/cruisechaser/havok_browser/hkx/tagfile"

	"github.com/pkg/errors"
)

var (
	// ErrQuantization is returned for quantization codes this decoder cannot read.
	ErrQuantization = errors.WithMessage(tagfile.ErrFormat, "unsupported quantization")
	// ErrInvalidQuaternion is returned when a packed quaternion has its invalid bit set.
	ErrInvalidQuaternion = errors.WithMessage(tagfile.ErrFormat, "quaternion marked invalid")
	// ErrUnsupportedAnimation is returned for animation encodings other than spline compression.
	ErrUnsupportedAnimation = errors.New("unsupported animation type")
)
