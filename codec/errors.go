package codec

import (
	"errors"
	"fmt"
)

// ErrMalformed is wrapped by every decode failure.
var ErrMalformed = errors.New("codec: malformed workspace data")

var (
	// ErrBadMagic means the data does not start with Magic.
	ErrBadMagic = fmt.Errorf("%w: bad magic", ErrMalformed)

	// ErrUnsupportedVersion means the format version is not Version.
	ErrUnsupportedVersion = fmt.Errorf("%w: unsupported version", ErrMalformed)

	errTruncated = fmt.Errorf("%w: unexpected end of data", ErrMalformed)
)
