package domain

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// ErrBadHandle reports a handle string that cannot be parsed.
var ErrBadHandle = errors.New("domain: malformed result handle")

// ResultHandle identifies one submitted circuit. ID is a UUID assigned
// at submission; Extra carries an optional auxiliary payload (a
// serialised postprocessing circuit, for backends that use one).
type ResultHandle struct {
	ID    string
	Extra string
}

// NewHandle returns a handle with a fresh UUID and no extra payload.
func NewHandle() ResultHandle {
	return ResultHandle{ID: uuid.NewString()}
}

// String renders the handle in its CLI form: the bare UUID, or
// "uuid;extra" when an extra payload is present.
func (h ResultHandle) String() string {
	if h.Extra == "" {
		return h.ID
	}
	return h.ID + ";" + h.Extra
}

// ParseHandle reads a handle back from its String form.
func ParseHandle(s string) (ResultHandle, error) {
	id, extra, _ := strings.Cut(s, ";")
	if _, err := uuid.Parse(id); err != nil {
		return ResultHandle{}, ErrBadHandle
	}
	return ResultHandle{ID: id, Extra: extra}, nil
}
