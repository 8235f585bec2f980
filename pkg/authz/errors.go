package authz

import (
	"errors"
	"fmt"

	"github.com/gracewave/gracewave/pkg/serrors"
)

var ErrForbidden = serrors.NewError("AUTHZ_FORBIDDEN", "capability denied", "")

func forbiddenError(req Request) error {
	return fmt.Errorf("%w: %s may not %s %s in %s", ErrForbidden, req.Subject, req.Action, req.Object, req.Domain)
}

// IsForbidden reports whether err is an authorization denial.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}
