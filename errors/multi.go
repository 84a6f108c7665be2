package errors

import (
	"fmt"
	"strings"
)

// Append combines given errors into a single one. Nil errors are dropped.
// If no non-nil error is given, nil is returned.
//
// An error produced this way keeps all the partial failures. Use it for
// operations with a "partial success, fully reported" policy, where a
// subset of items can succeed while the overall call must still be
// reported as failed (see batch approvals).
func Append(errs ...error) error {
	var nonNil []error
	for _, err := range errs {
		if err == nil {
			continue
		}
		if m, ok := err.(*multiError); ok {
			nonNil = append(nonNil, m.errs...)
		} else {
			nonNil = append(nonNil, err)
		}
	}
	if len(nonNil) == 0 {
		return nil
	}
	return &multiError{errs: nonNil}
}

type multiError struct {
	errs []error
}

func (e *multiError) Error() string {
	if len(e.errs) == 1 {
		return fmt.Sprintf("1 error occurred:\n\t* %s", e.errs[0])
	}
	points := make([]string, len(e.errs))
	for i, err := range e.errs {
		points[i] = fmt.Sprintf("* %s", err)
	}
	return fmt.Sprintf("%d errors occurred:\n\t%s",
		len(e.errs), strings.Join(points, "\n\t"))
}

// Contained returns all partial failures this error was built from.
func (e *multiError) Contained() []error {
	return e.errs
}
