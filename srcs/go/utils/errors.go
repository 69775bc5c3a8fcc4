package utils

import (
	"fmt"
	"strings"
)

type mergedError struct {
	msg  string
	errs []error
}

func (e *mergedError) Error() string   { return e.msg }
func (e *mergedError) Unwrap() []error { return e.errs }

// MergeErrors returns nil if all errs are nil. The result matches every
// non-nil error under errors.Is.
func MergeErrors(errs []error, hint string) error {
	var failed []error
	var msgs []string
	for _, e := range errs {
		if e != nil {
			failed = append(failed, e)
			msgs = append(msgs, e.Error())
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return &mergedError{
		msg:  fmt.Sprintf("%s failed with %s: %s", hint, Pluralize(len(failed), "error", "errors"), strings.Join(msgs, ", ")),
		errs: failed,
	}
}
