package errors

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Field returns an error instance that wraps the original error with
// additional information. It returns `nil` if provided error is `nil`.
//
// Use Go naming for the field name, for example Owner or PlatformFee.
// Wrapping an error that is already a field error nests the paths, so
// Field("Recipients", Field("1.Address", err, "")) is reported for
// Recipients.1.Address. Each error of a multi error is nested on its own.
func Field(fieldName string, err error, description string, args ...interface{}) error {
	if isNilErr(err) {
		return nil
	}
	if len(args) > 0 {
		description = fmt.Sprintf(description, args...)
	}

	switch e := err.(type) {
	case *fieldError:
		desc := e.desc
		if description != "" {
			desc = joinDesc(description, desc)
		}
		return &fieldError{
			parent: e.parent,
			field:  FieldPath(fieldName, e.field),
			desc:   desc,
		}
	case multiErr:
		var res error
		for _, inner := range e {
			res = Append(res, Field(fieldName, inner, description))
		}
		return res
	}

	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	return &fieldError{
		parent: err,
		field:  fieldName,
		desc:   description,
	}
}

// FieldPath returns the dot separated path of a nested field. Slice
// elements are named by their index, for example FieldPath("Recipients",
// 2, "Address") is Recipients.2.Address.
func FieldPath(segments ...interface{}) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if p := fmt.Sprint(s); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ".")
}

func joinDesc(outer, inner string) string {
	if inner == "" {
		return outer
	}
	return outer + ": " + inner
}

// AppendField is a shortcut function to club together error(s) with a
// given field error.
func AppendField(errorsOrNil error, fieldName string, fieldErrOrNil error) error {
	return Append(errorsOrNil, Field(fieldName, fieldErrOrNil, ""))
}

type fieldError struct {
	parent error
	field  string
	desc   string
}

func (err *fieldError) Error() string {
	if err.desc == "" {
		return fmt.Sprintf("field %q: %s", err.field, err.parent)
	}
	return fmt.Sprintf("field %q: %s: %s", err.field, err.desc, err.parent)
}

// Cause implements the causer interface.
func (err *fieldError) Cause() error {
	return err.parent
}

// Field implements fielder interface.
func (err *fieldError) Field() string {
	return err.field
}

// FieldErrors returns all errors reported for the given field path. Only
// exact path matches are returned.
func FieldErrors(err error, fieldName string) []error {
	if isNilErr(err) {
		return nil
	}

	var res []error
	for {
		if err == nil {
			return res
		}

		if f, ok := err.(fielder); ok {
			if f.Field() == fieldName {
				return append(res, err)
			}
		}

		if u, ok := err.(unpacker); ok {
			for _, e := range u.Unpack() {
				res = append(res, FieldErrors(e, fieldName)...)
			}
			return res
		}

		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return res
		}
	}
}

type fielder interface {
	Field() string
}
