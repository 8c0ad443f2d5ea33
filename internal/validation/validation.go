// Copyright (c) 2026 John Dewey

// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to
// deal in the Software without restriction, including without limitation the
// rights to use, copy, modify, merge, publish, distribute, sublicense, and/or
// sell copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:

// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.

// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING
// FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER
// DEALINGS IN THE SOFTWARE.

// Package validation provides a shared validator instance.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var instance = newValidator()

// subjectTokenRe matches a single NATS subject token usable in consumer
// and stream names.
var subjectTokenRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// customHints maps validator tags to a hint appended to the default error.
var customHints = map[string]func(fe validator.FieldError) string{
	"duration": func(fe validator.FieldError) string {
		return fmt.Sprintf("%q is not a duration (e.g. \"1s\", \"2m\")", fe.Value())
	},
	"subject_token": func(fe validator.FieldError) string {
		return fmt.Sprintf("%q must be a single subject token without dots or wildcards", fe.Value())
	},
	"gtefield": func(fe validator.FieldError) string {
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	},
}

func newValidator() *validator.Validate {
	v := validator.New()

	// Cannot error: tags are non-empty and functions are non-nil.
	_ = v.RegisterValidation("duration", validDuration)
	_ = v.RegisterValidation("subject_token", validSubjectToken)

	return v
}

func validDuration(
	fl validator.FieldLevel,
) bool {
	_, err := time.ParseDuration(fl.Field().String())
	return err == nil
}

func validSubjectToken(
	fl validator.FieldLevel,
) bool {
	return subjectTokenRe.MatchString(fl.Field().String())
}

// Struct validates a struct and returns the error message and false if invalid.
func Struct(
	v any,
) (string, bool) {
	if err := instance.Struct(v); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return err.Error(), false
		}
		return formatErrors(validationErrors), false
	}

	return "", true
}

// Var validates a single variable against a tag and returns the error
// message and false if invalid.
func Var(
	field any,
	tag string,
) (string, bool) {
	if err := instance.Var(field, tag); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return err.Error(), false
		}
		return formatErrors(validationErrors), false
	}

	return "", true
}

// formatErrors builds the error string, appending a custom hint for known
// tags while keeping the standard validator prefix.
func formatErrors(
	errs validator.ValidationErrors,
) string {
	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		msg := fe.Error()
		if fn, ok := customHints[fe.Tag()]; ok {
			msg = fmt.Sprintf("%s: %s", msg, fn(fe))
		}
		msgs = append(msgs, msg)
	}

	return strings.Join(msgs, "; ")
}

// Instance returns the shared validator for registering custom validators.
func Instance() *validator.Validate {
	return instance
}
