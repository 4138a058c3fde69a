package validation

import (
	"fmt"

	dErrors "idregistry/pkg/domain-errors"
)

// MaxBodySize is the maximum accepted request body (16 KB).
const MaxBodySize = 16 * 1024

// Length limits for registration fields, in bytes.
const (
	MaxNameLength        = 256
	MaxEmailLength       = 320
	MaxDocumentRefLength = 512
)

// CheckStringLength validates that a string does not exceed the maximum length.
func CheckStringLength(fieldName, value string, max int) error {
	if len(value) > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds max length of %d", fieldName, max))
	}
	return nil
}
