package flatten

import "errors"

var (
	ErrFileNotFound    = errors.New("result file not found")
	ErrInvalidDocument = errors.New("result file is not valid JSON")
	ErrMissingField    = errors.New("result file is missing a required field")
	ErrSchemaMismatch  = errors.New("result file does not match the BOQA result schema")
)
