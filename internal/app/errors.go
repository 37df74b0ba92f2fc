package app

import "errors"

// Static error definitions for better error handling.
var (
	// ErrInvalidVariable indicates that a GraphQL variable is not in name=value form.
	ErrInvalidVariable = errors.New("invalid variable, expected name=value")
	// ErrEmptyVariableName indicates that a GraphQL variable has no name.
	ErrEmptyVariableName = errors.New("variable name is empty")
)
