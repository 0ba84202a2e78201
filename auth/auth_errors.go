package auth

import "errors"

var (
	MissingIdentifierErr = errors.New("missing email or school id")
	MissingPasswordErr   = errors.New("missing password")
)
