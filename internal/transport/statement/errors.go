package statement

import "errors"

var (
	ErrNoStatements = errors.New("no statements due")
)
