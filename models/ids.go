package models

import "regexp"

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidID reports whether id is a well-formed opaque identifier. The core
// never assumes how ids are generated, only that they are short tokens of
// letters, digits, '-' and '_'.
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}
