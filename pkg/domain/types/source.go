package types

import (
	"regexp"

	"github.com/m-mizutani/goerr/v2"
)

// SourceName is the unique key of a configured data source
type SourceName string

var sourceNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// Validate checks if the SourceName is valid
func (s SourceName) Validate() error {
	if s == "" {
		return goerr.New("source name cannot be empty")
	}
	if !sourceNamePattern.MatchString(string(s)) {
		return goerr.New("source name must be lowercase alphanumeric with hyphens", goerr.V("name", s))
	}
	return nil
}

// String returns the string representation of SourceName
func (s SourceName) String() string {
	return string(s)
}
