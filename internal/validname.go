package internal

import (
	"regexp"
)

const (
	// A valid variable name must start with a letter, digit or underscore.
	// It may contain any character after that except control and slash.
	pattern = `^[\pL\pN_][^\pC/]*$`
	// It may not end with a whitespace character.
	antiPattern = `\pZ$`
)

var (
	re     *regexp.Regexp
	antiRe *regexp.Regexp
)

func init() {
	var err error
	re, err = regexp.Compile(pattern)
	if err != nil {
		panic(err)
	}
	antiRe, err = regexp.Compile(antiPattern)
	if err != nil {
		panic(err)
	}
}

// IsValidVariableName returns true if name is usable as a dataset variable name.
func IsValidVariableName(name string) bool {
	return re.MatchString(name) && !antiRe.MatchString(name)
}
