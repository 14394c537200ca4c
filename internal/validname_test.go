package internal

import (
	"testing"
)

func TestValidNames(t *testing.T) {
	valid := []string{
		"pressure",
		"van_genuchten_alpha",
		"_tmp",
		"9lives",
		"with space inside",
	}
	for _, name := range valid {
		if !IsValidVariableName(name) {
			t.Error("should be valid:", name)
		}
	}

	invalid := []string{
		"",
		"with/slash",
		"trailing space ",
		" leading",
		"ctrl\x01char",
	}
	for _, name := range invalid {
		if IsValidVariableName(name) {
			t.Error("should be invalid:", name)
		}
	}
}
