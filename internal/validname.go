package internal

import (
	"errors"
	"fmt"
	"regexp"
)

const (
	// A valid name must start with a letter, digit or underscore.
	// It may contain any character after that except control and slash.
	pattern = `^[\pL\pN_][^\pC/]*$`
	// It may not end with a whitespace character, or be a reserved word.
	antiPattern = `(\pZ|^(u?byte|char|string|u?short|u?int|u?int64|uint64|float|double|enum|opaque|compound))$`

	// MaxNameLength is NC_MAX_NAME of the C library.
	MaxNameLength = 256
)

var ErrInvalidName = errors.New("invalid name")

var (
	re     = regexp.MustCompile(pattern)
	antiRe = regexp.MustCompile(antiPattern)
)

// IsValidNetCDFName returns true if name is a valid NetCDF name.
func IsValidNetCDFName(name string) bool {
	return len(name) <= MaxNameLength && re.MatchString(name) && !antiRe.MatchString(name)
}

// CheckName returns an error wrapping ErrInvalidName when name cannot be
// used for a dimension, variable or attribute.
func CheckName(name string) error {
	if !IsValidNetCDFName(name) {
		return fmt.Errorf("%q: %w", name, ErrInvalidName)
	}
	return nil
}
