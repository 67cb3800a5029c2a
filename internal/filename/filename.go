// Package filename derives safe, deterministic on-disk names for uploads and rendered results.
package filename

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ResultSuffix is appended to the stored upload name to form the result document name.
const ResultSuffix = "_mcqs.pdf"

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// Secure returns a version of name that is safe to store in a flat directory.
// Accents are folded to ASCII, path separators become word breaks, whitespace runs
// become a single underscore, anything else outside [A-Za-z0-9_.-] is dropped, and
// leading or trailing dots and underscores are stripped. The result may be empty.
// The same input always yields the same output.
func Secure(name string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn))), name)
	if err != nil {
		folded = name
	}
	folded = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, folded)
	folded = strings.ReplaceAll(folded, "/", " ")
	folded = strings.ReplaceAll(folded, "\\", " ")
	joined := strings.Join(strings.Fields(folded), "_")
	cleaned := unsafeChars.ReplaceAllString(joined, "")
	return strings.Trim(cleaned, "._")
}

// ResultName returns the result document name for a stored upload name.
func ResultName(stored string) string {
	return stored + ResultSuffix
}

// IsPlainBase reports whether name is a single path element with no directory part.
func IsPlainBase(name string) bool {
	return name != "" && name != "." && name != ".." && filepath.Base(name) == name && !strings.ContainsAny(name, `/\`)
}
