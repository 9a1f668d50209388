package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// maxSlugLen is measured in runes, not bytes.
const maxSlugLen = 60

// Slug turns free text into a path-safe fragment: surrounding whitespace is
// trimmed, letters, numbers, '-' and '_' are kept, every other rune
// (spaces included) becomes '_' and the result is cut to 60 runes.
func Slug(text string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(text) {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '-' || r == '_' {
			b.WriteRune(r)
			continue
		}
		// Spaces included; runs are not collapsed.
		b.WriteRune('_')
	}
	runes := []rune(b.String())
	if len(runes) > maxSlugLen {
		runes = runes[:maxSlugLen]
	}
	return string(runes)
}

// EventID derives the identifier of an event. Two events with the same
// start, end and slugged title share an identifier.
func EventID(start, end, title string) string {
	return fmt.Sprintf("%s_%s_%s", start, end, Slug(title))
}

// ExpenseID derives the identifier of the expense appended after existing
// expenses. The amount is truncated toward zero.
func ExpenseID(existing int, item string, amount float64) string {
	whole := strconv.FormatFloat(math.Trunc(amount), 'f', 0, 64)
	return fmt.Sprintf("%04d_%s_%s", existing+1, Slug(item), whole)
}
