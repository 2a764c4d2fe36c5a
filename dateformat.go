package mcsv

import (
	"fmt"
	"strings"
	"unicode"
)

// dateformat.go translates the MetaCSV date pattern vocabulary (a ULDML-like
// token set: YYYY, MM, dd, HH, mm, ss, ...) into a Go reference layout,
// once, at type-compile time. Unknown letter runs are compile errors so that
// a bad pattern never surfaces as a per-row cast failure.

// layoutForToken maps a letter run (letter + repeat count) to its Go layout
// fragment.
func layoutForToken(letter rune, count int) (string, error) {
	switch letter {
	case 'y', 'Y':
		switch count {
		case 2:
			return "06", nil
		case 4:
			return "2006", nil
		}
	case 'M':
		switch count {
		case 1:
			return "1", nil
		case 2:
			return "01", nil
		case 3:
			return "Jan", nil
		case 4:
			return "January", nil
		}
	case 'd':
		switch count {
		case 1:
			return "2", nil
		case 2:
			return "02", nil
		}
	case 'D':
		// Day of year. Go has no unpadded layout for it, so shorter runs
		// share the zero-padded form.
		if count <= 3 {
			return "002", nil
		}
	case 'E':
		if count <= 3 {
			return "Mon", nil
		}
		return "Monday", nil
	case 'H':
		if count == 2 {
			return "15", nil
		}
	case 'h':
		switch count {
		case 1:
			return "3", nil
		case 2:
			return "03", nil
		}
	case 'm':
		switch count {
		case 1:
			return "4", nil
		case 2:
			return "04", nil
		}
	case 's':
		switch count {
		case 1:
			return "5", nil
		case 2:
			return "05", nil
		}
	case 'S':
		if count <= 9 {
			return strings.Repeat("0", count), nil // fractional seconds, after "."
		}
	case 'a':
		if count == 1 {
			return "PM", nil
		}
	case 'z':
		if count <= 4 {
			return "MST", nil
		}
	case 'Z':
		if count <= 5 {
			return "-0700", nil
		}
	case 'X':
		switch count {
		case 1:
			return "Z07", nil
		case 2:
			return "Z0700", nil
		case 3:
			return "Z07:00", nil
		}
	}
	return "", fmt.Errorf("unsupported date pattern token %q", strings.Repeat(string(letter), count))
}

// convertDatePattern translates a full pattern to a Go layout. Single-quoted
// runs are literal text; a doubled single quote is a literal quote.
func convertDatePattern(pattern string) (string, error) {
	var layout strings.Builder
	runes := []rune(pattern)
	i := 0
	for i < len(runes) {
		c := runes[i]
		switch {
		case c == '\'':
			// Literal run. "''" is a single quote.
			i++
			if i < len(runes) && runes[i] == '\'' {
				layout.WriteByte('\'')
				i++
				continue
			}
			for i < len(runes) {
				if runes[i] == '\'' {
					if i+1 < len(runes) && runes[i+1] == '\'' {
						layout.WriteByte('\'')
						i += 2
						continue
					}
					i++
					break
				}
				layout.WriteRune(runes[i])
				i++
			}
		case unicode.IsLetter(c):
			count := 1
			for i+count < len(runes) && runes[i+count] == c {
				count++
			}
			frag, err := layoutForToken(c, count)
			if err != nil {
				return "", err
			}
			layout.WriteString(frag)
			i += count
		default:
			layout.WriteRune(c)
			i++
		}
	}
	return layout.String(), nil
}
