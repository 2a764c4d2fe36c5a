package mcsv

import (
	"path/filepath"
	"strings"
)

// MetaExt is the extension of a MetaCSV sidecar file.
const MetaExt = ".mcsv"

// ToMetaPath derives the default sidecar path for a data file: same
// directory, same base name, ".mcsv" extension.
func ToMetaPath(dataPath string) string {
	ext := filepath.Ext(dataPath)
	return strings.TrimSuffix(dataPath, ext) + MetaExt
}

// splitParameters splits a type token on unescaped slashes. A backslash
// escapes the next character, so "date/dd\/MM\/yyyy" yields
// ["date", "dd/MM/yyyy"].
func splitParameters(token string) []string {
	var parts []string
	var cur strings.Builder
	backslash := false
	for _, c := range token {
		switch {
		case backslash:
			if c != '/' && c != '\\' {
				cur.WriteByte('\\')
			}
			cur.WriteRune(c)
			backslash = false
		case c == '\\':
			backslash = true
		case c == '/':
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(c)
		}
	}
	if backslash {
		cur.WriteByte('\\')
	}
	parts = append(parts, cur.String())
	return parts
}

// joinParameters renders a type token from its parts, escaping slashes and
// backslashes, and dropping trailing empty parts.
func joinParameters(parts ...string) string {
	last := len(parts) - 1
	for last > 0 && parts[last] == "" {
		last--
	}
	var b strings.Builder
	for i, p := range parts[:last+1] {
		if i > 0 {
			b.WriteByte('/')
		}
		for _, c := range p {
			if c == '/' || c == '\\' {
				b.WriteByte('\\')
			}
			b.WriteRune(c)
		}
	}
	return b.String()
}

// escapeLineTerminator renders a line terminator in its sidecar form.
func escapeLineTerminator(lt string) string {
	switch lt {
	case "\n":
		return `\n`
	case "\r\n":
		return `\r\n`
	case "\r":
		return `\r`
	default:
		return lt
	}
}

// unescapeLineTerminator parses the sidecar form of a line terminator.
func unescapeLineTerminator(elt string) string {
	switch elt {
	case `\n`:
		return "\n"
	case `\r\n`:
		return "\r\n"
	case `\r`:
		return "\r"
	default:
		return elt
	}
}
