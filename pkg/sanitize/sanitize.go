// Package sanitize makes externally sourced text safe to print on a terminal.
//
// Threat descriptions come from a scraped web page and log fields from an
// untrusted file; either may carry escape sequences that move the cursor,
// retitle the window or hide output.
package sanitize

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const DefaultMaxDisplayLength = 256

const (
	esc = 0x1B
	bel = 0x07
)

// Display sanitizes s and truncates it to maxLen runes, with "..." marking a cut.
// maxLen <= 0 means DefaultMaxDisplayLength.
func Display(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxDisplayLength
	}
	return Truncate(Terminal(s), maxLen)
}

// Terminal replaces control characters and strips ANSI escape sequences.
//
// Replacements:
//   - CSI (ESC [ ... final) and OSC (ESC ] ... BEL or ESC \) sequences become "[ESC]"
//   - Tab and newline become a space
//   - CR becomes "[CR]", DEL "[DEL]", other C0/C1 controls "[CTRL]"
//   - Invalid UTF-8 bytes become U+FFFD
func Terminal(s string) string {
	if isClean(s) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); {
		if s[i] == esc {
			i = skipEscape(s, i)
			b.WriteString("[ESC]")
			continue
		}

		r, size := utf8.DecodeRuneInString(s[i:])
		i += size

		switch {
		case r == utf8.RuneError && size == 1:
			b.WriteRune(utf8.RuneError)
		case r == '\t' || r == '\n':
			b.WriteByte(' ')
		case r == '\r':
			b.WriteString("[CR]")
		case r == 0x7F:
			b.WriteString("[DEL]")
		case unicode.IsControl(r):
			b.WriteString("[CTRL]")
		default:
			b.WriteRune(r)
		}
	}

	return b.String()
}

// Truncate cuts s to at most maxLen runes.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string([]rune(s)[:maxLen])
	}
	return string([]rune(s)[:maxLen-3]) + "..."
}

// IP keeps only the characters an IPv4 or IPv6 address can contain.
func IP(ip string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == ':':
			return r
		case (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F'):
			return r
		}
		return -1
	}, ip)

	if clean == "" {
		return "[INVALID]"
	}
	return clean
}

func isClean(s string) bool {
	for _, r := range s {
		if r == utf8.RuneError || unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// skipEscape returns the index just past the escape sequence starting at i.
func skipEscape(s string, i int) int {
	i++
	if i >= len(s) {
		return i
	}

	switch s[i] {
	case '[':
		i++
		for i < len(s) && !isCSIFinal(s[i]) {
			i++
		}
		if i < len(s) {
			i++
		}
	case ']':
		i++
		for i < len(s) {
			if s[i] == bel {
				return i + 1
			}
			if s[i] == esc && i+1 < len(s) && s[i+1] == '\\' {
				return i + 2
			}
			i++
		}
	default:
		i++
	}
	return i
}

func isCSIFinal(c byte) bool {
	return c >= 0x40 && c <= 0x7E
}
