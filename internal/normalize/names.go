// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"regexp"
	"strings"
)

var (
	andSeparator = regexp.MustCompile(`(?i)\s+and\s+`)
	nameJunk     = regexp.MustCompile(`[^\p{L}\p{N}_,\s-]+`)
	etAlSuffix   = regexp.MustCompile(`(?i)[,\s]*\b(?:et\.?\s*al\.?|and\s+others|others)\s*$`)
)

// SplitAuthors splits an author string into an ordered list of names.
// It recognises ";" lists, " and " lists, newline lists, and paired
// "Family, Given, Family, Given" lists. A string that fits none of these
// is returned as a single name.
func SplitAuthors(s string) []string {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return []string{}
	}

	if strings.Contains(raw, ";") {
		return nonEmpty(strings.Split(raw, ";"))
	}
	if strings.Contains(raw, "\n") {
		return nonEmpty(strings.Split(raw, "\n"))
	}
	if parts := nonEmpty(andSeparator.Split(raw, -1)); len(parts) > 1 {
		return parts
	}

	parts := nonEmpty(strings.Split(raw, ","))
	if len(parts) >= 2 && allFullNames(parts) {
		return parts
	}
	if len(parts) >= 2 && len(parts)%2 == 0 {
		canPair := true
		givenLike := false
		for i := 0; i < len(parts); i += 2 {
			if len(strings.Fields(parts[i])) > 2 {
				canPair = false
			}
			given := parts[i+1]
			if strings.Contains(given, ".") || len(strings.Fields(given)) <= 2 {
				givenLike = true
			}
		}
		if canPair && givenLike {
			out := make([]string, 0, len(parts)/2)
			for i := 0; i < len(parts); i += 2 {
				out = append(out, parts[i]+", "+parts[i+1])
			}
			return out
		}
	}
	return []string{raw}
}

// allFullNames reports whether every comma-separated part reads as
// "Given Family" with no abbreviated initials.
func allFullNames(parts []string) bool {
	for _, p := range parts {
		if len(strings.Fields(p)) < 2 || strings.Contains(p, ".") {
			return false
		}
	}
	return true
}

func nonEmpty(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Name is one parsed author name.
type Name struct {
	Full    string
	Family  string
	Given   string
	Initial string

	// EtAl marks a truncation marker such as "et al." or "others".
	EtAl bool
}

// Key returns the initials-reduced form "family:initial".
func (n Name) Key() string {
	return n.Family + ":" + n.Initial
}

// ParseName derives the comparable parts of one author name. "Family, Given"
// and "Given Family" orders are both understood.
func ParseName(name string) Name {
	full := strings.TrimSpace(name)
	if etAlSuffix.ReplaceAllString(full, "") == "" {
		return Name{Full: full, EtAl: true}
	}

	cleaned := strings.TrimSpace(nameJunk.ReplaceAllString(Fold(full), ""))
	var family, given string
	if i := strings.Index(cleaned, ","); i >= 0 {
		family = strings.TrimSpace(cleaned[:i])
		given = strings.TrimSpace(strings.ReplaceAll(cleaned[i+1:], ",", " "))
	} else {
		tokens := strings.Fields(cleaned)
		if len(tokens) == 0 {
			return Name{Full: full}
		}
		family = tokens[len(tokens)-1]
		given = strings.Join(tokens[:len(tokens)-1], " ")
	}
	given = strings.Join(strings.Fields(given), " ")

	n := Name{Full: full, Family: strings.Join(strings.Fields(family), " "), Given: given}
	if given != "" {
		n.Initial = string([]rune(given)[0])
	}
	return n
}

// Names parses an author list. A trailing "et al." entry, or one attached to
// the last name ("Smith, J. et al."), is dropped and reported as truncation.
func Names(authors []string) (names []Name, truncated bool) {
	for _, a := range authors {
		if strings.TrimSpace(a) == "" {
			continue
		}
		stripped := etAlSuffix.ReplaceAllString(a, "")
		if stripped != a {
			truncated = true
		}
		n := ParseName(stripped)
		if n.EtAl || n.Family == "" {
			truncated = truncated || n.EtAl
			continue
		}
		names = append(names, n)
	}
	return names, truncated
}

// Compatible reports whether two parsed names can refer to the same person:
// equal family names and given names that agree as far as both are known,
// so "J. Smith" matches "John Smith" but not "Jane Smith" vs "John Smith".
func Compatible(a, b Name) bool {
	if a.Family == "" || a.Family != b.Family {
		return false
	}
	if a.Given == "" || b.Given == "" {
		return true
	}
	if a.Initial != b.Initial {
		return false
	}
	ga, gb := firstGiven(a.Given), firstGiven(b.Given)
	if isInitial(ga) || isInitial(gb) {
		return true
	}
	return ga == gb
}

func firstGiven(given string) string {
	f := strings.Fields(strings.ReplaceAll(given, "-", " "))
	if len(f) == 0 {
		return ""
	}
	return f[0]
}

func isInitial(s string) bool {
	return len([]rune(s)) == 1
}
