package builder

import (
	"errors"
	"strconv"
	"strings"
)

// The statements below are spelled the same way in PlantUML and in the
// Mermaid extension comments, so both parsers share them.

// ParseDivider parses "== text ==".
func ParseDivider(s string) (string, error) {
	if !strings.HasPrefix(s, "==") || !strings.HasSuffix(s, "==") || len(s) < 4 {
		return "", errors.New(`divider must look like "== text =="`)
	}
	return strings.TrimSpace(s[2 : len(s)-2]), nil
}

// ParseSpacer parses "|||" and "||height||".
func ParseSpacer(s string) (int, error) {
	if s == "|||" {
		return 0, nil
	}
	if !strings.HasPrefix(s, "||") || !strings.HasSuffix(s, "||") || len(s) < 5 {
		return 0, errors.New(`spacer must look like "|||" or "||45||"`)
	}
	h, err := strconv.Atoi(strings.TrimSpace(s[2 : len(s)-2]))
	if err != nil || h < 0 {
		return 0, errors.New("spacer height must be a non-negative integer")
	}
	return h, nil
}

// ParseDelay parses "..." and "...text...".
func ParseDelay(s string) (string, error) {
	if s == "..." {
		return "", nil
	}
	if !strings.HasPrefix(s, "...") || !strings.HasSuffix(s, "...") || len(s) < 6 {
		return "", errors.New(`delay must look like "..." or "...text..."`)
	}
	return strings.TrimSpace(s[3 : len(s)-3]), nil
}

// SplitLink separates a trailing "[[url]]" from reference text.
func SplitLink(text string) (string, string) {
	if !strings.HasSuffix(text, "]]") {
		return text, ""
	}
	i := strings.LastIndex(text, "[[")
	if i < 0 {
		return text, ""
	}
	return strings.TrimSpace(text[:i]), strings.TrimSpace(text[i+2 : len(text)-2])
}

// JoinLink is the inverse of SplitLink.
func JoinLink(text, link string) string {
	if link == "" {
		return text
	}
	if text == "" {
		return "[[" + link + "]]"
	}
	return text + " [[" + link + "]]"
}

// FormatSpacer renders a spacer in PlantUML syntax.
func FormatSpacer(text string, height int, delay bool) string {
	switch {
	case delay && text != "":
		return "..." + text + "..."
	case delay:
		return "..."
	case height > 0:
		return "||" + strconv.Itoa(height) + "||"
	default:
		return "|||"
	}
}
