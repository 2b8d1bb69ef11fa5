package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// BundleIDError reports the first character a bundle id may not contain.
type BundleIDError struct {
	BundleID string
	Index    int
	Char     rune
}

func (e *BundleIDError) Error() string {
	return fmt.Sprintf("invalid character %q at index %d in bundle ID %q", e.Char, e.Index, e.BundleID)
}

// ParseBundleID checks that s is a bundle id: ASCII letters, digits,
// hyphens and periods only.
func ParseBundleID(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("empty bundle ID")
	}
	for i, c := range s {
		if !isBundleIDChar(c) {
			return "", &BundleIDError{BundleID: s, Index: i, Char: c}
		}
	}
	return s, nil
}

func isBundleIDChar(c rune) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '-' || c == '.'
}

// ParseBundleIDs parses every id in ids, reporting the first invalid one.
func ParseBundleIDs(ids []string) ([]string, error) {
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		parsed, err := ParseBundleID(id)
		if err != nil {
			return nil, err
		}
		result = append(result, parsed)
	}
	return result, nil
}

// ReadBundleIDs reads bundle ids from a file, one per line. Blank lines and
// text after '#' are ignored.
func ReadBundleIDs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open bundle ID list: %w", err)
	}
	defer f.Close()

	var ids []string
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		id, err := ParseBundleID(text)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		ids = append(ids, id)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read bundle ID list: %w", err)
	}
	return ids, nil
}

// MergeBundleIDs appends the ids of each list in order, dropping repeats.
// Bundle ids are case-insensitive.
func MergeBundleIDs(lists ...[]string) []string {
	seen := make(map[string]bool)
	var merged []string
	for _, list := range lists {
		for _, id := range list {
			key := strings.ToLower(id)
			if seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, id)
		}
	}
	return merged
}
