package core

import (
	"fmt"
	"strconv"
	"strings"
)

// maxSlugTextLen bounds the text portion of a slug; the numeric suffix is
// appended after truncation.
const maxSlugTextLen = 45

// Slugify normalizes display text to a lowercase ASCII token: runs of
// non-alphanumeric characters collapse to a single hyphen.
func Slugify(text string) string {
	var b strings.Builder
	pendingHyphen := false

	for _, r := range strings.ToLower(text) {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !isAlnum {
			pendingHyphen = b.Len() > 0
			continue
		}
		if pendingHyphen {
			b.WriteByte('-')
			pendingHyphen = false
		}
		b.WriteRune(r)
	}

	return b.String()
}

// MakeSlug derives the public identifier for an entity from its display text
// and numeric identity. The id suffix guarantees global uniqueness even when
// two entities normalize to the same text, so collisions on the text portion
// are acceptable. Slugs are assigned once and never recomputed.
func MakeSlug(text string, id uint) string {
	s := Slugify(text)
	if len(s) > maxSlugTextLen {
		s = strings.TrimRight(s[:maxSlugTextLen], "-")
	}
	if s == "" {
		return strconv.FormatUint(uint64(id), 10)
	}
	return fmt.Sprintf("%s-%d", s, id)
}

// IDFromSlug recovers the numeric identity from a slug by parsing the
// substring after the final hyphen.
func IDFromSlug(slug string) (uint, error) {
	part := slug
	if idx := strings.LastIndexByte(slug, '-'); idx >= 0 {
		part = slug[idx+1:]
	}
	id, err := strconv.ParseUint(part, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("slug %q has no numeric suffix", slug)
	}
	return uint(id), nil
}
