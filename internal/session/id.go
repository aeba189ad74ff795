package session

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// idLayout renders the creation instant in UTC with separators dropped, e.g.
// "2025-07-03_2007". Ids sort lexically in creation order down to the minute.
const idLayout = "2006-01-02_1504"

// NewID derives a session id from its creation instant.
func NewID(t time.Time) string {
	return t.UTC().Format(idLayout)
}

// WithSuffix disambiguates base when another session already owns it. The
// suffix keeps base as a prefix so lexical order by minute is preserved.
func WithSuffix(base string) string {
	return base + "-" + uuid.NewString()[:8]
}

// SameMinute reports whether id was issued for the same minute as base,
// with or without a suffix.
func SameMinute(id, base string) bool {
	return id == base || strings.HasPrefix(id, base+"-")
}
