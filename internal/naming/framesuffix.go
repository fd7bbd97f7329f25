package naming

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Trailing frame counter: optional separator, optional "f"/"frame" marker,
// then 1-4 digits at the end of the stem (e.g. "_f01", "-003", "0007",
// "_frame12").
var reFrameSuffix = regexp.MustCompile(`(?i)[._-]?(?:frame|f)?\d{1,4}$`)

// TrimFrameSuffix removes a trailing frame counter from a filename stem.
// Stems that are nothing but a counter are returned unchanged, so a movie
// named "0001.mrc" still yields a usable name.
func TrimFrameSuffix(stem string) string {
	trimmed := reFrameSuffix.ReplaceAllString(stem, "")
	if trimmed == "" {
		return stem
	}
	return trimmed
}

// MovieName returns the logical movie name for a group whose first member is
// framePath. For multi-frame groups the frame counter is trimmed from the
// stem; singletons keep their stem as-is.
func MovieName(framePath string, multiFrame bool) string {
	base := filepath.Base(framePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if !multiFrame {
		return stem
	}
	return TrimFrameSuffix(stem)
}
