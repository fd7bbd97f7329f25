package imod

import "regexp"

// Pre-compiled regexes for classifying newstack/lbzip2 output into known
// failure modes. Checked in order by [Hint]; the first match wins.
var (
	reMissingInput = regexp.MustCompile(
		`(?i)no such file|cannot open|could not open|does not exist`)

	reBadFormat = regexp.MustCompile(
		`(?i)not an? (MRC|image) file|error reading (the )?header|unknown (file )?format`)

	reDiskFull = regexp.MustCompile(
		`(?i)no space left on device|disk quota exceeded|error writing`)

	reOutOfMemory = regexp.MustCompile(
		`(?i)cannot allocate|out of memory|killed`)
)

// Hint maps captured tool output to a short operator hint, or "" when the
// failure does not match a known pattern.
func Hint(output string) string {
	switch {
	case reMissingInput.MatchString(output):
		return "an input file disappeared or is unreadable"
	case reBadFormat.MatchString(output):
		return "input is not a valid MRC image"
	case reDiskFull.MatchString(output):
		return "scratch volume may be full"
	case reOutOfMemory.MatchString(output):
		return "process was killed, likely out of memory"
	default:
		return ""
	}
}
