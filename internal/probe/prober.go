package probe

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// Result holds the parsed properties of one MRC file.
type Result struct {
	Columns  int
	Rows     int
	Sections int
	Mode     int
	ModeDesc string  // e.g. "16-bit integer"
	PixelX   float64 // Angstroms.
}

// Dimensions returns "CxRxS", or "unknown" when the size line was absent.
func (r *Result) Dimensions() string {
	if r.Columns <= 0 || r.Rows <= 0 {
		return "unknown"
	}
	return fmt.Sprintf("%dx%dx%d", r.Columns, r.Rows, r.Sections)
}

// Probe runs `header` against path and returns the parsed result.
func Probe(ctx context.Context, path string) (*Result, error) {
	cmd := exec.CommandContext(ctx, "header", path)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("header %q: %w", path, err)
	}
	return ParseHeader(string(out))
}

// header output lines of interest:
//
//	Number of columns, rows, sections .....    3838    3710      40
//	Map mode ..............................    1   (16-bit integer)
//	Pixel spacing (Angstroms)..............   0.885     0.885     0.885
var (
	reSize    = regexp.MustCompile(`(?i)columns, rows, sections[ .]*(\d+)\s+(\d+)\s+(\d+)`)
	reMode    = regexp.MustCompile(`(?i)map mode[ .]*(\d+)(?:\s*\(([^)]*)\))?`)
	reSpacing = regexp.MustCompile(`(?i)pixel spacing \(angstroms\)[ .]*([0-9.]+)`)
)

// ParseHeader converts raw `header` text output into a Result.
// Exported for testing without a real IMOD install.
func ParseHeader(output string) (*Result, error) {
	r := &Result{}

	m := reSize.FindStringSubmatch(output)
	if m == nil {
		return nil, fmt.Errorf("parse header output: no size line in %q", firstLine(output))
	}
	r.Columns, _ = strconv.Atoi(m[1])
	r.Rows, _ = strconv.Atoi(m[2])
	r.Sections, _ = strconv.Atoi(m[3])

	if m := reMode.FindStringSubmatch(output); m != nil {
		r.Mode, _ = strconv.Atoi(m[1])
		r.ModeDesc = strings.TrimSpace(m[2])
	}
	if m := reSpacing.FindStringSubmatch(output); m != nil {
		r.PixelX, _ = strconv.ParseFloat(m[1], 64)
	}
	return r, nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.Index(s, "\n"); idx > 0 {
		return s[:idx]
	}
	return s
}
