package scipion

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Generate runs the interactive questionnaire, validates the answers, and
// writes the filled-in workflow config to outPath. Prompts go to promptOut
// and answers are read line by line from in, so tests can script the whole
// exchange.
func Generate(in io.Reader, promptOut io.Writer, outPath string, force bool) error {
	p, err := askParams(bufio.NewScanner(in), promptOut)
	if err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}

	t, err := LoadTemplate()
	if err != nil {
		return err
	}
	Insert(t, p)
	return WriteTemplate(t, outPath, force)
}

func askParams(sc *bufio.Scanner, w io.Writer) (*Params, error) {
	p := &Params{}
	var err error

	if p.ProjectName, err = promptString(sc, w, "Project name"); err != nil {
		return nil, err
	}
	if p.GainRefPath, err = promptString(sc, w, "Path to gain reference file"); err != nil {
		return nil, err
	}
	if p.FramesToStack, err = promptInt(sc, w, "Frames to stack (1 for prestacked)"); err != nil {
		return nil, err
	}
	if p.PhysicalPixel, err = promptFloat(sc, w, "Physical pixel size (um)"); err != nil {
		return nil, err
	}
	if p.ImagePixel, err = promptFloat(sc, w, "Image pixel size (A)"); err != nil {
		return nil, err
	}
	if p.SuperRes, err = promptBool(sc, w, "Are you running super resolution (y/n)"); err != nil {
		return nil, err
	}
	if p.CTFLowRes, err = promptFloat(sc, w, "CTF search low resolution bound (A)"); err != nil {
		return nil, err
	}
	if p.CTFHighRes, err = promptFloat(sc, w, "CTF search high resolution bound (A)"); err != nil {
		return nil, err
	}
	if p.DefocusMin, err = promptFloat(sc, w, "Defocus search minimum (um)"); err != nil {
		return nil, err
	}
	if p.DefocusMax, err = promptFloat(sc, w, "Defocus search maximum (um)"); err != nil {
		return nil, err
	}
	return p, nil
}

func promptString(sc *bufio.Scanner, w io.Writer, label string) (string, error) {
	fmt.Fprintf(w, "%s: ", label)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", err
		}
		return "", io.ErrUnexpectedEOF
	}
	return strings.TrimSpace(sc.Text()), nil
}

func promptInt(sc *bufio.Scanner, w io.Writer, label string) (int, error) {
	s, err := promptString(sc, w, label)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s: expected a whole number, got %q", label, s)
	}
	return n, nil
}

func promptFloat(sc *bufio.Scanner, w io.Writer, label string) (float64, error) {
	s, err := promptString(sc, w, label)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: expected a number, got %q", label, s)
	}
	return f, nil
}

func promptBool(sc *bufio.Scanner, w io.Writer, label string) (bool, error) {
	s, err := promptString(sc, w, label)
	if err != nil {
		return false, err
	}
	s = strings.ToLower(s)
	return strings.HasPrefix(s, "y"), nil
}
