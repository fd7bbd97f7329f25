package scipion

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed workflow_template.json
var rawTemplate []byte

// ErrOutputExists is returned by WriteTemplate when the target file exists
// and force was not given.
var ErrOutputExists = errors.New("output file already exists")

// Template is the Scipion protocol list: import movies, motion correction,
// CTF estimation. Generic maps keep every template key that this tool does
// not manage.
type Template []map[string]interface{}

// Protocol positions within the template.
const (
	protoImport = 0
	protoCTF    = 2
)

// LoadTemplate parses the embedded protocol template.
func LoadTemplate() (Template, error) {
	var t Template
	if err := json.Unmarshal(rawTemplate, &t); err != nil {
		return nil, fmt.Errorf("parse workflow template: %w", err)
	}
	if len(t) <= protoCTF {
		return nil, fmt.Errorf("workflow template has %d protocols, need at least %d", len(t), protoCTF+1)
	}
	return t, nil
}

// Insert writes the acquisition parameters into the import and CTF protocol
// entries. The import path points at the pipeline's scratch location for the
// project, which is where Scipion picks up stacked movies.
func Insert(t Template, p *Params) {
	imp := t[protoImport]
	imp["filesPath"] = filepath.Join("/tmp", p.ProjectName)
	imp["filesPattern"] = "*.mrc"
	imp["magnification"] = p.Magnification()
	imp["samplingRate"] = p.ImagePixel
	imp["scannedPixelSize"] = p.PhysicalPixel
	imp["gainFile"] = p.GainRefPath

	ctf := t[protoCTF]
	ctf["minDefocus"] = p.DefocusMin
	ctf["maxDefocus"] = p.DefocusMax
	ctf["lowRes"] = p.ImagePixel / p.CTFLowRes
	ctf["highRes"] = p.ImagePixel / p.CTFHighRes
}

// WriteTemplate serializes t to path with indented, stable-key JSON.
// An existing file is only replaced when force is set.
func WriteTemplate(t Template, path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%w: %s", ErrOutputExists, path)
	}

	data, err := json.MarshalIndent(t, "", "    ")
	if err != nil {
		return fmt.Errorf("encode workflow config: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
