package scipion

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gainRef(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gainref.dm4")
	require.NoError(t, os.WriteFile(path, []byte("gain"), 0o644))
	return path
}

func validParams(t *testing.T) *Params {
	t.Helper()
	return &Params{
		ProjectName:   "session42",
		GainRefPath:   gainRef(t),
		FramesToStack: 40,
		PhysicalPixel: 5,
		ImagePixel:    1.0,
		SuperRes:      false,
		CTFLowRes:     30,
		CTFHighRes:    5,
		DefocusMin:    0.5,
		DefocusMax:    5,
	}
}

func TestParamsValidate(t *testing.T) {
	p := validParams(t)
	require.NoError(t, p.Validate())

	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"empty project name", func(p *Params) { p.ProjectName = "" }},
		{"missing gain reference", func(p *Params) { p.GainRefPath = "/nope/gain.dm4" }},
		{"zero frames", func(p *Params) { p.FramesToStack = 0 }},
		{"too many frames", func(p *Params) { p.FramesToStack = 100 }},
		{"physical pixel too small", func(p *Params) { p.PhysicalPixel = 1 }},
		{"physical pixel too large", func(p *Params) { p.PhysicalPixel = 50 }},
		{"image pixel too small", func(p *Params) { p.ImagePixel = 0.1 }},
		{"image pixel too large", func(p *Params) { p.ImagePixel = 5 }},
		{"ctf low out of range", func(p *Params) { p.CTFLowRes = 50 }},
		{"ctf high out of range", func(p *Params) { p.CTFHighRes = 1 }},
		{"ctf bounds inverted", func(p *Params) { p.CTFLowRes, p.CTFHighRes = 5, 30 }},
		{"defocus min out of range", func(p *Params) { p.DefocusMin = 10 }},
		{"defocus max out of range", func(p *Params) { p.DefocusMax = 100 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validParams(t)
			tt.mutate(p)
			assert.Error(t, p.Validate())
		})
	}
}

func TestMagnification(t *testing.T) {
	p := &Params{PhysicalPixel: 5, ImagePixel: 1.0}
	assert.InDelta(t, 50000, p.Magnification(), 1e-6)

	p.SuperRes = true
	assert.InDelta(t, 25000, p.Magnification(), 1e-6, "super resolution halves magnification")
}

func TestLoadTemplate(t *testing.T) {
	tmpl, err := LoadTemplate()
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(tmpl), 3)

	assert.Contains(t, tmpl[protoImport]["object.className"], "ImportMovies")
}

func TestInsert(t *testing.T) {
	p := validParams(t)
	tmpl, err := LoadTemplate()
	require.NoError(t, err)

	Insert(tmpl, p)

	imp := tmpl[protoImport]
	assert.Equal(t, "/tmp/session42", imp["filesPath"])
	assert.Equal(t, "*.mrc", imp["filesPattern"])
	assert.InDelta(t, 50000, imp["magnification"].(float64), 1e-6)
	assert.Equal(t, 1.0, imp["samplingRate"])
	assert.Equal(t, 5.0, imp["scannedPixelSize"])
	assert.Equal(t, p.GainRefPath, imp["gainFile"])

	ctf := tmpl[protoCTF]
	assert.Equal(t, 0.5, ctf["minDefocus"])
	assert.Equal(t, 5.0, ctf["maxDefocus"])
	assert.InDelta(t, 1.0/30, ctf["lowRes"].(float64), 1e-9)
	assert.InDelta(t, 1.0/5, ctf["highRes"].(float64), 1e-9)
}

func TestWriteTemplate_RefusesExistingWithoutForce(t *testing.T) {
	tmpl, err := LoadTemplate()
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "workflow.json")
	require.NoError(t, WriteTemplate(tmpl, out, false))

	err = WriteTemplate(tmpl, out, false)
	assert.ErrorIs(t, err, ErrOutputExists)

	assert.NoError(t, WriteTemplate(tmpl, out, true))
}

func scriptedInput(p *Params, superRes string) io.Reader {
	answers := []string{
		p.ProjectName,
		p.GainRefPath,
		"40",
		"5",
		"1.0",
		superRes,
		"30",
		"5",
		"0.5",
		"5",
	}
	return strings.NewReader(strings.Join(answers, "\n") + "\n")
}

func TestGenerate(t *testing.T) {
	p := validParams(t)
	out := filepath.Join(t.TempDir(), "nested", "workflow.json")

	var prompts bytes.Buffer
	require.NoError(t, Generate(scriptedInput(p, "n"), &prompts, out, false))

	assert.Contains(t, prompts.String(), "Project name")
	assert.Contains(t, prompts.String(), "super resolution")

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	var tmpl Template
	require.NoError(t, json.Unmarshal(data, &tmpl))
	assert.Equal(t, "/tmp/session42", tmpl[protoImport]["filesPath"])
	assert.InDelta(t, 50000, tmpl[protoImport]["magnification"].(float64), 1e-6)
}

func TestGenerate_SuperResolution(t *testing.T) {
	p := validParams(t)
	out := filepath.Join(t.TempDir(), "workflow.json")

	require.NoError(t, Generate(scriptedInput(p, "yes"), io.Discard, out, false))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var tmpl Template
	require.NoError(t, json.Unmarshal(data, &tmpl))
	assert.InDelta(t, 25000, tmpl[protoImport]["magnification"].(float64), 1e-6)
}

func TestGenerate_RejectsBadAnswer(t *testing.T) {
	in := strings.NewReader("session42\n/tmp/gain.dm4\nforty\n")
	err := Generate(in, io.Discard, filepath.Join(t.TempDir(), "w.json"), false)
	assert.Error(t, err)
}

func TestGenerate_TruncatedInput(t *testing.T) {
	in := strings.NewReader("session42\n")
	err := Generate(in, io.Discard, filepath.Join(t.TempDir(), "w.json"), false)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
