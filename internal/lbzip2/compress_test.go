package lbzip2

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildArgs(t *testing.T) {
	assert.Equal(t,
		[]string{"lbzip2", "-k", "-n", "8", "-z", "/tmp/p/movie.st"},
		BuildArgs("/tmp/p/movie.st", 8, false))

	assert.Equal(t,
		[]string{"lbzip2", "-k", "-n", "4", "-z", "-f", "/tmp/p/movie.st"},
		BuildArgs("/tmp/p/movie.st", 4, true))
}

func TestCompress_RunsTool(t *testing.T) {
	bin := t.TempDir()
	// Stand-in that records its argv and produces the expected output file.
	script := `#!/bin/sh
echo "$@" > "` + filepath.Join(bin, "argv") + `"
for a in "$@"; do in="$a"; done
cp "$in" "$in.bz2"
`
	require.NoError(t, os.WriteFile(filepath.Join(bin, "lbzip2"), []byte(script), 0o755))
	t.Setenv("PATH", bin+string(os.PathListSeparator)+os.Getenv("PATH"))

	work := t.TempDir()
	input := filepath.Join(work, "movie.st")
	require.NoError(t, os.WriteFile(input, []byte("stack"), 0o644))

	res := Compress(context.Background(), false, input, 2, false)
	require.NoError(t, res.Err)
	assert.FileExists(t, input+".bz2")
	assert.FileExists(t, input, "the original must be kept")

	argv, err := os.ReadFile(filepath.Join(bin, "argv"))
	require.NoError(t, err)
	assert.Equal(t, "-k -n 2 -z "+input+"\n", string(argv))
}
