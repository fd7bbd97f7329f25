// Package lbzip2 wraps the lbzip2 compressor. Compression keeps the
// original file (-k) so the uncompressed stack remains available for
// downstream processing; thread count is capped to avoid saturating the
// acquisition box.
package lbzip2

import (
	"context"
	"strconv"

	"github.com/abcsFrederick/cryoem-pipeline/internal/imod"
)

// BuildArgs constructs the lbzip2 command line for one file.
func BuildArgs(path string, threads int, force bool) []string {
	args := []string{"lbzip2", "-k", "-n", strconv.Itoa(threads), "-z"}
	if force {
		args = append(args, "-f")
	}
	return append(args, path)
}

// Compress runs lbzip2 over path, producing path.bz2 next to it. Blocks
// until the compressor exits.
func Compress(ctx context.Context, verbose bool, path string, threads int, force bool) imod.ExecResult {
	return imod.Execute(ctx, verbose, BuildArgs(path, threads, force))
}
