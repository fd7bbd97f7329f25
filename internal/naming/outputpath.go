package naming

import "path/filepath"

// StackPath returns the scratch-local path of the stacked movie for name.
// ".st" is the conventional IMOD stack extension.
func StackPath(scratchDir, name string) string {
	return filepath.Join(scratchDir, name+".st")
}

// ScratchPath returns the scratch-local copy destination for an input file.
func ScratchPath(scratchDir, inputPath string) string {
	return filepath.Join(scratchDir, filepath.Base(inputPath))
}

// CompressedPath returns the lbzip2 output path for a file.
func CompressedPath(path string) string {
	return path + ".bz2"
}

// StoragePath returns the archival destination for a local artifact.
func StoragePath(storageDir, localPath string) string {
	return filepath.Join(storageDir, filepath.Base(localPath))
}
