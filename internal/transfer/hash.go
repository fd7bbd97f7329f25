package transfer

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrHashMismatch is returned by VerifyCopy when source and destination
// digests differ.
var ErrHashMismatch = errors.New("hash mismatch between source and copy")

// FileSHA1 returns the hex SHA-1 digest of the file at path.
func FileSHA1(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := sha1.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// VerifyCopy compares the SHA-1 digests of src and dst and returns
// ErrHashMismatch (wrapped with both paths) when they differ.
func VerifyCopy(src, dst string) error {
	a, err := FileSHA1(src)
	if err != nil {
		return err
	}
	b, err := FileSHA1(dst)
	if err != nil {
		return err
	}
	if a != b {
		return fmt.Errorf("%s vs %s: %w", src, dst, ErrHashMismatch)
	}
	return nil
}
