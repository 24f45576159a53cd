// Package hash fingerprints input documents so summaries can name exactly
// which result file they were computed from.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

const prefix = "sha256:"

// DigestFile returns the prefixed sha256 of the file at path and its size.
func DigestFile(path string) (digest string, size int64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("open file %s: %w", path, err)
	}
	defer f.Close()

	digest, size, err = DigestReader(f)
	if err != nil {
		return "", 0, fmt.Errorf("hash file %s: %w", path, err)
	}
	return digest, size, nil
}

func DigestReader(r io.Reader) (string, int64, error) {
	h := sha256.New()
	n, err := io.Copy(h, r)
	if err != nil {
		return "", 0, err
	}
	return prefix + hex.EncodeToString(h.Sum(nil)), n, nil
}
