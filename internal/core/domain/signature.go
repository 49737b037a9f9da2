package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Signature computes the identity fingerprint for a file observation.
// It hashes the resolved absolute path together with the file size and
// integer modification time, so two observations of an unchanged file
// produce the same signature and any size or mtime change produces a
// new one. File bytes are never read: a touch without an edit triggers
// reprocessing, and a byte-identical copy at a different path counts
// as a new file.
func Signature(resolvedPath string, size int64, mtime time.Time) string {
	return hashString(fmt.Sprintf("%s::%d::%d", resolvedPath, size, mtime.Unix()))
}

// FileKey resolves a path to the canonical identity key used in the
// manifest and in chunk IDs: the absolute path with symlinks resolved
// where possible.
func FileKey(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return abs, nil
}

// FileSignature stats a file and returns its identity key and signature.
func FileSignature(path string) (key, sig string, err error) {
	key, err = FileKey(path)
	if err != nil {
		return "", "", err
	}
	st, err := os.Stat(key)
	if err != nil {
		return "", "", fmt.Errorf("stat file: %w", err)
	}
	return key, Signature(key, st.Size(), st.ModTime()), nil
}

// ChunkID derives the stable identifier for a chunk. It is a pure
// function of the file identity key, the file signature and the
// zero-based chunk index, so re-ingesting an unchanged file reproduces
// identical IDs and a changed file produces a fresh, non-colliding set.
func ChunkID(fileKey, signature string, index int) string {
	return hashString(fmt.Sprintf("%s::%s::%d", fileKey, signature, index))
}

func hashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
