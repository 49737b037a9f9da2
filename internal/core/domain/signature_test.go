package domain

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSignatureStable(t *testing.T) {
	mtime := time.Unix(1700000000, 0)
	a := Signature("/data/report.pdf", 1024, mtime)
	b := Signature("/data/report.pdf", 1024, mtime)
	if a != b {
		t.Errorf("identical observations produced different signatures: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("signature is not a sha256 hex digest: %q", a)
	}
}

func TestSignatureChangesWithAnyField(t *testing.T) {
	mtime := time.Unix(1700000000, 0)
	base := Signature("/data/report.pdf", 1024, mtime)

	if Signature("/data/other.pdf", 1024, mtime) == base {
		t.Error("path change did not change the signature")
	}
	if Signature("/data/report.pdf", 1025, mtime) == base {
		t.Error("size change did not change the signature")
	}
	if Signature("/data/report.pdf", 1024, mtime.Add(time.Second)) == base {
		t.Error("mtime change did not change the signature")
	}
}

func TestSignatureIgnoresSubSecondMtime(t *testing.T) {
	mtime := time.Unix(1700000000, 0)
	a := Signature("/data/report.pdf", 1024, mtime)
	b := Signature("/data/report.pdf", 1024, mtime.Add(500*time.Millisecond))
	if a != b {
		t.Error("sub-second mtime difference changed the signature")
	}
}

func TestChunkIDPure(t *testing.T) {
	a := ChunkID("/data/report.pdf", "sig1", 0)
	b := ChunkID("/data/report.pdf", "sig1", 0)
	if a != b {
		t.Error("identical inputs produced different chunk IDs")
	}

	if ChunkID("/data/report.pdf", "sig1", 1) == a {
		t.Error("index change did not change the chunk ID")
	}
	if ChunkID("/data/report.pdf", "sig2", 0) == a {
		t.Error("signature change did not change the chunk ID")
	}
	if ChunkID("/data/other.pdf", "sig1", 0) == a {
		t.Error("file key change did not change the chunk ID")
	}
}

func TestFileSignature(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	key1, sig1, err := FileSignature(path)
	if err != nil {
		t.Fatal(err)
	}
	if !filepath.IsAbs(key1) {
		t.Errorf("file key is not absolute: %q", key1)
	}

	key2, sig2, err := FileSignature(path)
	if err != nil {
		t.Fatal(err)
	}
	if key1 != key2 || sig1 != sig2 {
		t.Error("repeated observation of an unchanged file differs")
	}

	// Grow the file and backdate nothing: the size alone must change
	// the signature.
	if err := os.WriteFile(path, []byte("hello world"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, sig3, err := FileSignature(path)
	if err != nil {
		t.Fatal(err)
	}
	if sig3 == sig1 {
		t.Error("content size change did not change the signature")
	}
}

func TestFileSignatureMissingFile(t *testing.T) {
	_, _, err := FileSignature(filepath.Join(t.TempDir(), "absent.txt"))
	if err == nil {
		t.Error("expected an error for a missing file")
	}
}
