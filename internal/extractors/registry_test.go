package extractors

import (
	"context"
	"testing"

	"github.com/verdant-labs/docvault/internal/core/domain"
)

type stubExtractor struct {
	format domain.Format
}

func (s *stubExtractor) Format() domain.Format { return s.format }

func (s *stubExtractor) Extract(context.Context, string) ([]string, error) {
	return []string{"stub"}, nil
}

func TestForPathDispatch(t *testing.T) {
	text := &stubExtractor{format: domain.FormatText}
	pdf := &stubExtractor{format: domain.FormatPDF}
	r := NewRegistry(text, pdf)

	e, ok := r.ForPath("/docs/readme.md")
	if !ok || e != text {
		t.Error("markdown path did not dispatch to the text extractor")
	}
	e, ok = r.ForPath("/docs/Report.PDF")
	if !ok || e != pdf {
		t.Error("uppercase extension did not dispatch to the pdf extractor")
	}
	if _, ok := r.ForPath("/docs/data.docx"); ok {
		t.Error("unregistered format was dispatched")
	}
	if _, ok := r.ForPath("/docs/archive.zip"); ok {
		t.Error("unsupported extension was dispatched")
	}
}

func TestRegisterReplaces(t *testing.T) {
	first := &stubExtractor{format: domain.FormatText}
	second := &stubExtractor{format: domain.FormatText}
	r := NewRegistry(first)
	r.Register(second)

	e, ok := r.ForPath("/notes.txt")
	if !ok || e != second {
		t.Error("re-registering a format did not replace the extractor")
	}
}

func TestExtensionsSorted(t *testing.T) {
	r := NewRegistry(
		&stubExtractor{format: domain.FormatText},
		&stubExtractor{format: domain.FormatSpreadsheet},
	)

	exts := r.Extensions()
	want := []string{".md", ".txt", ".xls", ".xlsx"}
	if len(exts) != len(want) {
		t.Fatalf("got %v, want %v", exts, want)
	}
	for i := range want {
		if exts[i] != want[i] {
			t.Fatalf("got %v, want %v", exts, want)
		}
	}
}
