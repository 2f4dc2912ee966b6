package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"support-bot/internal/models"
	"support-bot/internal/splitter"
)

func TestLoadText(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "doc.txt")
	if err := os.WriteFile(path, []byte("hello\n\nworld\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if doc.Format != models.FormatText {
		t.Errorf("format = %s, want text", doc.Format)
	}
	if doc.Text != "hello\n\nworld\n" {
		t.Errorf("text = %q", doc.Text)
	}
	if doc.ID == "" {
		t.Error("document ID not assigned")
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	t.Parallel()
	_, err := Load("notes.docx")
	if err == nil {
		t.Fatal("Load() should reject .docx")
	}
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("error = %v, want ErrUnsupportedFormat", err)
	}
	var le *LoadError
	if !errors.As(err, &le) {
		t.Errorf("error %v is not a *LoadError", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()
	_, err := Load(filepath.Join(t.TempDir(), "missing.txt"))
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("error = %v, want *LoadError", err)
	}
}

func TestEnsureDefaultCreatesSampleFAQ(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "faq.txt")

	doc, err := EnsureDefault(path)
	if err != nil {
		t.Fatalf("EnsureDefault() error: %v", err)
	}
	if doc.Text != DefaultFAQ {
		t.Error("generated document does not match the sample FAQ")
	}

	// The sample FAQ splits into its advertised paragraphs.
	if sections := splitter.Split(doc.Text); len(sections) != 5 {
		t.Errorf("sample FAQ has %d sections, want 5", len(sections))
	}

	// A second call must keep the existing file untouched.
	if err := os.WriteFile(path, []byte("custom\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err = EnsureDefault(path)
	if err != nil {
		t.Fatalf("EnsureDefault() second call error: %v", err)
	}
	if doc.Text != "custom\n" {
		t.Errorf("EnsureDefault() overwrote an existing document: %q", doc.Text)
	}
}

func TestGenerated(t *testing.T) {
	t.Parallel()
	doc := Generated("faq.txt")
	if doc.Text != DefaultFAQ || doc.Format != models.FormatText {
		t.Errorf("Generated() = %+v", doc)
	}
}
