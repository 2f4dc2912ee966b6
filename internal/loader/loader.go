// Package loader reads source documents (.txt or .pdf) into plain text.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"support-bot/internal/models"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
)

// ErrUnsupportedFormat is returned for any extension other than .txt or .pdf.
var ErrUnsupportedFormat = errors.New("unsupported file format, use .txt or .pdf")

// LoadError wraps any failure to read or parse a source document. Callers
// recover by falling back to the generated default document rather than
// aborting.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string { return fmt.Sprintf("load %s: %v", e.Path, e.Err) }
func (e *LoadError) Unwrap() error { return e.Err }

// DefaultFAQ is the sample support document created when no document exists.
const DefaultFAQ = `Resetting Your Password
To reset your password, go to the login page and click "Forgot Password".
Enter your registered email and follow the password reset link sent to you.

Refund Policy
We offer refunds within 30 days of purchase. Please contact support@example.com with your order number to start the refund process.

Contacting Support
You can contact our support team via email at support@example.com or call 1-800-555-1234 during business hours (9 AM - 5 PM EST).

Shipping Information
Orders are processed within 2 business days. Shipping usually takes 5-7 business days. You will receive a tracking number by email once your order has shipped.

Account Deletion
If you want to permanently delete your account, please send a request to support@example.com.
Your account and associated data will be removed within 14 days.
`

// Load reads the document at path, extracting plain text according to the
// file extension.
func Load(path string) (*models.Document, error) {
	var (
		text   string
		format models.DocumentFormat
		err    error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt":
		format = models.FormatText
		text, err = loadText(path)
	case ".pdf":
		format = models.FormatPDF
		text, err = loadPDF(path)
	default:
		return nil, &LoadError{Path: path, Err: ErrUnsupportedFormat}
	}
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	return &models.Document{
		ID:     uuid.NewString(),
		Path:   path,
		Format: format,
		Text:   text,
	}, nil
}

// EnsureDefault writes the sample FAQ to path unless a file already exists
// there, then loads it. This is the recovery path for a missing document.
func EnsureDefault(path string) (*models.Document, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, &LoadError{Path: path, Err: err}
		}
		if err := os.WriteFile(path, []byte(DefaultFAQ), 0o644); err != nil {
			return nil, &LoadError{Path: path, Err: err}
		}
	}
	return Load(path)
}

// Generated returns the sample FAQ as an in-memory document, for when even
// the file-backed fallback fails.
func Generated(path string) *models.Document {
	return &models.Document{
		ID:     uuid.NewString(),
		Path:   path,
		Format: models.FormatText,
		Text:   DefaultFAQ,
	}
}

func loadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func loadPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	b, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract plain text: %w", err)
	}
	if _, err := buf.ReadFrom(b); err != nil {
		return "", fmt.Errorf("failed to read text: %w", err)
	}

	return buf.String(), nil
}
