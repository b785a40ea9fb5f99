package decoding

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	"github.com/cloudwego/eino/schema"
)

const (
	ExtPDF  = ".pdf"
	ExtDOCX = ".docx"
	ExtTXT  = ".txt"
)

// UnsupportedFormatError is returned for files outside the allow-list.
type UnsupportedFormatError struct {
	Path      string
	Extension string
}

func (e *UnsupportedFormatError) Error() string {
	ext := e.Extension
	if ext == "" {
		ext = "(none)"
	}
	return fmt.Sprintf("unsupported file format %s for %q: supported formats are %s",
		ext, e.Path, strings.Join(SupportedFormats(), ", "))
}

// SupportedFormats lists the accepted extensions.
func SupportedFormats() []string {
	formats := []string{ExtPDF, ExtDOCX, ExtTXT}
	sort.Strings(formats)
	return formats
}

// IsSupported reports whether the file name has an accepted extension.
func IsSupported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ExtPDF, ExtDOCX, ExtTXT:
		return true
	default:
		return false
	}
}

// Decoder extracts plain text from documents. It is safe for concurrent use.
type Decoder struct {
	pdfOnce   sync.Once
	pdfParser *pdf.PDFParser
	pdfErr    error
}

func New() *Decoder {
	return &Decoder{}
}

// Decode returns the text content of the file at path.
func (d *Decoder) Decode(ctx context.Context, path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ExtTXT:
		return decodeText(path)
	case ExtDOCX:
		return decodeDOCX(path)
	case ExtPDF:
		return d.decodePDF(ctx, path)
	default:
		return "", &UnsupportedFormatError{Path: path, Extension: ext}
	}
}

func decodeText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read text file: %w", err)
	}
	text := string(data)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "")
	}
	return strings.TrimPrefix(text, "\ufeff"), nil
}

func (d *Decoder) decodePDF(ctx context.Context, path string) (string, error) {
	d.pdfOnce.Do(func() {
		d.pdfParser, d.pdfErr = pdf.NewPDFParser(ctx, &pdf.Config{ToPages: false})
	})
	if d.pdfErr != nil {
		return "", fmt.Errorf("create pdf parser: %w", d.pdfErr)
	}

	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer file.Close()

	docs, err := d.pdfParser.Parse(ctx, file)
	if err != nil {
		return "", fmt.Errorf("parse pdf: %w", err)
	}

	return joinDocuments(docs), nil
}

func joinDocuments(docs []*schema.Document) string {
	parts := make([]string, 0, len(docs))
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		if content := strings.TrimSpace(doc.Content); content != "" {
			parts = append(parts, content)
		}
	}
	return strings.Join(parts, "\n")
}
