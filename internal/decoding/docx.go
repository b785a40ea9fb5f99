package decoding

import (
	"fmt"
	"os"
	"strings"

	docx "github.com/fumiama/go-docx"
)

const docxBody = "word/document.xml"

// decodeDOCX joins the body paragraphs with newlines. Table cells contribute
// their paragraphs row by row.
func decodeDOCX(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", fmt.Errorf("stat docx: %w", err)
	}

	doc, err := docx.Parse(file, info.Size())
	if err != nil {
		return "", fmt.Errorf("parse docx: %w", err)
	}

	items := doc.Document.Body.Items
	if len(items) == 0 {
		return "", fmt.Errorf("docx: no content in %s", docxBody)
	}

	lines := make([]string, 0, len(items))
	for _, item := range items {
		switch it := item.(type) {
		case *docx.Paragraph:
			lines = append(lines, it.String())
		case *docx.Table:
			for _, row := range it.TableRows {
				for _, cell := range row.TableCells {
					for _, p := range cell.Paragraphs {
						lines = append(lines, p.String())
					}
				}
			}
		}
	}

	return strings.Join(lines, "\n"), nil
}
