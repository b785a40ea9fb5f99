package decoding

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	docx "github.com/fumiama/go-docx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>
    <w:p><w:r><w:t xml:space="preserve">Senior </w:t></w:r><w:r><w:t>Python</w:t></w:r><w:r><w:tab/><w:t>Engineer</w:t></w:r></w:p>
    <w:p/>
    <w:p><w:r><w:t>5 years of experience</w:t><w:br/><w:t>AWS &amp; Docker</w:t></w:r></w:p>
  </w:body>
</w:document>`

func writeDOCX(t *testing.T, dir string, body string) string {
	t.Helper()
	path := filepath.Join(dir, "resume.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.Create("[Content_Types].xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<Types/>`))
	require.NoError(t, err)

	if body != "" {
		w, err = zw.Create(docxBody)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return path
}

func TestDecodeText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.TXT")
	require.NoError(t, os.WriteFile(path, []byte("\ufeffPython developer\nBerlin"), 0o600))

	text, err := New().Decode(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, "Python developer\nBerlin", text)
}

func TestDecodeDOCX(t *testing.T) {
	path := writeDOCX(t, t.TempDir(), documentXML)

	text, err := New().Decode(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nSenior Python\tEngineer\n\n5 years of experience\nAWS & Docker", text)
}

func TestDecodeDOCXTableCells(t *testing.T) {
	body := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Skills</w:t></w:r></w:p>
    <w:tbl>
      <w:tr>
        <w:tc><w:p><w:r><w:t>Go</w:t></w:r></w:p></w:tc>
        <w:tc><w:p><w:r><w:t>Kubernetes</w:t></w:r></w:p></w:tc>
      </w:tr>
    </w:tbl>
  </w:body>
</w:document>`
	path := writeDOCX(t, t.TempDir(), body)

	text, err := New().Decode(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, "Skills\nGo\nKubernetes", text)
}

func TestDecodeDOCXWrittenByWordProcessor(t *testing.T) {
	doc := docx.New().WithDefaultTheme()
	doc.AddParagraph().AddText("Machine learning engineer")
	doc.AddParagraph().AddText("3 years of experience with PyTorch")

	path := filepath.Join(t.TempDir(), "cv.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	_, err = doc.WriteTo(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	text, err := New().Decode(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, "Machine learning engineer\n3 years of experience with PyTorch", text)
}

func TestDecodeDOCXWithoutBody(t *testing.T) {
	path := writeDOCX(t, t.TempDir(), "")

	_, err := New().Decode(context.Background(), path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), docxBody)
}

func TestDecodeCorruptPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.pdf")
	require.NoError(t, os.WriteFile(path, []byte("not a pdf at all"), 0o600))

	_, err := New().Decode(context.Background(), path)

	require.Error(t, err)
	var unsupported *UnsupportedFormatError
	assert.False(t, errors.As(err, &unsupported))
}

func TestDecodeUnsupported(t *testing.T) {
	for _, name := range []string{"resume.doc", "resume.rtf", "README"} {
		_, err := New().Decode(context.Background(), filepath.Join(t.TempDir(), name))

		var unsupported *UnsupportedFormatError
		require.True(t, errors.As(err, &unsupported), name)
		assert.Contains(t, err.Error(), ".docx, .pdf, .txt")
	}
}

func TestDecodeMissingFile(t *testing.T) {
	_, err := New().Decode(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestIsSupported(t *testing.T) {
	assert.True(t, IsSupported("cv.PDF"))
	assert.True(t, IsSupported("/tmp/cv.docx"))
	assert.True(t, IsSupported("cv.txt"))
	assert.False(t, IsSupported("cv.odt"))
	assert.False(t, IsSupported("cv"))
	assert.Equal(t, []string{".docx", ".pdf", ".txt"}, SupportedFormats())
}
