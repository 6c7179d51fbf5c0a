package document

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

var ErrEmptyPath = errors.New("document path is empty")

// Load returns the raw text of the document at path. PDF files are run
// through text extraction; anything else is read as UTF-8 text.
func Load(path string) (string, error) {
	if path == "" {
		return "", ErrEmptyPath
	}

	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return loadPDF(path)
	}

	bs, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	return string(bs), nil
}

func loadPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	text, err := r.GetPlainText()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, text); err != nil {
		return "", err
	}

	return buf.String(), nil
}
