package document

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faq.txt")
	os.WriteFile(path, []byte("Hostel fees are ₹45,000 per year."), 0o644)

	text, err := Load(path)
	if err != nil {
		assert.Fail(t, err.Error())
		return
	}

	assert.Equal(t, "Hostel fees are ₹45,000 per year.", text)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load("")
	assert.ErrorIs(t, err, ErrEmptyPath)
}

func TestLoadCorruptPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faq.pdf")
	os.WriteFile(path, []byte("not a pdf"), 0o644)

	_, err := Load(path)
	assert.Error(t, err)
}
