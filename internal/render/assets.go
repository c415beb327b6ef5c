package render

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedLogoFormat is returned for logo files outside png/jpg.
var ErrUnsupportedLogoFormat = errors.New("render: unsupported logo format")

// Logo is a preloaded raster image handle injected into the engine.
// A nil Logo is valid: the engine paints the text wordmark instead.
type Logo struct {
	data   []byte
	format string
}

// LoadLogo reads a logo image from disk once at startup. Callers should
// log the error and continue with a nil logo; rendering does not depend
// on the asset being present.
func LoadLogo(path string) (*Logo, error) {
	if path == "" {
		return nil, nil
	}
	var format string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		format = "PNG"
	case ".jpg", ".jpeg":
		format = "JPG"
	default:
		return nil, ErrUnsupportedLogoFormat
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &Logo{data: data, format: format}, nil
}

// Format returns the gofpdf image type string.
func (l *Logo) Format() string {
	if l == nil {
		return ""
	}
	return l.format
}

// Reader returns a fresh reader over the image bytes.
func (l *Logo) Reader() *bytes.Reader {
	if l == nil {
		return nil
	}
	return bytes.NewReader(l.data)
}
