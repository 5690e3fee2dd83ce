// Package parsing extracts bullet points from uploaded resumes (PDF or DOCX).
package parsing

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/jonathan/career-analyzer/internal/types"
)

// DefaultMaxBytes is the upload limit used when none is configured (10 MiB).
const DefaultMaxBytes int64 = 10 << 20

// Supported upload extensions
const (
	ExtPDF  = ".pdf"
	ExtDOCX = ".docx"
)

// Parser turns resume files into ordered bullet points.
type Parser struct {
	MaxBytes int64
	Logger   *slog.Logger
}

// New creates a parser with the given upload limit (DefaultMaxBytes if <= 0).
func New(maxBytes int64, logger *slog.Logger) *Parser {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{MaxBytes: maxBytes, Logger: logger}
}

// Supported reports whether filename has a parseable extension.
func Supported(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ExtPDF, ExtDOCX:
		return true
	}
	return false
}

// Parse reads a resume and returns its bullets in document order. size is the
// declared upload size, or -1 if unknown. A document without bullets yields an
// empty slice and no error.
func (p *Parser) Parse(ctx context.Context, filename string, r io.Reader, size int64) ([]types.BulletPoint, error) {
	if !Supported(filename) {
		return nil, &UnsupportedFormatError{Filename: filename}
	}
	if size > p.MaxBytes {
		return nil, &TooLargeError{Size: size, Limit: p.MaxBytes}
	}

	data, err := io.ReadAll(io.LimitReader(r, p.MaxBytes+1))
	if err != nil {
		return nil, &ParseError{Message: "failed to read upload", Cause: err}
	}
	if int64(len(data)) > p.MaxBytes {
		return nil, &TooLargeError{Size: int64(len(data)), Limit: p.MaxBytes}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bullets, err := p.parseBytes(filename, data)
	if err != nil {
		p.Logger.Warn("resume parse failed", "file", filename, "error", err)
		return nil, err
	}
	p.Logger.Info("resume parsed", "file", filename, "bytes", len(data), "bullets", len(bullets))
	return bullets, nil
}

func (p *Parser) parseBytes(filename string, data []byte) ([]types.BulletPoint, error) {
	if strings.ToLower(filepath.Ext(filename)) == ExtDOCX {
		return docxBullets(data)
	}
	text, err := pdfText(data)
	if err != nil {
		return nil, err
	}
	return ExtractBullets(text), nil
}
