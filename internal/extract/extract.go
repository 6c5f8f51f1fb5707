// Package extract turns an uploaded resume document into plain text.
package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
)

const (
	mimePDF   = "application/pdf"
	mimeDOCX  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeZip   = "application/zip"
	mimePlain = "text/plain"

	// MaxFileSize bounds the documents accepted for extraction.
	MaxFileSize = 10 << 20
)

var (
	ErrEmptyText   = errors.New("document contains no text")
	ErrUnsupported = errors.New("unsupported document type")
)

// File reads path and extracts its text.
func File(ctx context.Context, path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size() > MaxFileSize {
		return "", fmt.Errorf("%s is larger than %d bytes", path, MaxFileSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	return Text(ctx, filepath.Base(path), data)
}

// Text detects the document type of data and returns its trimmed text.
// name is only used as a hint for zip based formats.
func Text(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", ErrEmptyText
	}

	kind := detect(name, data)

	var (
		text string
		err  error
	)
	switch kind {
	case mimePDF:
		text, err = extractPDF(data)
	case mimeDOCX:
		text, err = extractDOCX(data)
	case mimePlain:
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%w: text is not valid UTF-8", ErrUnsupported)
		}
		text = string(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, kind)
	}
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", kind, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyText
	}
	return text, nil
}

func detect(name string, data []byte) string {
	mt := mimetype.Detect(data)

	switch {
	case mt.Is(mimePDF):
		return mimePDF
	case mt.Is(mimeDOCX):
		return mimeDOCX
	case mt.Is(mimeZip):
		if hasDocumentXML(data) || strings.EqualFold(filepath.Ext(name), ".docx") {
			return mimeDOCX
		}
		return mimeZip
	}

	for m := mt; m != nil; m = m.Parent() {
		if m.Is(mimePlain) {
			return mimePlain
		}
	}
	return mt.String()
}

func extractPDF(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	doc := findDocumentXML(zr)
	if doc == nil {
		return "", errors.New("word/document.xml not found")
	}

	rc, err := doc.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	return docxText(rc)
}

func hasDocumentXML(data []byte) bool {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	return findDocumentXML(zr) != nil
}

func findDocumentXML(zr *zip.Reader) *zip.File {
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			return f
		}
	}
	return nil
}

// docxText keeps the text runs of a WordprocessingML body, one line per paragraph.
func docxText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var sb strings.Builder
	inText := false

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteByte('\t')
			case "br":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}

	return sb.String(), nil
}
