package services

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pkg/errors"
)

var (
	reTOC        = regexp.MustCompile(`(?im)^.*(mục lục|table of contents).*$`)
	rePageNumber = regexp.MustCompile(`(?im)^\s*(trang|page)\s*\d+\s*$`)
	reBlankLines = regexp.MustCompile(`\n\s*\n+`)
	reSpaces     = regexp.MustCompile(`[ \t]+`)
)

// ExtractPromptText reads a .pdf, .docx or .txt document as plain narration text.
func ExtractPromptText(filename string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", errors.Wrap(err, "read document")
	}

	var text string
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		t, err := extractPDF(buf.Bytes())
		if err != nil {
			return "", err
		}
		text = t
	case ".docx":
		t, err := extractDOCX(buf.Bytes())
		if err != nil {
			return "", err
		}
		text = t
	case ".txt":
		text = buf.String()
	default:
		return "", invalid("unsupported document type %q", filepath.Ext(filename))
	}

	return cleanText(text), nil
}

func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", invalid("cannot read pdf: %v", err)
	}

	var textBuilder strings.Builder
	pages := reader.NumPage()
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		textBuilder.WriteString(content)
		textBuilder.WriteString("\n")
	}
	return textBuilder.String(), nil
}

// .docx là file zip, văn bản nằm trong các thẻ <w:t> của word/document.xml
func extractDOCX(data []byte) (string, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", invalid("cannot read docx: %v", err)
	}

	var docFile *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", invalid("docx has no word/document.xml")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", errors.Wrap(err, "open document.xml")
	}
	defer rc.Close()

	var sb strings.Builder
	decoder := xml.NewDecoder(rc)
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", invalid("malformed docx: %v", err)
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local == "t" {
				var text string
				if err := decoder.DecodeElement(&text, &se); err == nil {
					sb.WriteString(text)
				}
			}
		case xml.EndElement:
			if se.Name.Local == "p" {
				sb.WriteString("\n")
			}
		}
	}
	return sb.String(), nil
}

func cleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = reTOC.ReplaceAllString(text, "")
	text = rePageNumber.ReplaceAllString(text, "")
	text = reSpaces.ReplaceAllString(text, " ")
	text = reBlankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
