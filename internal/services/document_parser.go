package services

import (
	"fmt"
	"io"
	"log"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

const (
	mediaTypeText = "text/plain"
	mediaTypePDF  = "application/pdf"
)

// DocumentParser turns uploaded resumes and job descriptions into text.
// Unsupported or undecodable input yields an empty string, never an error.
type DocumentParser interface {
	ParseUpload(file *multipart.FileHeader, docType string) string
	ParseFile(path string) string
}

type documentParser struct {
	storage StorageService
}

func NewDocumentParser(storage StorageService) DocumentParser {
	return &documentParser{storage: storage}
}

// ParseUpload implements DocumentParser.
func (p *documentParser) ParseUpload(file *multipart.FileHeader, docType string) string {
	if file == nil {
		return ""
	}

	switch uploadMediaType(file) {
	case mediaTypeText:
		src, err := file.Open()
		if err != nil {
			log.Printf("⚠️ Failed to open %s upload: %v", docType, err)
			return ""
		}
		defer src.Close()
		return decodeText(src, docType)

	case mediaTypePDF:
		if p.storage == nil {
			log.Printf("⚠️ No storage configured, ignoring PDF %s upload", docType)
			return ""
		}
		path, release, err := p.storage.Spool(file, docType)
		if err != nil {
			log.Printf("⚠️ Failed to store %s upload: %v", docType, err)
			return ""
		}
		defer release()

		text, err := ExtractPDFText(path)
		if err != nil {
			log.Printf("⚠️ Failed to parse PDF %s: %v", docType, err)
			return ""
		}
		return text

	default:
		log.Printf("⚠️ Unsupported %s upload %q (%s), using empty text",
			docType, file.Filename, file.Header.Get("Content-Type"))
		return ""
	}
}

// ParseFile implements DocumentParser. The format is chosen by extension.
func (p *documentParser) ParseFile(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		text, err := ExtractPDFText(path)
		if err != nil {
			log.Printf("⚠️ Failed to parse PDF %s: %v", path, err)
			return ""
		}
		return text
	}

	f, err := os.Open(path)
	if err != nil {
		log.Printf("⚠️ Failed to open %s: %v", path, err)
		return ""
	}
	defer f.Close()

	return decodeText(f, filepath.Base(path))
}

func uploadMediaType(file *multipart.FileHeader) string {
	mediaType, _, err := mime.ParseMediaType(file.Header.Get("Content-Type"))
	if err == nil && (mediaType == mediaTypeText || mediaType == mediaTypePDF) {
		return mediaType
	}
	if strings.EqualFold(filepath.Ext(file.Filename), ".pdf") && (err != nil || mediaType == "application/octet-stream") {
		return mediaTypePDF
	}
	return mediaType
}

func decodeText(r io.Reader, name string) string {
	data, err := io.ReadAll(r)
	if err != nil {
		log.Printf("⚠️ Failed to read %s: %v", name, err)
		return ""
	}
	if !utf8.Valid(data) {
		log.Printf("⚠️ %s is not valid UTF-8 text, using empty text", name)
		return ""
	}
	return string(data)
}

// ExtractPDFText returns the plain text of every readable page.
func ExtractPDFText(filePath string) (string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Log error but continue with other pages
			log.Printf("⚠️ Skipping unreadable page %d of %s: %v", pageIndex, filePath, err)
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}

	text := CleanText(textBuilder.String())
	if text == "" {
		return "", fmt.Errorf("no text content found in PDF")
	}

	return text, nil
}

// Helper function to clean and normalize text
func CleanText(text string) string {
	text = strings.TrimSpace(text)

	lines := strings.Split(text, "\n")
	var cleanedLines []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleanedLines = append(cleanedLines, line)
		}
	}

	return strings.Join(cleanedLines, "\n")
}
