package services

import (
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// StorageService spools uploads to disk for parsers that can only read from a
// path. Spooled files live only until release is called.
type StorageService interface {
	EnsureUploadDir() error
	Spool(file *multipart.FileHeader, docType string) (path string, release func(), err error)
}

type diskStorage struct {
	uploadPath string
}

func NewStorageService(uploadPath string) StorageService {
	return &diskStorage{uploadPath: uploadPath}
}

// EnsureUploadDir implements StorageService.
func (s *diskStorage) EnsureUploadDir() error {
	if err := os.MkdirAll(s.uploadPath, 0o750); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}
	return nil
}

// Spool implements StorageService. The file is written under a random name
// so concurrent uploads of the same filename never collide.
func (s *diskStorage) Spool(file *multipart.FileHeader, docType string) (string, func(), error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext == "" {
		ext = ".bin"
	}
	path := filepath.Join(s.uploadPath, fmt.Sprintf("%s_%s%s", docType, uuid.NewString(), ext))

	src, err := file.Open()
	if err != nil {
		return "", nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dst, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create spool file: %w", err)
	}

	release := func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("⚠️ Failed to remove spooled %s: %v", filepath.Base(path), err)
		}
	}

	_, copyErr := io.Copy(dst, src)
	closeErr := dst.Close()
	if copyErr != nil || closeErr != nil {
		release()
		if copyErr == nil {
			copyErr = closeErr
		}
		return "", nil, fmt.Errorf("failed to spool upload: %w", copyErr)
	}

	return path, release, nil
}
