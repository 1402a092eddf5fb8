package service

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNoFile          = errors.New("no file selected")
	ErrInvalidFileType = errors.New("invalid file type. Only PNG, JPG, JPEG, GIF, and WEBP files are allowed")
	ErrFileTooLarge    = errors.New("file too large. Maximum size is 5MB")
	ErrUnsafeFilename  = errors.New("invalid file name")
)

var allowedImageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// characters that must never appear in an uploaded filename
var dangerousFilenameChars = []string{"..", "/", "\\", "<", ">", ":", "\"", "|", "?", "*"}

// ImageService validates and stores uploaded images on local disk.
type ImageService struct {
	dir     string
	maxSize int64
}

// NewImageService creates the upload directory if needed and returns the
// service.
func NewImageService(dir string, maxSize int64) (*ImageService, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return &ImageService{dir: dir, maxSize: maxSize}, nil
}

// Dir returns the directory uploaded files are stored in.
func (s *ImageService) Dir() string {
	return s.dir
}

// Validate checks the upload's name and size before anything is written.
func (s *ImageService) Validate(header *multipart.FileHeader) error {
	if header == nil || header.Filename == "" {
		return ErrNoFile
	}
	if len(header.Filename) > 255 {
		return ErrUnsafeFilename
	}
	for _, ch := range dangerousFilenameChars {
		if strings.Contains(header.Filename, ch) {
			return ErrUnsafeFilename
		}
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedImageExtensions[ext] {
		return ErrInvalidFileType
	}
	if s.maxSize > 0 && header.Size > s.maxSize {
		return ErrFileTooLarge
	}
	return nil
}

// Store validates the upload and writes it to disk under a
// timestamp-and-uuid-prefixed name, returning the stored filename.
func (s *ImageService) Store(header *multipart.FileHeader) (string, error) {
	if err := s.Validate(header); err != nil {
		return "", err
	}

	src, err := header.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	name := fmt.Sprintf("%s_%s%s",
		time.Now().Format("20060102_150405"),
		uuid.New().String()[:8],
		strings.ToLower(filepath.Ext(header.Filename)),
	)

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", err
	}
	return name, nil
}

// Resolve maps a stored filename back to its path on disk, refusing
// anything that would escape the upload directory.
func (s *ImageService) Resolve(filename string) (string, error) {
	if filename == "" || strings.ContainsAny(filename, "/\\") || strings.Contains(filename, "..") {
		return "", ErrUnsafeFilename
	}
	path := filepath.Join(s.dir, filename)
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	return path, nil
}
