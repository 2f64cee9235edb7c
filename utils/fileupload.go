package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
)

// MaxFileSize is 10MB in bytes
const MaxFileSize = 10 * 1024 * 1024

// allowedImageTypes maps accepted photo extensions to their content type
var allowedImageTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

// FileUploadError represents a file upload validation error
type FileUploadError struct {
	Code    string
	Message string
}

func (e *FileUploadError) Error() string {
	return e.Message
}

// ValidateImageFile validates the uploaded file format and size
func ValidateImageFile(fileHeader *multipart.FileHeader) error {
	if fileHeader.Size > MaxFileSize {
		return &FileUploadError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("File size exceeds maximum allowed size of %d MB", MaxFileSize/(1024*1024)),
		}
	}
	if fileHeader.Size == 0 {
		return &FileUploadError{
			Code:    "EMPTY_FILE",
			Message: "Uploaded file is empty",
		}
	}

	if _, ok := ImageContentType(fileHeader.Filename); !ok {
		return &FileUploadError{
			Code:    "INVALID_FILE_FORMAT",
			Message: "Only .png, .jpg and .jpeg files are allowed",
		}
	}

	return nil
}

// ImageContentType returns the content type for an accepted image filename
func ImageContentType(filename string) (string, bool) {
	contentType, ok := allowedImageTypes[strings.ToLower(filepath.Ext(filename))]
	return contentType, ok
}

// ReadUploadedFile validates fileHeader and returns its content
func ReadUploadedFile(fileHeader *multipart.FileHeader) ([]byte, error) {
	if err := ValidateImageFile(fileHeader); err != nil {
		return nil, err
	}

	src, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	content, err := io.ReadAll(io.LimitReader(src, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	if len(content) > MaxFileSize {
		return nil, &FileUploadError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("File size exceeds maximum allowed size of %d MB", MaxFileSize/(1024*1024)),
		}
	}
	return content, nil
}
