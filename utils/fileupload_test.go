package utils

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestFileHeader builds a multipart.FileHeader the way gin hands it to handlers
func createTestFileHeader(t *testing.T, filename string, size int64, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", "application/octet-stream")
	part, err := writer.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	reader := multipart.NewReader(body, writer.Boundary())
	form, err := reader.ReadForm(int64(len(content)) + 1024)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	require.NotEmpty(t, form.File["file"])
	fileHeader := form.File["file"][0]
	// Override size for testing purposes
	fileHeader.Size = size
	return fileHeader
}

func TestValidateImageFile_AcceptedFormats(t *testing.T) {
	for _, name := range []string{"bottles.png", "bottles.jpg", "BOTTLES.JPEG"} {
		t.Run(name, func(t *testing.T) {
			content := []byte("fake image content")
			fileHeader := createTestFileHeader(t, name, int64(len(content)), content)

			assert.NoError(t, ValidateImageFile(fileHeader))
		})
	}
}

func TestValidateImageFile_FileTooLarge(t *testing.T) {
	content := []byte("fake png content")
	fileHeader := createTestFileHeader(t, "large.png", 11*1024*1024, content)

	err := ValidateImageFile(fileHeader)
	require.Error(t, err)

	fileErr, ok := err.(*FileUploadError)
	require.True(t, ok, "Error should be of type FileUploadError")
	assert.Equal(t, "FILE_TOO_LARGE", fileErr.Code)
	assert.Contains(t, fileErr.Message, "File size exceeds maximum allowed size")
}

func TestValidateImageFile_Empty(t *testing.T) {
	fileHeader := createTestFileHeader(t, "empty.png", 0, nil)

	err := ValidateImageFile(fileHeader)
	require.Error(t, err)
	assert.Equal(t, "EMPTY_FILE", err.(*FileUploadError).Code)
}

func TestValidateImageFile_InvalidFormat(t *testing.T) {
	for _, name := range []string{"test.gif", "test.pdf", "testfile"} {
		t.Run(name, func(t *testing.T) {
			content := []byte("fake content")
			fileHeader := createTestFileHeader(t, name, int64(len(content)), content)

			err := ValidateImageFile(fileHeader)
			require.Error(t, err)

			fileErr, ok := err.(*FileUploadError)
			require.True(t, ok, "Error should be of type FileUploadError")
			assert.Equal(t, "INVALID_FILE_FORMAT", fileErr.Code)
		})
	}
}

func TestImageContentType(t *testing.T) {
	contentType, ok := ImageContentType("photo.JPG")
	assert.True(t, ok)
	assert.Equal(t, "image/jpeg", contentType)

	contentType, ok = ImageContentType("photo.png")
	assert.True(t, ok)
	assert.Equal(t, "image/png", contentType)

	_, ok = ImageContentType("photo.webp")
	assert.False(t, ok)
}

func TestReadUploadedFile(t *testing.T) {
	content := []byte("\x89PNG fake bytes")
	fileHeader := createTestFileHeader(t, "plastic.png", int64(len(content)), content)

	got, err := ReadUploadedFile(fileHeader)
	require.NoError(t, err)
	assert.Equal(t, content, got)

	_, err = ReadUploadedFile(createTestFileHeader(t, "plastic.gif", 3, []byte("gif")))
	assert.Error(t, err)
}
