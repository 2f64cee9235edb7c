package testutil

import (
	"bytes"
	"mime"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/require"
)

// MultipartBody builds a multipart form with one file under field
func MultipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

// FileHeader returns the parsed header of an uploaded file, as gin would hand it over
func FileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	body, contentType := MultipartBody(t, "file", filename, content)
	_, params, err := mime.ParseMediaType(contentType)
	require.NoError(t, err)

	form, err := multipart.NewReader(body, params["boundary"]).ReadForm(int64(len(content)) + 1024)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	require.NotEmpty(t, form.File["file"])
	return form.File["file"][0]
}
