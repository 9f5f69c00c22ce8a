package api

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
)

// Multipart is a pre-built multipart/form-data payload.
type Multipart struct {
	Body        io.Reader
	ContentType string
}

// NewMultipart builds a payload with the given form fields and one file part.
// An empty fileName skips the file part.
func NewMultipart(fields map[string]string, fileField, fileName string, file io.Reader) (*Multipart, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("write field %s: %w", k, err)
		}
	}

	if fileName != "" {
		part, err := w.CreateFormFile(fileField, fileName)
		if err != nil {
			return nil, fmt.Errorf("create form file: %w", err)
		}
		if _, err := io.Copy(part, file); err != nil {
			return nil, fmt.Errorf("copy %s: %w", fileName, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}
	return &Multipart{Body: &buf, ContentType: w.FormDataContentType()}, nil
}
