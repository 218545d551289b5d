package api

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
)

// multipartBody assembles a multipart form in memory. Documents in
// this workflow are small PDFs, so buffering the whole form keeps the
// call sites simple.
type multipartBody struct {
	buf    bytes.Buffer
	writer *multipart.Writer
	err    error
}

func newMultipartBody() *multipartBody {
	m := &multipartBody{}
	m.writer = multipart.NewWriter(&m.buf)
	return m
}

func (m *multipartBody) field(name, value string) *multipartBody {
	if m.err != nil {
		return m
	}
	m.err = m.writer.WriteField(name, value)
	return m
}

// file attaches the file at path under the given form field, using the
// file's base name as the part file name.
func (m *multipartBody) file(field, path string) *multipartBody {
	if m.err != nil {
		return m
	}

	f, err := os.Open(path)
	if err != nil {
		m.err = fmt.Errorf("open %s: %w", path, err)
		return m
	}
	defer func() { _ = f.Close() }()

	part, err := m.writer.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		m.err = fmt.Errorf("create form file: %w", err)
		return m
	}
	if _, err := io.Copy(part, f); err != nil {
		m.err = fmt.Errorf("copy %s: %w", path, err)
	}
	return m
}

func (m *multipartBody) files(field string, paths []string) *multipartBody {
	for _, p := range paths {
		m.file(field, p)
	}
	return m
}

// close finalizes the form and returns the body reader and content
// type.
func (m *multipartBody) close() (io.Reader, string, error) {
	if m.err != nil {
		return nil, "", m.err
	}
	if err := m.writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart body: %w", err)
	}
	return &m.buf, m.writer.FormDataContentType(), nil
}
