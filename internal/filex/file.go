// Package filex contains filesystem helpers for the terminal client.
package filex

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
)

// EnsureSubDir creates dirName under the current working directory if needed
// and returns its absolute path.
func EnsureSubDir(dirName string) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getwd: %w", err)
	}

	dir := filepath.Join(cwd, dirName)

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// Media is a local file opened for upload. Close it when done.
type Media struct {
	Name        string
	ContentType string
	Size        int64
	File        *os.File
}

func (m *Media) Close() error {
	return m.File.Close()
}

var ErrNotRegular = errors.New("not a regular file")

// OpenMedia opens path for reading and detects its content type, first by
// extension and then by sniffing the leading bytes. The returned file is
// positioned at offset 0.
func OpenMedia(path string) (*Media, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !fi.Mode().IsRegular() {
		_ = f.Close()
		return nil, fmt.Errorf("%s: %w", path, ErrNotRegular)
	}

	ct := mime.TypeByExtension(filepath.Ext(path))
	if ct == "" {
		head := make([]byte, 512)
		n, err := io.ReadFull(f, head)
		if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
			_ = f.Close()
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		ct = http.DetectContentType(head[:n])
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("seek %s: %w", path, err)
		}
	}

	return &Media{
		Name:        filepath.Base(path),
		ContentType: ct,
		Size:        fi.Size(),
		File:        f,
	}, nil
}
