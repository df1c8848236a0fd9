package source

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/bitrise-io/go-cdnclient/contenttype"
	"github.com/bitrise-io/go-cdnclient/internal"
)

// FileAdapter resolves local paths.
type FileAdapter struct {
	osProxy internal.OsProxy
}

// NewFileAdapter ...
func NewFileAdapter() FileAdapter {
	return FileAdapter{osProxy: internal.RealOS{}}
}

// Resolve opens the file; the caller must Close the result.
func (a FileAdapter) Resolve(src Source) (*Resolved, error) {
	if src.kind != KindPath {
		return nil, fmt.Errorf("file adapter got a %s source", src.kind)
	}
	if src.path == "" {
		return nil, fmt.Errorf("file path is empty")
	}

	info, err := a.osProxy.Stat(src.path)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", src.path)
	}

	file, err := a.osProxy.Open(src.path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	name := filepath.Base(src.path)
	contentType, err := detect(name, file)
	if err != nil {
		_ = file.Close()
		return nil, err
	}

	return &Resolved{
		Name:        name,
		Size:        info.Size(),
		ContentType: contentType,
		Body:        file,
		closer:      file,
	}, nil
}

func detect(name string, r io.ReadSeeker) (string, error) {
	if t := contenttype.Resolve(name); t != contenttype.Fallback {
		return t, nil
	}

	head := make([]byte, contenttype.SniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", fmt.Errorf("read file header: %w", err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind file: %w", err)
	}

	return contenttype.Detect(name, head[:n]), nil
}
