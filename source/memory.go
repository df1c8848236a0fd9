package source

import (
	"bytes"
	"fmt"
	"io"

	"github.com/bitrise-io/go-cdnclient/contenttype"
)

func bytesReaderAt(data []byte) io.ReaderAt {
	return bytes.NewReader(data)
}

// MemoryAdapter resolves in-memory file handles.
type MemoryAdapter struct{}

// Resolve ...
func (MemoryAdapter) Resolve(src Source) (*Resolved, error) {
	if src.kind != KindMemory {
		return nil, fmt.Errorf("memory adapter got a %s source", src.kind)
	}
	if src.name == "" {
		return nil, fmt.Errorf("file name is empty")
	}
	if src.data == nil {
		return nil, fmt.Errorf("file %s has no data", src.name)
	}
	if src.size < 0 {
		return nil, fmt.Errorf("file %s has negative size %d", src.name, src.size)
	}

	contentType := src.contentType
	if contentType == "" {
		contentType = contenttype.Resolve(src.name)
	}

	return &Resolved{
		Name:        src.name,
		Size:        src.size,
		ContentType: contentType,
		Body:        io.NewSectionReader(src.data, 0, src.size),
	}, nil
}
