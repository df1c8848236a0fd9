// Package source describes what gets uploaded. A Source is either a local path
// (server-side hosts only) or an in-memory file handle (any host), and resolves
// lazily into name, size, content type and a rewindable byte stream.
package source

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/bitrise-io/go-cdnclient/hostenv"
)

// Kind tags the Source variant.
type Kind int

const (
	// KindPath is a filesystem path.
	KindPath Kind = iota + 1
	// KindMemory is an in-memory file handle.
	KindMemory
)

func (k Kind) String() string {
	switch k {
	case KindPath:
		return "path"
	case KindMemory:
		return "memory"
	default:
		return "unknown"
	}
}

var (
	// ErrHostMismatch is returned when the source kind cannot be served by the host.
	ErrHostMismatch = errors.New("source is not supported on this host")
	// ErrNoCapability is returned on hosts with neither filesystem nor file handles.
	ErrNoCapability = errors.New("host has no filesystem or file handle support")
)

// Source is a tagged upload input. The zero value is invalid.
type Source struct {
	kind        Kind
	path        string
	name        string
	data        io.ReaderAt
	size        int64
	contentType string
}

// Path is a file on the local filesystem.
func Path(path string) Source {
	return Source{kind: KindPath, path: path}
}

// Memory is an in-memory file handle backed by a byte slice. An empty
// contentType is resolved from the name.
func Memory(name string, data []byte, contentType string) Source {
	return Source{
		kind:        KindMemory,
		name:        name,
		data:        bytesReaderAt(data),
		size:        int64(len(data)),
		contentType: contentType,
	}
}

// Reader is an in-memory file handle backed by any random-access reader of
// the given size.
func Reader(name string, r io.ReaderAt, size int64, contentType string) Source {
	return Source{
		kind:        KindMemory,
		name:        name,
		data:        r,
		size:        size,
		contentType: contentType,
	}
}

// Kind ...
func (s Source) Kind() Kind {
	return s.kind
}

// Name is the file name the upload will be registered under.
func (s Source) Name() string {
	if s.kind == KindPath {
		if s.path == "" {
			return ""
		}
		return filepath.Base(s.path)
	}
	return s.name
}

func (s Source) String() string {
	if s.kind == KindPath {
		return s.path
	}
	return s.name
}

// Resolved is a Source ready to be streamed. Close releases the underlying file.
type Resolved struct {
	Name        string
	Size        int64
	ContentType string
	Body        io.ReadSeeker
	closer      io.Closer
}

// Close ...
func (r *Resolved) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// Adapter turns a Source into a Resolved stream.
type Adapter interface {
	Resolve(src Source) (*Resolved, error)
}

// AdapterFor selects the adapter for the source kind, rejecting combinations
// the host cannot serve.
func AdapterFor(host hostenv.Host, src Source) (Adapter, error) {
	switch src.kind {
	case KindPath:
		if host.IsServerSide() {
			return NewFileAdapter(), nil
		}
		if host.IsClientSide() {
			return nil, fmt.Errorf("path %q on %s host: %w", src.path, host, ErrHostMismatch)
		}
		return nil, fmt.Errorf("path %q: %w", src.path, ErrNoCapability)
	case KindMemory:
		return MemoryAdapter{}, nil
	default:
		return nil, fmt.Errorf("invalid source")
	}
}
