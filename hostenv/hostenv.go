// Package hostenv tells which kind of host the client runs on: a server-side
// process with a filesystem, a browser (js/wasm) with in-memory file handles
// only, or a degraded host with neither.
package hostenv

import (
	"runtime"
	"sync"

	"github.com/bitrise-io/go-cdnclient/internal"
)

// Host is the capability set of the running process.
type Host int

const (
	// Auto is the zero Host; Resolve replaces it with the detected one.
	Auto Host = iota
	// None means neither filesystem nor browser file handles are usable.
	None
	// Filesystem is a server-side host that can open local paths.
	Filesystem
	// Browser is a client-side host that only has in-memory file handles.
	Browser
)

var (
	detectOnce sync.Once
	detected   Host
)

// Detect probes the running process once and returns the same Host for the rest
// of the process lifetime.
func Detect() Host {
	detectOnce.Do(func() {
		detected = probe(runtime.GOOS, internal.RealOS{})
	})
	return detected
}

func probe(goos string, osProxy internal.OsProxy) Host {
	if goos == "js" {
		return Browser
	}

	wd, err := osProxy.Getwd()
	if err != nil {
		return None
	}
	if _, err := osProxy.Stat(wd); err != nil {
		return None
	}
	return Filesystem
}

// Resolve returns h, or the detected Host when h is Auto.
func (h Host) Resolve() Host {
	if h == Auto {
		return Detect()
	}
	return h
}

// IsServerSide ...
func (h Host) IsServerSide() bool {
	return h == Filesystem
}

// IsClientSide ...
func (h Host) IsClientSide() bool {
	return h == Browser
}

func (h Host) String() string {
	switch h {
	case Filesystem:
		return "filesystem"
	case Browser:
		return "browser"
	case None:
		return "none"
	default:
		return "auto"
	}
}
