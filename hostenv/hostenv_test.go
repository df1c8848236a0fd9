package hostenv

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeOS struct {
	wdErr   error
	statErr error
}

func (f fakeOS) Stat(name string) (os.FileInfo, error) {
	if f.statErr != nil {
		return nil, f.statErr
	}
	return fakeFileInfo{name: name}, nil
}
func (f fakeOS) Open(name string) (*os.File, error) { return nil, errors.New("not supported") }
func (f fakeOS) Getwd() (string, error) {
	if f.wdErr != nil {
		return "", f.wdErr
	}
	return "/work", nil
}
func (f fakeOS) Abs(path string) (string, error) { return path, nil }

type fakeFileInfo struct{ name string }

func (i fakeFileInfo) Name() string       { return i.name }
func (i fakeFileInfo) Size() int64        { return 0 }
func (i fakeFileInfo) Mode() os.FileMode  { return os.ModeDir }
func (i fakeFileInfo) ModTime() time.Time { return time.Time{} }
func (i fakeFileInfo) IsDir() bool        { return true }
func (i fakeFileInfo) Sys() interface{}   { return nil }

func Test_probe(t *testing.T) {
	tests := []struct {
		name string
		goos string
		os   fakeOS
		want Host
	}{
		{name: "browser", goos: "js", want: Browser},
		{name: "linux with working directory", goos: "linux", want: Filesystem},
		{name: "no working directory", goos: "wasip1", os: fakeOS{wdErr: errors.New("not implemented")}, want: None},
		{name: "working directory not accessible", goos: "linux", os: fakeOS{statErr: os.ErrPermission}, want: None},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, probe(tt.goos, tt.os))
		})
	}
}

func TestHost_sidesAreExclusive(t *testing.T) {
	for _, h := range []Host{Auto, None, Filesystem, Browser} {
		assert.False(t, h.IsServerSide() && h.IsClientSide(), h.String())
	}
	assert.True(t, Filesystem.IsServerSide())
	assert.True(t, Browser.IsClientSide())
	assert.False(t, None.IsServerSide())
	assert.False(t, None.IsClientSide())
}

func TestDetect_isStable(t *testing.T) {
	first := Detect()
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, Detect())
	}
	assert.Equal(t, Filesystem, first)
}

func TestHost_Resolve(t *testing.T) {
	assert.Equal(t, Detect(), Auto.Resolve())
	assert.Equal(t, Browser, Browser.Resolve())
	assert.Equal(t, None, None.Resolve())
}
