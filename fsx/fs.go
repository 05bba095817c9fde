// Package fsx adds file creation to io/fs.
package fsx

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing/fstest"
)

var _ CreateFS = DirFS("")
var _ CreateFS = MapFS{}
var _ WriteableFile = mapFile{}

type WriteableFile interface {
	fs.File
	io.Writer
}

type CreateFS interface {
	fs.FS
	Create(name string) (WriteableFile, error)
}

// Create creates or truncates the file name in fsys.
func Create(fsys fs.FS, name string) (WriteableFile, error) {
	if cfs, ok := fsys.(CreateFS); ok {
		return cfs.Create(name)
	}
	return nil, &fs.PathError{Op: "create", Path: name, Err: errors.ErrUnsupported}
}

// DirFS is the tree of files rooted at a directory, like os.DirFS, but
// writable.
type DirFS string

// Create implements CreateFS
func (dir DirFS) Create(name string) (WriteableFile, error) {
	fullname, err := dir.join(name)
	if err != nil {
		return nil, &fs.PathError{Op: "create", Path: name, Err: err}
	}
	f, err := os.Create(fullname)
	if err != nil {
		err.(*fs.PathError).Path = name
		return nil, err
	}
	return f, nil
}

// Open implements fs.FS
func (dir DirFS) Open(name string) (fs.File, error) {
	fullname, err := dir.join(name)
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	f, err := os.Open(fullname)
	if err != nil {
		err.(*fs.PathError).Path = name
		return nil, err
	}
	return f, nil
}

// join returns the path for name in dir.
func (dir DirFS) join(name string) (string, error) {
	if dir == "" {
		return "", errors.New("fsx: DirFS with empty root")
	}
	if !fs.ValidPath(name) {
		return "", fs.ErrInvalid
	}
	local, err := filepath.Localize(name)
	if err != nil {
		return "", fs.ErrInvalid
	}
	return filepath.Join(string(dir), local), nil
}

// MapFS is an in-memory CreateFS.
type MapFS struct {
	fstest.MapFS
}

func NewMapFS() MapFS {
	return MapFS{fstest.MapFS{}}
}

// Add stores body under name.
func (mfs MapFS) Add(name, body string) MapFS {
	mfs.MapFS[name] = &fstest.MapFile{Data: []byte(body), Mode: 0o644}
	return mfs
}

type mapFile struct {
	fs.File
	f *fstest.MapFile
}

func (mf mapFile) Write(p []byte) (int, error) {
	mf.f.Data = append(mf.f.Data, p...)
	return len(p), nil
}

// Create implements CreateFS. An existing file is truncated.
func (mfs MapFS) Create(name string) (WriteableFile, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "create", Path: name, Err: fs.ErrInvalid}
	}
	if f, ok := mfs.MapFS[name]; ok && f.Mode.IsDir() {
		return nil, &fs.PathError{Op: "create", Path: name, Err: fs.ErrExist}
	}
	f := &fstest.MapFile{Mode: 0o644}
	mfs.MapFS[name] = f
	of, err := mfs.Open(name)
	if err != nil {
		return nil, err
	}
	return mapFile{of, f}, nil
}
