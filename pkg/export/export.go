// Package export writes meshes to disk formats. STL encoding is delegated
// to github.com/hschendel/stl; each index triple becomes one facet carrying
// the mesh's flat normal.
package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hschendel/stl"

	"github.com/chazu/biomimic/pkg/kernel"
)

// Format names an output encoding.
type Format string

const (
	FormatSTL      Format = "stl"       // binary STL
	FormatSTLASCII Format = "stl-ascii" // ASCII STL
)

// Formats lists the supported formats.
var Formats = []Format{FormatSTL, FormatSTLASCII}

var (
	ErrEmptyMesh     = errors.New("mesh has no triangles")
	ErrUnknownFormat = errors.New("unknown export format")
)

// Error records a failed export and the file it was writing, in the manner
// of os.PathError. Path is empty for writes to a plain io.Writer.
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return "export " + e.Op + ": " + e.Err.Error()
	}
	return "export " + e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// ParseFormat accepts a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatSTL, FormatSTLASCII:
		return f, nil
	case "ascii", "stla":
		return FormatSTLASCII, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownFormat, s)
	}
}

// Solid converts m to an STL solid. Degenerate triangles keep their zero
// normal.
func Solid(m *kernel.Mesh, name string) *stl.Solid {
	s := &stl.Solid{
		Name:      name,
		Triangles: make([]stl.Triangle, m.TriangleCount()),
	}
	for i := range s.Triangles {
		a, b, c, n := m.Triangle(i)
		s.Triangles[i] = stl.Triangle{
			Normal:   vec(n),
			Vertices: [3]stl.Vec3{vec(a), vec(b), vec(c)},
		}
	}
	return s
}

func vec(v kernel.Vec3) stl.Vec3 {
	return stl.Vec3{float32(v.X), float32(v.Y), float32(v.Z)}
}

// Write encodes m to w.
func Write(w io.Writer, m *kernel.Mesh, f Format) error {
	return write(w, m, f, "biomimic")
}

func write(w io.Writer, m *kernel.Mesh, f Format, name string) error {
	if m == nil || m.TriangleCount() == 0 {
		return &Error{Op: "encode", Err: ErrEmptyMesh}
	}
	s := Solid(m, name)
	switch f {
	case FormatSTL:
	case FormatSTLASCII:
		s.IsAscii = true
	default:
		return &Error{Op: "encode", Err: fmt.Errorf("%w %q", ErrUnknownFormat, f)}
	}
	if err := s.WriteAll(w); err != nil {
		return &Error{Op: "write", Err: err}
	}
	return nil
}

// WriteFile encodes m to path. The file is written to a temporary sibling
// and renamed into place, so a failed export never leaves a truncated file.
func WriteFile(path string, m *kernel.Mesh, f Format) error {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return &Error{Op: "create", Path: path, Err: err}
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp, m, f, name); err != nil {
		tmp.Close()
		var e *Error
		if errors.As(err, &e) {
			e.Path = path
			return e
		}
		return &Error{Op: "write", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &Error{Op: "close", Path: path, Err: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return &Error{Op: "rename", Path: path, Err: err}
	}
	return nil
}
