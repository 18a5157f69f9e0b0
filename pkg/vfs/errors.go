package vfs

import "errors"

// Expected failures of file system operations. They are returned wrapped in
// a *PathError; use errors.Is to test for them. The messages are the ones
// the terminal prints.
var (
	ErrNotFound    = errors.New("No such file or directory")
	ErrExists      = errors.New("File exists")
	ErrNotEmpty    = errors.New("Directory not empty")
	ErrNotDir      = errors.New("not a directory")
	ErrIsDir       = errors.New("Is a directory")
	ErrSameFile    = errors.New("are the same file")
	ErrInvalid     = errors.New("Invalid argument")
	ErrInvalidName = errors.New("Invalid file name")
	ErrNameTooLong = errors.New("File name too long")
)

// PathError records an error and the operation and path that caused it.
type PathError struct {
	Op   string
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *PathError) Unwrap() error {
	return e.Err
}

func pathErr(op string, p Path, err error) error {
	return &PathError{Op: op, Path: p.String(), Err: err}
}
