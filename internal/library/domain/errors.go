package domain

import "errors"

// Scan errors
var (
	// ErrPathNotFound is returned when a folder path does not exist
	ErrPathNotFound = errors.New("path not found")

	// ErrNotADirectory is returned when a folder path is not a directory
	ErrNotADirectory = errors.New("not a directory")
)

// Placement failure classes. The organizer preserves the class of the
// final failed attempt so callers can distinguish what went wrong.
var (
	// ErrSymlink is returned when creating a symbolic link fails
	ErrSymlink = errors.New("symlink failed")

	// ErrHardLink is returned when creating a hard link fails
	ErrHardLink = errors.New("hard link failed")

	// ErrCopy is returned when copying a file fails
	ErrCopy = errors.New("copy failed")

	// ErrMove is returned when moving a file fails
	ErrMove = errors.New("move failed")

	// ErrDirectoryCreation is returned when creating the target directory fails
	ErrDirectoryCreation = errors.New("directory creation failed")

	// ErrPermissionDenied is returned when the filesystem denies the operation
	ErrPermissionDenied = errors.New("permission denied")

	// ErrPathExists is returned when the target path already exists
	ErrPathExists = errors.New("path already exists")
)
