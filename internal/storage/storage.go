package storage

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrFileTooLarge = errors.New("file size exceeds limit")
)
