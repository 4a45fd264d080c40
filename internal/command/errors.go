package command

import "errors"

var (
	ErrNoSelection  = errors.New("no cards selected")
	ErrEmptyMessage = errors.New("message is empty")
)
