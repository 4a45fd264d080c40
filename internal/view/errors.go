package view

import "errors"

var (
	ErrNotInHand     = errors.New("card not in hand")
	ErrSelectionFull = errors.New("selection is full")
)
