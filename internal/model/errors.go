package model

import "errors"

var (
	// ErrNotFound means there is no usable record for the player; callers start a new game.
	ErrNotFound = errors.New("player state not found")
	// ErrCorruptRecord is reported together with ErrNotFound for unreadable or incomplete records.
	ErrCorruptRecord = errors.New("player state record is corrupt")

	ErrIndexOutOfRange = errors.New("selection index out of range")
	ErrInvalidInput    = errors.New("invalid input data")

	// ErrNoResponse means the narrator gave no usable reply after all attempts.
	ErrNoResponse = errors.New("no response from narrator")
)
