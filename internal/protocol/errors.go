package protocol

import "errors"

var (
	ErrFrameTooShort  = errors.New("protocol: frame shorter than header+trailer")
	ErrLengthMismatch = errors.New("protocol: declared length inconsistent with frame size")
	ErrIntegrity      = errors.New("protocol: crc mismatch")
)
