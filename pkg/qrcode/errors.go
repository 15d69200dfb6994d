package qrcode

import "errors"

var (
	// ErrEmptyContent is returned when content string is empty or only whitespace
	ErrEmptyContent = errors.New("qrcode: content cannot be empty")

	// ErrGenerationFailed is returned when the QR code cannot be rendered.
	ErrGenerationFailed = errors.New("qrcode: failed to generate QR code")
)
