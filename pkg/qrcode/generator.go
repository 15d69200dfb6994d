package qrcode

import (
	"encoding/base64"
	"errors"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

// DefaultSize is the image width and height in pixels.
const DefaultSize = 256

const dataURIPrefix = "data:image/png;base64,"

// RecoveryLevel is the error correction level of the rendered code.
type RecoveryLevel = skipqrcode.RecoveryLevel

const (
	RecoveryLow     = skipqrcode.Low
	RecoveryMedium  = skipqrcode.Medium
	RecoveryHigh    = skipqrcode.High
	RecoveryHighest = skipqrcode.Highest
)

type options struct {
	size  int
	level RecoveryLevel
}

// Option configures rendering.
type Option func(*options)

// WithSize sets the image size in pixels. Non-positive values keep the default.
func WithSize(px int) Option {
	return func(o *options) {
		if px > 0 {
			o.size = px
		}
	}
}

// WithRecoveryLevel sets the error correction level.
func WithRecoveryLevel(l RecoveryLevel) Option {
	return func(o *options) {
		o.level = l
	}
}

// PNG renders content as a PNG image.
func PNG(content string, opts ...Option) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}

	o := options{size: DefaultSize, level: RecoveryMedium}
	for _, opt := range opts {
		opt(&o)
	}

	png, err := skipqrcode.Encode(content, o.level, o.size)
	if err != nil {
		return nil, errors.Join(ErrGenerationFailed, err)
	}
	return png, nil
}

// DataURI renders content as a base64 PNG data URI.
func DataURI(content string, opts ...Option) (string, error) {
	png, err := PNG(content, opts...)
	if err != nil {
		return "", err
	}
	return dataURIPrefix + base64.StdEncoding.EncodeToString(png), nil
}
