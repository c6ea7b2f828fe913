// Package qrcode provides QR code generation for e-tickets.
package qrcode

import (
	"encoding/base64"
	"fmt"

	"github.com/skip2/go-qrcode"
)

// Generator renders QR codes.
type Generator struct {
	size          int
	recoveryLevel qrcode.RecoveryLevel
}

// Option configures the generator.
type Option func(*Generator)

// WithSize sets the image size in pixels.
func WithSize(size int) Option {
	return func(g *Generator) {
		g.size = size
	}
}

// WithRecoveryLevel sets the error correction level.
func WithRecoveryLevel(level qrcode.RecoveryLevel) Option {
	return func(g *Generator) {
		g.recoveryLevel = level
	}
}

// NewGenerator creates a generator with sensible defaults.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		size:          256,
		recoveryLevel: qrcode.Medium,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GeneratePNG renders content as a PNG image.
func (g *Generator) GeneratePNG(content string) ([]byte, error) {
	data, err := qrcode.Encode(content, g.recoveryLevel, g.size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr code: %w", err)
	}
	return data, nil
}

// GenerateDataURL renders content as a data URL suitable for direct
// embedding in a ticket payload.
func (g *Generator) GenerateDataURL(content string) (string, error) {
	data, err := g.GeneratePNG(content)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data), nil
}
