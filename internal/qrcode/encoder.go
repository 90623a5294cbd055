// Package qrcode renders check-in payloads as PNG QR codes.
package qrcode

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
)

const (
	dataURLPrefix = "data:image/png;base64,"
	defaultSize   = 300
)

// Encoder turns a payload into an image the member can present at the door.
type Encoder interface {
	Encode(payload []byte) (string, error)
}

// PNGEncoder encodes payloads as square PNG QR codes in data URLs.
type PNGEncoder struct {
	Size  int
	Level qr.ErrorCorrectionLevel
}

func NewPNGEncoder() *PNGEncoder {
	return &PNGEncoder{Size: defaultSize, Level: qr.M}
}

func (e *PNGEncoder) Encode(payload []byte) (string, error) {
	if len(payload) == 0 {
		return "", fmt.Errorf("qrcode: empty payload")
	}

	code, err := qr.Encode(string(payload), e.Level, qr.Auto)
	if err != nil {
		return "", fmt.Errorf("qrcode: encode: %w", err)
	}

	size := e.Size
	if size <= 0 {
		size = defaultSize
	}
	scaled, err := barcode.Scale(code, size, size)
	if err != nil {
		return "", fmt.Errorf("qrcode: scale: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return "", fmt.Errorf("qrcode: png: %w", err)
	}

	return dataURLPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
