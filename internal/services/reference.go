package services

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"image/png"
	"math/big"

	"github.com/skip2/go-qrcode"
)

// ReferenceGenerator produces investment reference numbers.
type ReferenceGenerator interface {
	Next() string
}

// RandomReference renders prefix followed by a zero-padded random six-digit number.
type RandomReference struct {
	Prefix string
}

func NewRandomReference(prefix string) *RandomReference {
	return &RandomReference{Prefix: prefix}
}

func (g *RandomReference) Next() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return fmt.Sprintf("%s%06d", g.Prefix, 0)
	}
	return fmt.Sprintf("%s%06d", g.Prefix, n.Int64())
}

// ReceiptQRCode encodes the reference as a base64 PNG for the success screen.
func ReceiptQRCode(reference string, size int) (string, error) {
	qr, err := qrcode.New(reference, qrcode.Medium)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qr.Image(size)); err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
