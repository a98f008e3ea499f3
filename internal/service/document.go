package service

import (
	"encoding/base64"
	"errors"
	"strings"
)

const pngDataPrefix = "data:image/png;base64,"

// ValidateSignature checks a captured signature image and its page-relative
// position. The client sends the signature as a base64 PNG data URL and the
// position normalized to the 0..1 range on both axes.
func ValidateSignature(signature string, x, y float64) error {
	if !strings.HasPrefix(signature, pngDataPrefix) {
		return errors.New("signature must be a base64 PNG data URL")
	}
	encoded := strings.TrimPrefix(signature, pngDataPrefix)
	if encoded == "" {
		return errors.New("signature image is empty")
	}
	if _, err := base64.StdEncoding.DecodeString(encoded); err != nil {
		return errors.New("signature image is not valid base64")
	}
	if x < 0 || x > 1 || y < 0 || y > 1 {
		return errors.New("signature position must be normalized to the 0..1 range")
	}
	return nil
}
