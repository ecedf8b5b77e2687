package service

import (
	"crypto/rand"
	"math/big"
)

const BarcodeLength = 10

// BarcodeGenerator returns a BarcodeLength digit string.
type BarcodeGenerator func() (string, error)

// RandomBarcode draws every digit uniformly from 0-9.
func RandomBarcode() (string, error) {
	ten := big.NewInt(10)
	buf := make([]byte, BarcodeLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		buf[i] = byte('0' + n.Int64())
	}
	return string(buf), nil
}

func IsBarcode(s string) bool {
	if len(s) != BarcodeLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
