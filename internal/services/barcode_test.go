package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomBarcode(t *testing.T) {
	for i := 0; i < 100; i++ {
		b, err := RandomBarcode()
		require.NoError(t, err)
		assert.Len(t, b, BarcodeLength)
		assert.True(t, IsBarcode(b), b)
	}
}

func TestIsBarcode(t *testing.T) {
	assert.True(t, IsBarcode("0123456789"))
	assert.False(t, IsBarcode("012345678"))
	assert.False(t, IsBarcode("01234567890"))
	assert.False(t, IsBarcode("01234a6789"))
	assert.False(t, IsBarcode(""))
}
