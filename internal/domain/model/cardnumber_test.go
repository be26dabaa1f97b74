package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeNumber(t *testing.T) {
	assert.Equal(t, "4111111111111111", NormalizeNumber(" 4111 1111-1111 1111 "))
	assert.Equal(t, "", NormalizeNumber("  "))
}

func TestIsDigits(t *testing.T) {
	assert.True(t, IsDigits("0123456789"))
	assert.False(t, IsDigits(""))
	assert.False(t, IsDigits("12a4"))
	assert.False(t, IsDigits("１２"))
}

func TestMaskNumber(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{in: "4111111111111111", want: "411111******1111"},
		{in: "378282246310005", want: "378282*****0005"},
		{in: "1234567890", want: "**********"},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MaskNumber(tt.in), tt.in)
	}
}
