package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyNetwork(t *testing.T) {
	tests := []struct {
		name   string
		number string
		want   Network
	}{
		{name: "visa 16", number: "4111111111111111", want: NetworkVisa},
		{name: "visa 13", number: "4222222222222", want: NetworkVisa},
		{name: "visa 19", number: "4000000000000000006", want: NetworkVisa},
		{name: "visa prefix wrong length", number: "411111111111111", want: NetworkUnknown},
		{name: "mastercard 51", number: "5105105105105100", want: NetworkMastercard},
		{name: "mastercard 55", number: "5555555555554444", want: NetworkMastercard},
		{name: "mastercard 2221", number: "2221000000000009", want: NetworkMastercard},
		{name: "mastercard 2720", number: "2720990000000001", want: NetworkMastercard},
		{name: "2220 is not mastercard", number: "2220990000000001", want: NetworkUnknown},
		{name: "2721 is not mastercard", number: "2721000000000000", want: NetworkUnknown},
		{name: "56 is not mastercard", number: "5600000000000000", want: NetworkUnknown},
		{name: "amex 34", number: "340000000000009", want: NetworkAmex},
		{name: "amex 37", number: "378282246310005", want: NetworkAmex},
		{name: "amex prefix wrong length", number: "3782822463100050", want: NetworkUnknown},
		{name: "discover", number: "6011111111111117", want: NetworkUnknown},
		{name: "non numeric", number: "41111111111111ab", want: NetworkUnknown},
		{name: "empty", number: "", want: NetworkUnknown},
		{name: "single digit", number: "4", want: NetworkUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyNetwork(tt.number))
		})
	}
}
