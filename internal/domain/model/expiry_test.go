package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExpiry(t *testing.T) {
	tests := []struct {
		in      string
		want    Expiry
		wantErr bool
	}{
		{in: "12/29", want: Expiry{Month: 12, Year: 2029}},
		{in: "0130", want: Expiry{Month: 1, Year: 2030}},
		{in: " 07/27 ", want: Expiry{Month: 7, Year: 2027}},
		{in: "13/29", wantErr: true},
		{in: "00/29", wantErr: true},
		{in: "1/29", wantErr: true},
		{in: "ab/cd", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseExpiry(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpiry_ExpiredAt(t *testing.T) {
	e := Expiry{Month: 2, Year: 2028}

	assert.Equal(t, "02/28", e.String())
	assert.False(t, e.ExpiredAt(time.Date(2028, 2, 29, 23, 59, 59, 0, time.UTC)))
	assert.True(t, e.ExpiredAt(time.Date(2028, 3, 1, 0, 0, 0, 0, time.UTC)))
}
