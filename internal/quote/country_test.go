package quote

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetCountryISO(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Argentina", "AR"},
		{"argentina", "AR"},
		{"  ARGENTINA ", "AR"},
		{"ar", "AR"},
		{"AR", "AR"},
		{"United States", "US"},
		{"usa", "US"},
		{"México", "MX"},
		{"Atlantis", ""},
		{"zz", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, GetCountryISO(tt.in))
		})
	}
}

func TestCountryISO_Idempotent(t *testing.T) {
	for name := range countryCodes {
		code, ok := CountryISO(name)
		assert.True(t, ok, name)
		again, ok := CountryISO(code)
		assert.True(t, ok, code)
		assert.Equal(t, code, again)
	}
}
