package telephony

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonical(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"9876543210", "+919876543210"},
		{"919876543210", "+919876543210"},
		{"091 9876543210", "+919876543210"},
		{"+91 98765 43210", "+919876543210"},
		{"(987) 654-3210", "+919876543210"},
		{"", ""},
		{"---", ""},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Canonical(tc.in), "input %q", tc.in)
	}
}

func TestCanonicalIdempotent(t *testing.T) {
	canon := Canonical("9876543210")
	assert.Equal(t, canon, Canonical(canon))
}
