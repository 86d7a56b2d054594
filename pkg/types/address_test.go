package types

import (
	"encoding/json"
	"testing"
)

func TestParseAddress_RoundTrip(t *testing.T) {
	a := Address{0xAB, 0xCD, 0x01}
	parsed, err := ParseAddress(a.String())
	if err != nil {
		t.Fatalf("ParseAddress: %v", err)
	}
	if parsed != a {
		t.Errorf("round trip mismatch: %s != %s", parsed, a)
	}
}

func TestParseAddress_NoPrefix(t *testing.T) {
	a := Address{0x01, 0x02}
	parsed, err := ParseAddress(a.String()[2:]) // strip "0x"
	if err != nil {
		t.Fatalf("ParseAddress: %v", err)
	}
	if parsed != a {
		t.Errorf("mismatch: %s != %s", parsed, a)
	}
}

func TestParseAddress_Invalid(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"not hex", "0xzz"},
		{"too short", "0xabcd"},
		{"too long", "0x0102030405060708090a0b0c0d0e0f101112131415"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseAddress(tc.in); err == nil {
				t.Errorf("expected error for %q", tc.in)
			}
		})
	}
}

func TestAddress_JSON(t *testing.T) {
	a := Address{0xDE, 0xAD, 0xBE, 0xEF}
	data, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var back Address
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back != a {
		t.Errorf("JSON round trip mismatch: %s != %s", back, a)
	}
}

func TestAddress_IsZero(t *testing.T) {
	if !(Address{}).IsZero() {
		t.Error("zero address should be zero")
	}
	if (Address{0x01}).IsZero() {
		t.Error("non-zero address reported zero")
	}
}
