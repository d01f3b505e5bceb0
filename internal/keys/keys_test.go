package keys

import (
	"errors"
	"testing"
)

func TestValidateSegment(t *testing.T) {
	cases := []struct {
		in   string
		want error
	}{
		{"users", nil},
		{"user profiles", nil},
		{"", ErrEmptySegment},
		{"a\x00b", ErrSegmentNull},
		{"a:b", ErrSegmentColon},
	}
	for _, tc := range cases {
		if err := ValidateSegment(tc.in); !errors.Is(err, tc.want) {
			t.Fatalf("ValidateSegment(%q) = %v, want %v", tc.in, err, tc.want)
		}
	}
}

func TestValidatePartition(t *testing.T) {
	for _, ok := range []string{"cachepolicy", "app_1", "a-b"} {
		if err := ValidatePartition(ok); err != nil {
			t.Fatalf("ValidatePartition(%q) = %v", ok, err)
		}
	}
	for _, bad := range []string{"", "a:b", "a b"} {
		if err := ValidatePartition(bad); err == nil {
			t.Fatalf("ValidatePartition(%q) accepted", bad)
		}
	}
}

func TestStorage(t *testing.T) {
	if got := Storage("p", "s", "a:b"); got != "p:s:a:b" {
		t.Fatalf("Storage = %q", got)
	}
}
