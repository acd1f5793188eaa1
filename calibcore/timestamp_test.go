package calibcore

import (
	"errors"
	"testing"
	"time"
)

func TestParseTimestampDefaults(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"2019", "2019-12-31T23:59:59Z"},
		{"2020-02", "2020-02-29T23:59:59Z"}, // leap year
		{"2021-02", "2021-02-28T23:59:59Z"}, // non-leap year
		{"2022-07-04", "2022-07-04T23:59:59Z"},
		{"2022-07-04 08", "2022-07-04T08:59:59Z"},
		{"2022-07-04 08:15", "2022-07-04T08:15:59Z"},
		{"2022-07-04 08:15:30", "2022-07-04T08:15:30Z"},
	}
	for _, tc := range cases {
		got, err := ParseTimestamp(tc.input)
		if err != nil {
			t.Fatalf("ParseTimestamp(%q) error: %v", tc.input, err)
		}
		want, err := time.Parse(time.RFC3339, tc.want)
		if err != nil {
			t.Fatalf("bad test fixture %q: %v", tc.want, err)
		}
		if !got.Equal(want) {
			t.Errorf("ParseTimestamp(%q) = %v, want %v", tc.input, got, want)
		}
	}
}

func TestParseTimestampNoDigits(t *testing.T) {
	_, err := ParseTimestamp("abc")
	if err == nil {
		t.Fatal("expected error for input with no digits")
	}
	var noDigits *NoDigitsError
	if !errors.As(err, &noDigits) {
		t.Errorf("expected *NoDigitsError, got %T: %v", err, err)
	}
}

func TestParseTimestampInvalidDate(t *testing.T) {
	_, err := ParseTimestamp("2021-02-30")
	if err == nil {
		t.Fatal("expected error for invalid date")
	}
	var invalid *InvalidTimestampError
	if !errors.As(err, &invalid) {
		t.Errorf("expected *InvalidTimestampError, got %T: %v", err, err)
	}
}
