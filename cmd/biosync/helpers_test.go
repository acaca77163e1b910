// ABOUTME: Tests for CLI parsing and formatting helpers.
// ABOUTME: Covers parseTime, optional flag parsers, truncate, and padRight.
package main

import (
	"strings"
	"testing"
	"time"
)

func TestParseTime(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"2025-01-31 08:30", false},
		{"2025-01-31T08:30", false},
		{"2025-01-31", false},
		{"2025-01-31T08:30:00Z", false},
		{"2025-01-31T08:30:00+05:00", false},
		{"31-01-2025", true},
		{"not a date", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := parseTime(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parseTime(%q) expected error, got nil", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseTime(%q) unexpected error: %v", tt.input, err)
			}
			if result.IsZero() {
				t.Errorf("parseTime(%q) returned zero time", tt.input)
			}
		})
	}
}

func TestParseTimeUsesLocalZone(t *testing.T) {
	result, err := parseTime("2025-06-15 07:45")
	if err != nil {
		t.Fatalf("parseTime failed: %v", err)
	}
	if result.Location() != time.Local {
		t.Errorf("location = %v, want Local", result.Location())
	}
	if result.Day() != 15 || result.Hour() != 7 || result.Minute() != 45 {
		t.Errorf("parseTime returned wrong value: %v", result)
	}
}

func TestOptionalParsers(t *testing.T) {
	if v, err := optionalDecimal("weight", ""); v != nil || err != nil {
		t.Errorf("empty decimal = %v, %v; want nil, nil", v, err)
	}
	v, err := optionalDecimal("weight", "81.45")
	if err != nil || v.String() != "81.45" {
		t.Errorf("optionalDecimal = %v, %v", v, err)
	}
	if _, err := optionalDecimal("weight", "heavy"); err == nil || !strings.Contains(err.Error(), "--weight") {
		t.Errorf("expected error naming --weight, got %v", err)
	}

	d, err := optionalDate("due", "2025-12-31")
	if err != nil || d.String() != "2025-12-31" {
		t.Errorf("optionalDate = %v, %v", d, err)
	}
	if _, err := optionalDate("due", "12/31/2025"); err == nil {
		t.Error("expected error for bad date")
	}

	if optionalInt(false, 5) != nil {
		t.Error("unset int flag should be nil")
	}
	if n := optionalInt(true, 0); n == nil || *n != 0 {
		t.Error("explicit zero should be kept")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input  string
		maxLen int
		want   string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello world this is a long string", 10, "hello w..."},
		{"abcdefghij", 6, "abc..."},
		{"", 10, ""},
		{"hello", 3, "..."},
	}

	for _, tt := range tests {
		if got := truncate(tt.input, tt.maxLen); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
		}
	}
}

func TestPadRight(t *testing.T) {
	tests := []struct {
		input  string
		length int
		want   string
	}{
		{"hi", 5, "hi   "},
		{"hello", 5, "hello"},
		{"hello world", 5, "hello world"},
		{"", 3, "   "},
		{"hello", 0, "hello"},
	}

	for _, tt := range tests {
		if got := padRight(tt.input, tt.length); got != tt.want {
			t.Errorf("padRight(%q, %d) = %q, want %q", tt.input, tt.length, got, tt.want)
		}
	}
}
