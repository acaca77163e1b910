// ABOUTME: Shared CLI helpers for parsing arguments and formatting output.
// ABOUTME: Times, dates, decimals, and padded columns.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/biosync/internal/models"
	"github.com/shopspring/decimal"
)

var (
	faint   = color.New(color.Faint)
	bold    = color.New(color.Bold)
	success = color.New(color.FgGreen)
	warning = color.New(color.FgYellow)
)

func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02 15:04",
		"2006-01-02T15:04",
		"2006-01-02",
		time.RFC3339,
	}
	for _, f := range formats {
		if t, err := time.ParseInLocation(f, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format")
}

// optionalTime parses s when non-empty.
func optionalTime(flag, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := parseTime(s)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s: %s", flag, s)
	}
	return &t, nil
}

// optionalDate parses a YYYY-MM-DD flag when non-empty.
func optionalDate(flag, s string) (*models.Date, error) {
	if s == "" {
		return nil, nil
	}
	d, err := models.ParseDate(s)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s: %w", flag, err)
	}
	return &d, nil
}

// optionalDecimal parses a decimal flag when non-empty.
func optionalDecimal(flag, s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := models.ParseFixed(s)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s: %w", flag, err)
	}
	return &d, nil
}

// optionalInt returns nil unless the flag was given.
func optionalInt(set bool, n int) *int {
	if !set {
		return nil
	}
	return &n
}

// readInput reads a file, or stdin when path is "-".
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

func short(id fmt.Stringer) string {
	return id.String()[:8]
}

func fixed(d decimal.Decimal) string {
	return d.StringFixed(models.FixedPlaces)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}
