package cli

import (
	"testing"
	"time"
)

func TestFormatEuros(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "€0.00"},
		{12.5, "€12.50"},
		{654, "€654"},
		{8500, "€8,500"},
		{1234567.4, "€1,234,567"},
		{-42, "-€42.00"},
	}
	for _, tt := range tests {
		if got := FormatEuros(tt.in); got != tt.want {
			t.Fatalf("FormatEuros(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-4200, "-4,200"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Fatalf("FormatNumber(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	if got := FormatCompact(1234); got != "1.2K" {
		t.Fatalf("FormatCompact(1234) = %q, want 1.2K", got)
	}
	if got := FormatCompact(999); got != "999" {
		t.Fatalf("FormatCompact(999) = %q, want 999", got)
	}
	if got := FormatCompact(2_500_000); got != "2.5M" {
		t.Fatalf("FormatCompact(2500000) = %q, want 2.5M", got)
	}
}

func TestFormatDays(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0h"},
		{5 * time.Hour, "5h"},
		{48 * time.Hour, "2d"},
		{50 * time.Hour, "2d 2h"},
	}
	for _, tt := range tests {
		if got := FormatDays(tt.in); got != tt.want {
			t.Fatalf("FormatDays(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatDelta(t *testing.T) {
	if got := FormatDelta(900, 400); got != "+€500" {
		t.Fatalf("FormatDelta(900, 400) = %q, want +€500", got)
	}
	if got := FormatDelta(10, 15); got != "-€5.00" {
		t.Fatalf("FormatDelta(10, 15) = %q, want -€5.00", got)
	}
}
