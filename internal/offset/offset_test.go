package offset

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestIsValid(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"-04:00", true},
		{"+04:00", true},
		{"+00:00", true},
		{"-14:00", true},
		{"+14:59", true},
		{"-4:00", false},
		{"-:00", false},
		{"-00", false},
		{"-0", false},
		{"-", false},
		{"", false},
		{"-04:99", false},
		{"-14:99", false},
		{"-15:00", false},
		{"04:00", false},
		{" 04:00", false},
		{"+04-00", false},
		{"+0a:00", false},
		{"+04:3", false},
		{"+04:+3", false},
		{"incorrect-timezone-offset", false},
		{"+04:000", true},
		{"+04:0059", true},
		{"+04:0060", false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(fmt.Sprintf("%q", tc.input), func(t *testing.T) {
			if got := IsValid(tc.input); got != tc.want {
				t.Fatalf("IsValid(%q) = %v, expected %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestIsValidExhaustiveTwoDigitForms(t *testing.T) {
	for _, sign := range []string{"+", "-"} {
		for h := 0; h <= 99; h++ {
			for m := 0; m <= 99; m++ {
				s := fmt.Sprintf("%s%02d:%02d", sign, h, m)
				want := h <= MaxHours && m <= MaxMinutes
				if got := IsValid(s); got != want {
					t.Fatalf("IsValid(%q) = %v, expected %v", s, got, want)
				}
			}
		}
	}
}

func TestParseErrorClasses(t *testing.T) {
	if _, err := Parse("-4:00"); !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat, got %v", err)
	}
	if _, err := Parse("-15:00"); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange for hours, got %v", err)
	}
	if _, err := Parse("+01:60"); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange for minutes, got %v", err)
	}
}

func TestParseKeepsRaw(t *testing.T) {
	o, err := Parse("-05:30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !o.Negative || o.Hours != 5 || o.Minutes != 30 {
		t.Fatalf("unexpected offset: %+v", o)
	}
	if o.String() != "-05:30" {
		t.Fatalf("expected raw string echoed, got %q", o.String())
	}
}

func TestCalculate(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
	}{
		{"+04:00", 4 * time.Hour},
		{"-04:00", -4 * time.Hour},
		{"+03:30", 3*time.Hour + 30*time.Minute},
		{"-03:30", -(3*time.Hour + 30*time.Minute)},
		{"-00:45", -45 * time.Minute},
		{"+00:00", 0},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.input, func(t *testing.T) {
			got, err := Calculate(tc.input)
			if err != nil {
				t.Fatalf("Calculate(%q) returned error: %v", tc.input, err)
			}
			if got != tc.want {
				t.Fatalf("Calculate(%q) = %s, expected %s", tc.input, got, tc.want)
			}
		})
	}
}

func TestCalculateRejectsInvalid(t *testing.T) {
	if _, err := Calculate("bogus"); err == nil {
		t.Fatalf("expected error for invalid input")
	}
}
