package utils

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func NewTrue() *bool {
	b := true
	return &b
}

func NewFalse() *bool {
	b := false
	return &b
}

// ToInt parses s as a base-10 integer, returning fallback on failure.
func ToInt(s string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	return n
}

func NonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// CleanPlate normalizes a vehicle plate: trimmed, uppercased, inner
// whitespace removed. Empty input yields nil so the column stays NULL.
func CleanPlate(s string) *string {
	cleaned := strings.ToUpper(strings.TrimSpace(s))
	cleaned = strings.Join(strings.Fields(cleaned), "")
	if cleaned == "" {
		return nil
	}
	return &cleaned
}

func IsEmail(s string) bool {
	return emailRegex.MatchString(strings.TrimSpace(s))
}

// NowStamp returns the YYYYMMDD-HHMMSS stamp used in export and backup
// file names.
func NowStamp() string {
	return time.Now().Format("20060102-150405")
}
