package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToInt(t *testing.T) {
	assert.Equal(t, 3, ToInt("3", 0))
	assert.Equal(t, 3, ToInt(" 3 ", 0))
	assert.Equal(t, -2, ToInt("-2", 0))
	assert.Equal(t, 0, ToInt("abc", 0))
	assert.Equal(t, 7, ToInt("", 7))
	assert.Equal(t, 7, ToInt("2.5", 7))
}

func TestNonNegative(t *testing.T) {
	assert.Equal(t, 0, NonNegative(-5))
	assert.Equal(t, 0, NonNegative(0))
	assert.Equal(t, 4, NonNegative(4))
}

func TestCleanPlate(t *testing.T) {
	got := CleanPlate("  abc 123 ")
	require.NotNil(t, got)
	assert.Equal(t, "ABC123", *got)

	got = CleanPlate("xyz\t45")
	require.NotNil(t, got)
	assert.Equal(t, "XYZ45", *got)

	assert.Nil(t, CleanPlate(""))
	assert.Nil(t, CleanPlate("   "))
}

func TestIsEmail(t *testing.T) {
	assert.True(t, IsEmail("ana@x.com"))
	assert.True(t, IsEmail("  ana@x.com  "))
	assert.False(t, IsEmail("sin-arroba"))
	assert.False(t, IsEmail("sin@punto"))
	assert.False(t, IsEmail("dos espacios@x.com"))
	assert.False(t, IsEmail(""))
}

func TestNowStamp(t *testing.T) {
	stamp := NowStamp()
	assert.Regexp(t, regexp.MustCompile(`^\d{8}-\d{6}$`), stamp)
}
