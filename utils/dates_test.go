package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDate(t *testing.T) {
	assert.Nil(t, FormatDate(nil))

	d := time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC)
	got := FormatDate(&d)
	require.NotNil(t, got)
	assert.Equal(t, "2026-03-15", *got)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-03-15")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-15", FormatDateValue(d))

	_, err = ParseDate("15-03-2026")
	assert.Error(t, err)

	_, err = ParseDate("2026-03-15T10:00:00Z")
	assert.Error(t, err)
}
