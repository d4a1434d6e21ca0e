package sentiment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRatesFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rates.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadRates(t *testing.T) {
	path := writeRatesFile(t, `
negative:
  negative: 0.8
  neutral: 0.15
  positive: 0.05
neutral:
  negative: 0.1
  neutral: 0.8
  positive: 0.1
positive:
  negative: 0.05
  neutral: 0.15
  positive: 0.8
`)

	r, err := LoadRates(path)
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, 0.8, r.Negative.Negative)
	assert.Equal(t, 0.15, r.Negative.Neutral)
	assert.Equal(t, 0.1, r.Neutral.Positive)
	assert.Equal(t, 0.8, r.Positive.Positive)
}

func TestLoadRates_EmptyPathDisablesCorrection(t *testing.T) {
	r, err := LoadRates("")
	require.NoError(t, err)
	assert.Nil(t, r)
}

func TestLoadRates_MissingFile(t *testing.T) {
	_, err := LoadRates(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadRates_RowDoesNotSumToOne(t *testing.T) {
	path := writeRatesFile(t, `
negative:
  negative: 0.5
  neutral: 0.1
  positive: 0.1
neutral:
  neutral: 1
positive:
  positive: 1
`)

	_, err := LoadRates(path)
	assert.ErrorContains(t, err, "sums to")
}

func TestLoadRates_RateOutOfRange(t *testing.T) {
	path := writeRatesFile(t, `
negative:
  negative: 1.5
  neutral: -0.5
neutral:
  neutral: 1
positive:
  positive: 1
`)

	_, err := LoadRates(path)
	assert.ErrorContains(t, err, "outside [0, 1]")
}
