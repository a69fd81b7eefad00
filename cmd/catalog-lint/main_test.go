package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCatalog(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestRun_Embedded(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := run(nil, &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "embedded: version")
	assert.Contains(t, stdout.String(), "Within Kingstown (Per Passenger)")
	assert.Contains(t, stdout.String(), "cruise_ship")
}

func TestRun_ValidFile(t *testing.T) {
	path := writeCatalog(t, `version: "test"
categories:
  - category: "Bus Fares: Test"
    routes:
      - { name: "A to B", fare_ec: 2.00 }
`)
	var stdout, stderr bytes.Buffer

	code := run([]string{"-file", path}, &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), `version "test", 1 categories`)
	assert.Contains(t, stdout.String(), "Bus Fares: Test")
}

func TestRun_Quiet(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := run([]string{"-q"}, &stdout, &stderr)

	assert.Equal(t, 0, code)
	assert.Empty(t, stdout.String())
}

func TestRun_InvalidFile(t *testing.T) {
	path := writeCatalog(t, `version: "bad"
categories:
  - category: "Both"
    routes:
      - { name: "A to B", fare_ec: 2.00 }
    fares:
      - { place: "X", regular_ec: 1, regular_us: 1, after_hours_ec: 1, after_hours_us: 1 }
`)
	var stdout, stderr bytes.Buffer

	code := run([]string{"-file", path}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.True(t, strings.HasPrefix(stderr.String(), path+":"))
	assert.Empty(t, stdout.String())
}

func TestRun_MissingFile(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := run([]string{"-file", filepath.Join(t.TempDir(), "missing.yaml")}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.NotEmpty(t, stderr.String())
}

func TestRun_BadFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer

	assert.Equal(t, 2, run([]string{"-unknown"}, &stdout, &stderr))
}
