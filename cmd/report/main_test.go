package main

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteOutput_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")

	err := writeOutput(path, func(w io.Writer) error {
		_, err := io.WriteString(w, "Date,Qty\n2024-01-02,3\n")
		return err
	})

	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Date,Qty\n2024-01-02,3\n", string(data))
}

func TestWriteOutput_WriteErrorIsReturned(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	renderErr := errors.New("render failed")

	err := writeOutput(path, func(io.Writer) error { return renderErr })

	assert.ErrorIs(t, err, renderErr)
}

func TestWriteOutput_CreateError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "report.csv")

	err := writeOutput(path, func(io.Writer) error { return nil })

	assert.ErrorContains(t, err, "failed to create")
}
