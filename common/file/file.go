// Package file provides helpers which create any missing parent directories
// before writing
package file

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultPermissionOctal is used for created files and directories
	DefaultPermissionOctal os.FileMode = 0o770
)

var (
	errNoPath = errors.New("no file path supplied")
	errNoData = errors.New("no records to write")
)

// Writer creates or truncates the file at path, creating parent directories
// as required. The caller closes the returned file
func Writer(path string) (*os.File, error) {
	if path == "" {
		return nil, errNoPath
	}
	if err := os.MkdirAll(filepath.Dir(path), DefaultPermissionOctal); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, DefaultPermissionOctal)
}

// Write writes data to path, creating parent directories as required
func Write(path string, data []byte) error {
	f, err := Writer(path)
	if err != nil {
		return err
	}
	if _, err = f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// WriteAsCSV writes records to path. Every record must have the same number
// of fields as the first
func WriteAsCSV(path string, records [][]string) error {
	if len(records) == 0 {
		return errNoData
	}
	for i := range records {
		if len(records[i]) != len(records[0]) {
			return fmt.Errorf("record %d has %d fields, expected %d", i, len(records[i]), len(records[0]))
		}
	}
	f, err := Writer(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err = w.WriteAll(records); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Exists returns whether path exists
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
