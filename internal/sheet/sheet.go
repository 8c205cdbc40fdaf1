// Package sheet reads and writes schedule grids as CSV exports or Excel
// workbooks. The format is chosen by file extension.
package sheet

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/derekprior/golfsched/internal/grid"
)

func isWorkbook(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return true
	}
	return false
}

// Read loads a grid from path.
func Read(path string) (*grid.Grid, error) {
	if isWorkbook(path) {
		return ReadXLSX(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schedule: %w", err)
	}
	return ParseCSV(data)
}

// Write saves g to path, creating the parent directory if needed.
func Write(path string, g *grid.Grid) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	if isWorkbook(path) {
		return WriteXLSX(path, g)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	if err := WriteCSV(out, g); err != nil {
		out.Close()
		return fmt.Errorf("writing CSV: %w", err)
	}
	return out.Close()
}
