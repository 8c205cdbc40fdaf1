package sheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/derekprior/golfsched/internal/grid"
)

// NameColumn is the header of the player column in CSV input.
const NameColumn = "Name"

// fallbackHeaderLine is the 0-based line holding the header in the fallback
// layout, where the export starts with two title lines.
const fallbackHeaderLine = 2

// ParseCSV reads a schedule exported as CSV. The primary layout is UTF-8
// with the header on the first line and a "Name" column anywhere in it. If
// that fails, the data is read again as Latin-1 with two leading records
// skipped, the first column taken as names, rows with too many fields
// dropped and short rows padded with blanks.
func ParseCSV(data []byte) (*grid.Grid, error) {
	g, err := parsePrimary(data)
	if err == nil {
		return g, nil
	}
	g, fbErr := parseFallback(data)
	if fbErr == nil {
		return g, nil
	}
	return nil, errors.Join(
		fmt.Errorf("reading CSV: %w", err),
		fmt.Errorf("reading CSV with alternate encoding: %w", fbErr),
	)
}

func parsePrimary(data []byte) (*grid.Grid, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("input is not valid UTF-8")
	}
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\ufeff"))))
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no header row")
	}

	header := trimAll(records[0])
	nameCol := -1
	for i, h := range header {
		if h == NameColumn {
			nameCol = i
			break
		}
	}
	if nameCol < 0 {
		return nil, fmt.Errorf("no %q column in header", NameColumn)
	}
	return build(header, nameCol, records[1:], 2)
}

func parseFallback(data []byte) (*grid.Grid, error) {
	decoded, err := io.ReadAll(charmap.ISO8859_1.NewDecoder().Reader(bytes.NewReader(data)))
	if err != nil {
		return nil, fmt.Errorf("decoding latin-1: %w", err)
	}

	r := csv.NewReader(bytes.NewReader(decoded))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var (
		header []string
		rows   [][]string
		line   int
	)
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				line++
				continue
			}
			return nil, err
		}
		switch {
		case line < fallbackHeaderLine:
		case line == fallbackHeaderLine:
			header = trimAll(rec)
		case len(rec) <= len(header) && strings.TrimSpace(rec[0]) != "":
			rows = append(rows, rec)
		}
		line++
	}
	if header == nil {
		return nil, fmt.Errorf("no header on line %d", fallbackHeaderLine+1)
	}
	return build(header, 0, rows, fallbackHeaderLine+2)
}

// build turns a header and data rows into a grid. nameCol is the player
// column; every other column is a date. firstLine numbers rows in errors.
func build(header []string, nameCol int, rows [][]string, firstLine int) (*grid.Grid, error) {
	var dates []string
	var dateCols []int
	for i, h := range header {
		if i == nameCol {
			continue
		}
		dates = append(dates, h)
		dateCols = append(dateCols, i)
	}

	var players []string
	var kept [][]string
	var lines []int
	for i, row := range rows {
		if blank(row) {
			continue
		}
		players = append(players, strings.TrimSpace(cell(row, nameCol)))
		kept = append(kept, row)
		lines = append(lines, firstLine+i)
	}
	if len(players) == 0 {
		return nil, fmt.Errorf("no player rows")
	}

	g, err := grid.New(players, dates)
	if err != nil {
		return nil, err
	}
	for p, row := range kept {
		for d, col := range dateCols {
			s, err := grid.ParseMarker(cell(row, col))
			if err != nil {
				return nil, fmt.Errorf("line %d, %s: %w", lines[p], dates[d], err)
			}
			g.SetAt(p, d, s)
		}
	}
	return g, nil
}

// WriteCSV writes g with a Name column followed by one column per date.
func WriteCSV(w io.Writer, g *grid.Grid) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{NameColumn}, g.Dates()...)); err != nil {
		return err
	}
	row := make([]string, g.NumDates()+1)
	for p := 0; p < g.NumPlayers(); p++ {
		row[0] = g.Player(p)
		for d := 0; d < g.NumDates(); d++ {
			row[d+1] = g.At(p, d).Marker()
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func trimAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.TrimSpace(s)
	}
	return out
}
