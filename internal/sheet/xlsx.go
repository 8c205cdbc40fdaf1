package sheet

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/derekprior/golfsched/internal/grid"
)

const (
	// ScheduleSheet holds the grid in a workbook.
	ScheduleSheet = "Schedule"
	// PlayersSheet holds the per-player summary written alongside it.
	PlayersSheet = "Players"
)

// ReadXLSX reads the Schedule sheet of a workbook, or the first sheet when
// there is none. Row 1 is the header and column A holds player names.
func ReadXLSX(path string) (*grid.Grid, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	name := sheets[0]
	for _, s := range sheets {
		if s == ScheduleSheet {
			name = s
			break
		}
	}

	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", name, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", name)
	}
	g, err := build(trimAll(rows[0]), 0, rows[1:], 2)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", name, err)
	}
	return g, nil
}

// Workbook renders g as a Schedule sheet plus a Players summary.
func Workbook(g *grid.Grid) (*excelize.File, error) {
	f := excelize.NewFile()

	f.SetDefaultFont("Arial")

	if err := writeScheduleSheet(f, g); err != nil {
		return nil, fmt.Errorf("writing schedule sheet: %w", err)
	}
	if err := writePlayersSheet(f, g); err != nil {
		return nil, fmt.Errorf("writing players sheet: %w", err)
	}

	f.DeleteSheet("Sheet1")
	if idx, err := f.GetSheetIndex(ScheduleSheet); err == nil && idx >= 0 {
		f.SetActiveSheet(idx)
	}
	return f, nil
}

// WriteXLSX saves g as a workbook at path.
func WriteXLSX(path string, g *grid.Grid) error {
	f, err := Workbook(g)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

func headerStyle(f *excelize.File) int {
	style, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 12, Family: "Arial"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#4472C4"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	return style
}

func writeHeaders(f *excelize.File, sheet string, headers []string) {
	for i, h := range headers {
		f.SetCellValue(sheet, cellRef(i+1, 1), h)
	}
	if style := headerStyle(f); style != 0 {
		f.SetCellStyle(sheet, cellRef(1, 1), cellRef(len(headers), 1), style)
	}
}

func writeScheduleSheet(f *excelize.File, g *grid.Grid) error {
	sheet := ScheduleSheet
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	writeHeaders(f, sheet, append([]string{NameColumn}, g.Dates()...))

	markStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 12, Family: "Arial"},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	for p := 0; p < g.NumPlayers(); p++ {
		row := p + 2
		f.SetCellValue(sheet, cellRef(1, row), g.Player(p))
		for d := 0; d < g.NumDates(); d++ {
			if m := g.At(p, d).Marker(); m != "" {
				f.SetCellValue(sheet, cellRef(d+2, row), m)
			}
		}
		if markStyle != 0 && g.NumDates() > 0 {
			f.SetCellStyle(sheet, cellRef(2, row), cellRef(g.NumDates()+1, row), markStyle)
		}
	}

	f.SetColWidth(sheet, "A", "A", 20)
	if g.NumDates() > 0 {
		f.SetColWidth(sheet, "B", colLetter(g.NumDates()+1), 10)
	}
	f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		XSplit:      1,
		YSplit:      1,
		TopLeftCell: "B2",
		ActivePane:  "bottomRight",
	})

	if g.NumPlayers() == 0 || g.NumDates() == 0 {
		return nil
	}

	// Scheduled cells green, excluded cells light red.
	greenFill, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#C6EFCE"}},
		Font: &excelize.Font{Size: 12, Family: "Arial", Color: "#006100"},
	})
	redFill, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#FFC7CE"}},
		Font: &excelize.Font{Size: 12, Family: "Arial"},
	})
	cellRange := fmt.Sprintf("B2:%s", cellRef(g.NumDates()+1, g.NumPlayers()+1))
	return f.SetConditionalFormat(sheet, cellRange, []excelize.ConditionalFormatOptions{
		{Type: "formula", Criteria: fmt.Sprintf(`B2="%s"`, grid.Scheduled.Marker()), Format: &greenFill},
		{Type: "formula", Criteria: fmt.Sprintf(`B2="%s"`, grid.Excluded.Marker()), Format: &redFill},
	})
}

func writePlayersSheet(f *excelize.File, g *grid.Grid) error {
	sheet := PlayersSheet
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	headers := []string{"Player", "Matches", "Excluded", "Open"}
	writeHeaders(f, sheet, headers)

	cellStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 12, Family: "Arial"},
	})

	for p := 0; p < g.NumPlayers(); p++ {
		row := p + 2
		f.SetCellValue(sheet, cellRef(1, row), g.Player(p))
		f.SetCellValue(sheet, cellRef(2, row), g.PlayerCount(p, grid.Scheduled))
		f.SetCellValue(sheet, cellRef(3, row), g.PlayerCount(p, grid.Excluded))
		f.SetCellValue(sheet, cellRef(4, row), g.PlayerCount(p, grid.Unset))
		if cellStyle != 0 {
			f.SetCellStyle(sheet, cellRef(1, row), cellRef(len(headers), row), cellStyle)
		}
	}

	widths := map[string]float64{"A": 20, "B": 12, "C": 12, "D": 10}
	for col, w := range widths {
		f.SetColWidth(sheet, col, col, w)
	}
	return nil
}

func cellRef(col, row int) string {
	return fmt.Sprintf("%s%d", colLetter(col), row)
}

func colLetter(col int) string {
	result := ""
	for col > 0 {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}
