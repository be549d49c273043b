package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"dataprep/pkg/frame"
)

// maxSheetName is the longest worksheet name Excel accepts.
const maxSheetName = 31

// WriteXLSX writes t as the only worksheet of a new workbook at path. The
// header row is bold and frozen. Numbers are stored as numbers and missing
// values as empty cells.
func WriteXLSX(path, sheet string, t *frame.Table, withIndex bool) (int64, error) {
	if path == "" {
		return 0, fmt.Errorf("xlsx export: missing path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("create output dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	name := SheetName(sheet)
	if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
		return 0, fmt.Errorf("name sheet %q: %w", name, err)
	}

	sw, err := f.NewStreamWriter(name)
	if err != nil {
		return 0, fmt.Errorf("open sheet %q: %w", name, err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return 0, err
	}
	if err := sw.SetPanes(&excelize.Panes{
		Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
	}); err != nil {
		return 0, fmt.Errorf("freeze header: %w", err)
	}

	head := header(t, withIndex)
	cells := make([]any, len(head))
	for j, h := range head {
		cells[j] = excelize.Cell{StyleID: bold, Value: h}
	}
	if err := sw.SetRow("A1", cells); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	var n int64
	for i := range t.Len() {
		for j, v := range record(t, i, withIndex) {
			cells[j] = v.Any()
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return n, err
		}
		if err := sw.SetRow(cell, cells); err != nil {
			return n, fmt.Errorf("write row %d: %w", i, err)
		}
		n++
	}
	if err := sw.Flush(); err != nil {
		return n, fmt.Errorf("flush sheet: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return n, fmt.Errorf("save %s: %w", path, err)
	}
	return n, nil
}

// SheetName makes s usable as a worksheet name: characters Excel rejects
// become '_' and the result is cut to 31 runes. An empty name becomes
// "Sheet1".
func SheetName(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, strings.Trim(s, "'"))
	if s == "" {
		return "Sheet1"
	}
	if r := []rune(s); len(r) > maxSheetName {
		s = string(r[:maxSheetName])
	}
	return s
}
