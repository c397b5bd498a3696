// Package sheet writes the supplier/maker layout workbook: a fixed cell
// layout transcribing the cart plus a user-supplied document header. Pure
// data-to-layout formatting; nothing here feeds back into workspace state.
package sheet

import (
	"fmt"
	"strings"

	"github.com/wirasakti/partmap/internal/cart"
	pkgerrors "github.com/wirasakti/partmap/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// RevisionRowCount fixes how many revision slots the header table carries.
const RevisionRowCount = 4

// headerFill matches the grey used across header cells.
const headerFill = "E5E7EB"

// Revision is one row of the revision log table.
type Revision struct {
	Rev         string `json:"rev"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

// Approvers carries the names under the signature block.
type Approvers struct {
	Dibuat     string `json:"dibuat"`
	Diperiksa1 string `json:"diperiksa_1"`
	Diperiksa2 string `json:"diperiksa_2"`
	Disetujui  string `json:"disetujui"`
}

// Header is the user-editable document header. PartNo, PartName, Customer
// and Project are required; the rest is optional.
type Header struct {
	PartNo       string     `json:"part_no" validate:"required"`
	PartName     string     `json:"part_name" validate:"required"`
	Customer     string     `json:"customer" validate:"required"`
	Project      string     `json:"project" validate:"required"`
	RevisionDate string     `json:"revision_date"`
	Revisions    []Revision `json:"revisions" validate:"max=4"`
	Approvers    Approvers  `json:"approvers"`
}

// Validate reports which required header fields are missing.
func (h Header) Validate() error {
	missing := []string{}
	required := []struct {
		field string
		value string
	}{
		{"part_no", h.PartNo},
		{"part_name", h.PartName},
		{"customer", h.Customer},
		{"project", h.Project},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.field)
		}
	}
	if len(missing) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "missing required header fields").
			WithDetails(map[string]any{"missing": missing})
	}
	return nil
}

// Options carries the tenant branding printed above the table.
type Options struct {
	CompanyName string
	SheetName   string
}

// Build serializes the cart and header into an xlsx workbook.
func Build(lines []cart.Line, header Header, opts Options) ([]byte, error) {
	if err := header.Validate(); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no items to export")
	}

	sheetName := opts.SheetName
	if sheetName == "" {
		sheetName = "Supplier Maker Layout"
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}

	if err := setColumnWidths(f, sheetName); err != nil {
		return nil, err
	}

	styles, err := buildStyles(f)
	if err != nil {
		return nil, err
	}

	if err := writeTitle(f, sheetName, opts.CompanyName, styles); err != nil {
		return nil, err
	}
	if err := writeProjectInfo(f, sheetName, header, styles); err != nil {
		return nil, err
	}
	if err := writeRevisionTable(f, sheetName, header.Revisions, styles); err != nil {
		return nil, err
	}
	if err := writeTable(f, sheetName, lines, styles); err != nil {
		return nil, err
	}
	if err := writeApproval(f, sheetName, len(lines), header.Approvers, styles); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

type styleSet struct {
	company     int
	title       int
	headerLabel int
	bordered    int
	tableHeader int
	signature   int
}

func buildStyles(f *excelize.File) (styleSet, error) {
	thin := []excelize.Border{
		{Type: "top", Style: 1, Color: "000000"},
		{Type: "left", Style: 1, Color: "000000"},
		{Type: "bottom", Style: 1, Color: "000000"},
		{Type: "right", Style: 1, Color: "000000"},
	}

	company, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 6},
	})
	if err != nil {
		return styleSet{}, err
	}

	title, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return styleSet{}, err
	}

	headerLabel, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFill}},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
		Border:    thin,
	})
	if err != nil {
		return styleSet{}, err
	}

	bordered, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
		Border:    thin,
	})
	if err != nil {
		return styleSet{}, err
	}

	tableHeader, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFill}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thin,
	})
	if err != nil {
		return styleSet{}, err
	}

	signature, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thin,
	})
	if err != nil {
		return styleSet{}, err
	}

	return styleSet{
		company:     company,
		title:       title,
		headerLabel: headerLabel,
		bordered:    bordered,
		tableHeader: tableHeader,
		signature:   signature,
	}, nil
}

func setColumnWidths(f *excelize.File, sheet string) error {
	widths := []struct {
		col   string
		width float64
	}{
		{"A", 5}, {"B", 15}, {"C", 15}, {"D", 15}, {"E", 25}, {"F", 8}, {"G", 8},
		{"H", 12}, {"I", 12}, {"J", 12}, {"K", 12}, {"L", 15}, {"M", 15}, {"N", 20},
	}
	for _, w := range widths {
		if err := f.SetColWidth(sheet, w.col, w.col, w.width); err != nil {
			return err
		}
	}
	return nil
}

func writeTitle(f *excelize.File, sheet, company string, styles styleSet) error {
	if err := f.SetCellValue(sheet, "A1", company); err != nil {
		return err
	}
	if err := f.MergeCell(sheet, "A1", "N1"); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "A1", styles.company); err != nil {
		return err
	}

	if err := f.SetCellValue(sheet, "A2", "SUPPLIER / MAKER LAY OUT"); err != nil {
		return err
	}
	if err := f.MergeCell(sheet, "A2", "N2"); err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A2", "A2", styles.title)
}

func writeProjectInfo(f *excelize.File, sheet string, header Header, styles styleSet) error {
	info := [][2]string{
		{"PART NO.", header.PartNo},
		{"PART NAME", header.PartName},
		{"CUSTOMER", header.Customer},
		{"PROJECT", header.Project},
		{"REVISI / DATE", header.RevisionDate},
	}

	for i, pair := range info {
		row := 3 + i
		labelCell := fmt.Sprintf("A%d", row)
		valueCell := fmt.Sprintf("C%d", row)

		if err := f.MergeCell(sheet, labelCell, fmt.Sprintf("B%d", row)); err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, labelCell, pair[0]); err != nil {
			return err
		}
		if err := f.MergeCell(sheet, valueCell, fmt.Sprintf("E%d", row)); err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, valueCell, pair[1]); err != nil {
			return err
		}

		if err := f.SetCellStyle(sheet, labelCell, fmt.Sprintf("B%d", row), styles.headerLabel); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, valueCell, fmt.Sprintf("E%d", row), styles.bordered); err != nil {
			return err
		}
	}
	return nil
}

func writeRevisionTable(f *excelize.File, sheet string, revisions []Revision, styles styleSet) error {
	const headerRow = 3

	headers := map[string]string{"K": "REV", "L": "DESCRIPTION", "N": "DATE"}
	for col, label := range headers {
		cell := fmt.Sprintf("%s%d", col, headerRow)
		if err := f.SetCellValue(sheet, cell, label); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, styles.tableHeader); err != nil {
			return err
		}
	}
	if err := f.MergeCell(sheet, fmt.Sprintf("L%d", headerRow), fmt.Sprintf("M%d", headerRow)); err != nil {
		return err
	}

	for i := 0; i < RevisionRowCount; i++ {
		row := headerRow + 1 + i
		var rev Revision
		if i < len(revisions) {
			rev = revisions[i]
		}

		if err := f.MergeCell(sheet, fmt.Sprintf("L%d", row), fmt.Sprintf("M%d", row)); err != nil {
			return err
		}
		cells := map[string]string{
			fmt.Sprintf("K%d", row): rev.Rev,
			fmt.Sprintf("L%d", row): rev.Description,
			fmt.Sprintf("N%d", row): rev.Date,
		}
		for cell, value := range cells {
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
		if err := f.SetCellStyle(sheet, fmt.Sprintf("K%d", row), fmt.Sprintf("N%d", row), styles.bordered); err != nil {
			return err
		}
	}
	return nil
}

// tableStartRow is where the compound column header begins.
const tableStartRow = 9

func writeTable(f *excelize.File, sheet string, lines []cart.Line, styles styleSet) error {
	top := [14]string{
		"NO", "PART NO CUST", "", "PART NO CMW", "PART NAME", "QTY", "UNIT",
		"DWG CUSTOMER", "", "SUPPLIER", "", "", "", "REMARK",
	}
	bottom := [14]string{
		"", "PART NO INDUK", "PART NO ANAK", "", "", "", "",
		"SUPPLIER", "MATERIAL", "IMPOR", "LOKAL", "PART NO", "MAKER", "",
	}

	for i := 0; i < 14; i++ {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetCellValue(sheet, fmt.Sprintf("%s%d", col, tableStartRow), top[i]); err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, fmt.Sprintf("%s%d", col, tableStartRow+1), bottom[i]); err != nil {
			return err
		}
	}

	merges := [][2]string{
		{"A9", "A10"}, {"B9", "C9"}, {"D9", "D10"}, {"E9", "E10"},
		{"F9", "F10"}, {"G9", "G10"}, {"H9", "I9"}, {"J9", "M9"}, {"N9", "N10"},
	}
	for _, m := range merges {
		if err := f.MergeCell(sheet, m[0], m[1]); err != nil {
			return err
		}
	}

	if err := f.SetCellStyle(sheet, "A9", "N10", styles.tableHeader); err != nil {
		return err
	}
	for _, row := range []int{tableStartRow, tableStartRow + 1} {
		if err := f.SetRowHeight(sheet, row, 25); err != nil {
			return err
		}
	}

	for i, line := range lines {
		row := tableStartRow + 2 + i
		unit := line.Item.UnitName
		if unit == "" || unit == "-" {
			unit = "PCS"
		}
		values := []any{
			i + 1,
			line.Item.PartNo,
			"",
			line.Item.PartNo,
			line.Item.PartName,
			line.Quantity,
			unit,
			line.Item.SupplierName,
			line.Item.MaterialName,
			line.Item.ImportName,
			line.Item.LocalName,
			line.Item.PartNo,
			line.Item.MakerName,
			"",
		}
		for col, value := range values {
			name, _ := excelize.ColumnNumberToName(col + 1)
			if err := f.SetCellValue(sheet, fmt.Sprintf("%s%d", name, row), value); err != nil {
				return err
			}
		}
		if err := f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("N%d", row), styles.bordered); err != nil {
			return err
		}
		if err := f.SetRowHeight(sheet, row, 20); err != nil {
			return err
		}
	}
	return nil
}

func writeApproval(f *excelize.File, sheet string, lineCount int, approvers Approvers, styles styleSet) error {
	tableEndRow := tableStartRow + 1 + lineCount
	start := tableEndRow + 4

	if err := f.MergeCell(sheet, fmt.Sprintf("L%d", start), fmt.Sprintf("M%d", start)); err != nil {
		return err
	}
	headers := map[string]string{"K": "Dibuat", "L": "Diperiksa", "N": "Disetujui"}
	for col, label := range headers {
		cell := fmt.Sprintf("%s%d", col, start)
		if err := f.SetCellValue(sheet, cell, label); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, styles.tableHeader); err != nil {
			return err
		}
	}

	// signature row
	if err := f.SetCellStyle(sheet, fmt.Sprintf("K%d", start+1), fmt.Sprintf("N%d", start+1), styles.bordered); err != nil {
		return err
	}
	if err := f.SetRowHeight(sheet, start+1, 40); err != nil {
		return err
	}

	names := map[string]string{
		"K": approvers.Dibuat,
		"L": approvers.Diperiksa1,
		"M": approvers.Diperiksa2,
		"N": approvers.Disetujui,
	}
	for col, name := range names {
		cell := fmt.Sprintf("%s%d", col, start+2)
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, styles.signature); err != nil {
			return err
		}
	}
	return nil
}
