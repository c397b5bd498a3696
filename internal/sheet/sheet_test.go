package sheet

import (
	"bytes"
	"testing"

	"github.com/wirasakti/partmap/internal/cart"
	"github.com/wirasakti/partmap/internal/catalog"
	pkgerrors "github.com/wirasakti/partmap/pkg/errors"
	"github.com/xuri/excelize/v2"
)

func sampleLines() []cart.Line {
	return []cart.Line{
		{
			Item: catalog.Item{
				ID:           "a",
				PartName:     "Bracket",
				PartNo:       "BD010",
				UnitName:     "-",
				SupplierName: "PT Indoparts",
				MaterialName: "SPCC",
				MakerName:    "Musashi",
			},
			Quantity: 3,
		},
		{
			Item: catalog.Item{
				ID:       "b",
				PartName: "Bolt M10",
				PartNo:   "X-22",
				UnitName: "SET",
			},
			Quantity: 1,
		},
	}
}

func validHeader() Header {
	return Header{
		PartNo:       "BD010",
		PartName:     "Bracket Assy",
		Customer:     "PT Astra",
		Project:      "K2FA",
		RevisionDate: "2026-08-30",
		Revisions:    []Revision{{Rev: "0", Description: "Initial release", Date: "2026-08-30"}},
		Approvers:    Approvers{Dibuat: "Andi", Diperiksa1: "Budi", Diperiksa2: "Citra", Disetujui: "Dewi"},
	}
}

func TestBuildRejectsMissingHeaderFields(t *testing.T) {
	header := validHeader()
	header.Customer = ""
	header.Project = "  "

	_, err := Build(sampleLines(), header, Options{})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected details map, got %T", typed.Details())
	}
	missing, _ := details["missing"].([]string)
	if len(missing) != 2 {
		t.Fatalf("expected two missing fields, got %v", details["missing"])
	}
}

func TestBuildRejectsEmptyCart(t *testing.T) {
	_, err := Build(nil, validHeader(), Options{})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestBuildLayout(t *testing.T) {
	opts := Options{CompanyName: "PT. CIPTA MANDIRI WIRASAKTI", SheetName: "Supplier Maker Layout"}
	data, err := Build(sampleLines(), validHeader(), opts)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	const sheet = "Supplier Maker Layout"
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		t.Fatalf("expected sheet %q, err %v idx %d", sheet, err, idx)
	}

	checks := map[string]string{
		"A1":  "PT. CIPTA MANDIRI WIRASAKTI",
		"A2":  "SUPPLIER / MAKER LAY OUT",
		"A3":  "PART NO.",
		"C3":  "BD010",
		"A6":  "PROJECT",
		"C6":  "K2FA",
		"K3":  "REV",
		"L3":  "DESCRIPTION",
		"L4":  "Initial release",
		"A9":  "NO",
		"E9":  "PART NAME",
		"H10": "SUPPLIER",
		"E11": "Bracket",
		"F11": "3",
		"G11": "PCS",
		"E12": "Bolt M10",
		"G12": "SET",
	}
	for cell, want := range checks {
		got, err := f.GetCellValue(sheet, cell)
		if err != nil {
			t.Fatalf("read %s: %v", cell, err)
		}
		if got != want {
			t.Fatalf("cell %s: expected %q, got %q", cell, want, got)
		}
	}

	// two data rows end at row 12, approval headers land four rows below
	got, err := f.GetCellValue(sheet, "K16")
	if err != nil {
		t.Fatalf("read K16: %v", err)
	}
	if got != "Dibuat" {
		t.Fatalf("expected approval header at K16, got %q", got)
	}
	if got, _ := f.GetCellValue(sheet, "N18"); got != "Dewi" {
		t.Fatalf("expected approver name at N18, got %q", got)
	}
}
