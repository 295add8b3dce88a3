package services

import (
	"bytes"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		addr, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, addr, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}
	return buf
}

func TestImporterParsesSchedule(t *testing.T) {
	buf := buildWorkbook(t, [][]interface{}{
		{"Horario 2026-2"},
		{"Día", "Hora", "Materia ID", "Materia", "Aula"},
		{"Lunes", "7:30 - 8:20 (M1)", "calc", "Cálculo", "A-101"},
		{"Martes", "9:00 - 9:50", "", "Física General", "B-202"},
		{},
		{"Jueves", "10:00 - 10:50", "calc", "", "A-103"},
	})

	doc, err := NewImporterService().ParseXLSX(buf, "u-1", "2026-2")
	if err != nil {
		t.Fatalf("ParseXLSX: %v", err)
	}
	if !doc.Active || doc.UserID != "u-1" || doc.ID != "2026-2" {
		t.Errorf("unexpected document header %+v", doc)
	}
	if len(doc.Slots) != 3 {
		t.Fatalf("got %d slots, want 3", len(doc.Slots))
	}
	if got := *doc.Slots[1].SubjectID; got != "fisica-general" {
		t.Errorf("derived subject id = %q", got)
	}
	if doc.Subjects["calc"].Name != "Cálculo" {
		t.Errorf("subject name overwritten by empty cell: %+v", doc.Subjects["calc"])
	}

	slots, errs := doc.ScheduleSlots()
	if len(errs) != 0 || len(slots) != 3 {
		t.Errorf("imported slots do not parse back: %v", errs)
	}
}

func TestImporterRejectsInvalidFiles(t *testing.T) {
	tests := []struct {
		name string
		rows [][]interface{}
	}{
		{"no header", [][]interface{}{{"Lunes", "7:30"}}},
		{"bad day", [][]interface{}{{"Día", "Hora"}, {"Someday", "7:30"}}},
		{"bad time", [][]interface{}{{"Día", "Hora"}, {"Lunes", "temprano"}}},
		{"empty", [][]interface{}{{"Día", "Hora"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewImporterService().ParseXLSX(buildWorkbook(t, tt.rows), "u", "s")
			if !errors.Is(err, ErrInvalidSchedule) {
				t.Errorf("err = %v, want ErrInvalidSchedule", err)
			}
		})
	}

	if _, err := NewImporterService().ParseXLSX(bytes.NewReader([]byte("not a zip")), "u", "s"); !errors.Is(err, ErrInvalidSchedule) {
		t.Errorf("garbage input err = %v", err)
	}
}
