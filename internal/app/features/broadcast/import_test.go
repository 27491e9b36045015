package broadcast

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	contactstore "github.com/Anaastro/landing-demo/internal/app/store/contact"
	"github.com/Anaastro/landing-demo/internal/domain/models"
	"github.com/Anaastro/landing-demo/internal/testutil"
	"github.com/xuri/excelize/v2"
)

func TestParseContactsFile_CSV(t *testing.T) {
	csvData := "Nombre,Apellido,Teléfono\n" +
		"Juan,Pérez,+52 123 456 7890\n" +
		"María,García,5512345678\n" +
		",,\n" +
		"Solo,SinTelefono,\n"

	rows, err := ParseContactsFile(strings.NewReader(csvData), "contactos.csv")
	if err != nil {
		t.Fatalf("ParseContactsFile() error = %v", err)
	}
	// The all-empty row is skipped; the phoneless row is kept for the
	// importer to count as an error.
	if len(rows) != 3 {
		t.Fatalf("parsed %d rows, want 3", len(rows))
	}
	if rows[0].FirstName != "Juan" || rows[0].LastName != "Pérez" || rows[0].Phone != "+52 123 456 7890" {
		t.Errorf("row[0] = %+v", rows[0])
	}
	if rows[0].Line != 2 {
		t.Errorf("row[0].Line = %d, want 2", rows[0].Line)
	}
	if rows[2].Phone != "" {
		t.Errorf("row[2].Phone = %q, want empty", rows[2].Phone)
	}
}

func TestParseContactsFile_CSV_HeaderAliases(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"english", "First Name,Last Name,Phone"},
		{"spanish short", "nombre,apellido,tel"},
		{"whatsapp column", "Nombres,Apellidos,WhatsApp"},
		{"phone only", "Celular"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := tt.header + "\nA,B,123456789\n"
			if tt.name == "phone only" {
				data = tt.header + "\n123456789\n"
			}
			rows, err := ParseContactsFile(strings.NewReader(data), "c.csv")
			if err != nil {
				t.Fatalf("ParseContactsFile() error = %v", err)
			}
			if len(rows) != 1 {
				t.Fatalf("parsed %d rows, want 1", len(rows))
			}
			if rows[0].Phone == "" {
				t.Error("phone column not mapped")
			}
		})
	}
}

func TestParseContactsFile_XLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	data := [][]string{
		{"Nombre", "Apellido", "Telefono"},
		{"Ana", "López", "5215511122233"},
		{"Luis", "Mora", "5215544455666"},
	}
	for i, row := range data {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatal(err)
	}

	rows, err := ParseContactsFile(&buf, "contactos.xlsx")
	if err != nil {
		t.Fatalf("ParseContactsFile() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("parsed %d rows, want 2", len(rows))
	}
	if rows[0].FirstName != "Ana" || rows[0].Phone != "5215511122233" {
		t.Errorf("row[0] = %+v", rows[0])
	}
}

func TestParseContactsFile_UnsupportedFormat(t *testing.T) {
	_, err := ParseContactsFile(strings.NewReader("x"), "contactos.txt")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestParseContactsFile_MissingHeader(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty file", ""},
		{"no phone column", "Nombre,Apellido\nJuan,Pérez\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseContactsFile(strings.NewReader(tt.data), "c.csv")
			if !errors.Is(err, ErrNoHeader) {
				t.Errorf("error = %v, want ErrNoHeader", err)
			}
		})
	}
}

func TestImportRows(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := contactstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Pre-existing contact; the file repeats it with different formatting.
	if _, err := store.Insert(ctx, models.Contact{FirstName: "Previa", Phone: "5215511122233"}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	rows := []ImportRow{
		{FirstName: "Ana", LastName: "López", Phone: "+52 1 55 1112 2233", Line: 2},  // already stored
		{FirstName: "Luis", LastName: "Mora", Phone: "5215544455666", Line: 3},       // new
		{FirstName: "Luis", LastName: "Duplicado", Phone: "52-1554445-5666", Line: 4}, // repeats row 3
		{FirstName: "SinTel", LastName: "", Phone: "", Line: 5},                      // no phone
		{FirstName: "Eva", LastName: "Cruz", Phone: "5215599988777", Line: 6},        // new
	}

	result, err := ImportRows(ctx, store, rows)
	if err != nil {
		t.Fatalf("ImportRows() error = %v", err)
	}

	if result.TotalRead != 5 {
		t.Errorf("TotalRead = %d, want 5", result.TotalRead)
	}
	if result.Added != 2 {
		t.Errorf("Added = %d, want 2", result.Added)
	}
	if result.SkippedInFile != 1 {
		t.Errorf("SkippedInFile = %d, want 1", result.SkippedInFile)
	}
	if result.SkippedInStore != 1 {
		t.Errorf("SkippedInStore = %d, want 1", result.SkippedInStore)
	}
	if result.Errored != 1 {
		t.Errorf("Errored = %d, want 1", result.Errored)
	}

	// Stored phones end up normalized.
	phones, err := store.AllPhones(ctx)
	if err != nil {
		t.Fatalf("AllPhones() error = %v", err)
	}
	if len(phones) != 3 {
		t.Errorf("stored %d phones, want 3", len(phones))
	}
	if !phones["5215544455666"] {
		t.Error("normalized phone 5215544455666 not stored")
	}
}

func TestImportResult_Summary(t *testing.T) {
	r := ImportResult{TotalRead: 5, Added: 2, SkippedInFile: 1, SkippedInStore: 1, Errored: 1}
	want := "Leídos: 5, agregados: 2, duplicados en archivo: 1, ya existentes: 1, con errores: 1"
	if got := r.Summary(); got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}
}

func TestWriteTemplateCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTemplateCSV(&buf); err != nil {
		t.Fatalf("WriteTemplateCSV() error = %v", err)
	}
	// The template must parse with the same importer that reads uploads.
	rows, err := ParseContactsFile(bytes.NewReader(buf.Bytes()), "plantilla.csv")
	if err != nil {
		t.Fatalf("template does not round-trip: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("template has %d example rows, want 2", len(rows))
	}
}

func TestWriteTemplateXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTemplateXLSX(&buf); err != nil {
		t.Fatalf("WriteTemplateXLSX() error = %v", err)
	}
	rows, err := ParseContactsFile(bytes.NewReader(buf.Bytes()), "plantilla.xlsx")
	if err != nil {
		t.Fatalf("template does not round-trip: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("template has %d example rows, want 2", len(rows))
	}
}
