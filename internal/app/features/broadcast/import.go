// internal/app/features/broadcast/import.go
package broadcast

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	contactstore "github.com/Anaastro/landing-demo/internal/app/store/contact"
	"github.com/Anaastro/landing-demo/internal/app/system/normalize"
	"github.com/Anaastro/landing-demo/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned for files that are neither CSV nor XLSX.
var ErrUnsupportedFormat = errors.New("unsupported file format, use .csv or .xlsx")

// ErrNoHeader is returned when the file has no recognizable header row.
var ErrNoHeader = errors.New("file is missing a header row with name and phone columns")

// Column header aliases, matched case- and diacritic-insensitively.
var (
	firstNameHeaders = []string{"nombre", "name", "first", "first name", "firstname", "nombres"}
	lastNameHeaders  = []string{"apellido", "apellidos", "last", "last name", "lastname", "surname"}
	phoneHeaders     = []string{"telefono", "tel", "phone", "celular", "movil", "whatsapp", "numero"}
)

// ImportRow is one parsed spreadsheet row.
type ImportRow struct {
	FirstName string
	LastName  string
	Phone     string // raw, not yet normalized
	Line      int    // 1-based row number in the file, for error reporting
}

// ImportResult counts what happened to each row of an import.
type ImportResult struct {
	TotalRead      int `json:"totalRead"`
	Added          int `json:"added"`
	SkippedInFile  int `json:"skippedInFile"`  // duplicate phone within the file
	SkippedInStore int `json:"skippedInStore"` // phone already in the database
	Errored        int `json:"errored"`        // missing phone or insert failure
}

// Summary renders the result counters as a user-facing message.
func (r ImportResult) Summary() string {
	return fmt.Sprintf(
		"Leídos: %d, agregados: %d, duplicados en archivo: %d, ya existentes: %d, con errores: %d",
		r.TotalRead, r.Added, r.SkippedInFile, r.SkippedInStore, r.Errored)
}

// columnMap locates the first/last/phone columns in a header row.
// A phone column is mandatory; name columns are optional.
type columnMap struct {
	first, last, phone int
}

func matchHeader(cell string, aliases []string) bool {
	folded := text.Fold(strings.TrimSpace(cell))
	for _, a := range aliases {
		if folded == text.Fold(a) {
			return true
		}
	}
	return false
}

func mapColumns(header []string) (columnMap, bool) {
	cm := columnMap{first: -1, last: -1, phone: -1}
	for i, cell := range header {
		switch {
		case cm.first < 0 && matchHeader(cell, firstNameHeaders):
			cm.first = i
		case cm.last < 0 && matchHeader(cell, lastNameHeaders):
			cm.last = i
		case cm.phone < 0 && matchHeader(cell, phoneHeaders):
			cm.phone = i
		}
	}
	return cm, cm.phone >= 0
}

func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// ParseContactsFile reads rows out of a CSV or XLSX upload. The format is
// chosen by file extension. Rows where every mapped column is empty are
// skipped without counting.
func ParseContactsFile(r io.Reader, filename string) ([]ImportRow, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return parseCSV(r)
	case ".xlsx":
		return parseXLSX(r)
	default:
		return nil, ErrUnsupportedFormat
	}
}

func parseCSV(r io.Reader) ([]ImportRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return rowsFromRecords(records)
}

func parseXLSX(r io.Reader) ([]ImportRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("read xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoHeader
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read xlsx rows: %w", err)
	}
	return rowsFromRecords(records)
}

func rowsFromRecords(records [][]string) ([]ImportRow, error) {
	if len(records) == 0 {
		return nil, ErrNoHeader
	}
	cm, ok := mapColumns(records[0])
	if !ok {
		return nil, ErrNoHeader
	}

	var rows []ImportRow
	for i, rec := range records[1:] {
		row := ImportRow{
			FirstName: cellAt(rec, cm.first),
			LastName:  cellAt(rec, cm.last),
			Phone:     cellAt(rec, cm.phone),
			Line:      i + 2,
		}
		if row.FirstName == "" && row.LastName == "" && row.Phone == "" {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ImportRows inserts parsed rows into the contact store with two levels of
// dedup: phones repeated inside the file, and phones already stored. Rows
// without a usable phone count as errors. One insert failing does not
// abort the rest.
func ImportRows(ctx context.Context, store *contactstore.Store, rows []ImportRow) (ImportResult, error) {
	result := ImportResult{TotalRead: len(rows)}

	existing, err := store.AllPhones(ctx)
	if err != nil {
		return result, fmt.Errorf("load existing phones: %w", err)
	}
	seen := make(map[string]bool)

	for _, row := range rows {
		phone := normalize.Phone(row.Phone)
		if phone == "" {
			result.Errored++
			continue
		}
		if seen[phone] {
			result.SkippedInFile++
			continue
		}
		seen[phone] = true
		if existing[phone] {
			result.SkippedInStore++
			continue
		}

		_, err := store.Insert(ctx, models.Contact{
			FirstName: row.FirstName,
			LastName:  row.LastName,
			Phone:     phone,
		})
		if err != nil {
			result.Errored++
			continue
		}
		result.Added++
	}
	return result, nil
}

// Example rows offered in the downloadable templates.
var templateRows = [][]string{
	{"Nombre", "Apellido", "Telefono"},
	{"Juan", "Pérez", "+521234567890"},
	{"María", "García", "+525512345678"},
}

// WriteTemplateCSV writes the import template as CSV.
func WriteTemplateCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	for _, row := range templateRows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTemplateXLSX writes the import template as an XLSX workbook.
func WriteTemplateXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range templateRows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return f.Write(w)
}
