package importer

import (
	"encoding/csv"
	"io"
	"strings"

	pkgerrors "github.com/pandoralabs/stockline-backend/pkg/errors"
)

// ParseCSV reads an uploaded spreadsheet into header-keyed rows. The
// first record is treated as the header row.
func ParseCSV(r io.Reader) ([]map[string]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parse csv")
	}
	if len(records) < 2 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "csv needs a header row and at least one data row")
	}

	headers := make([]string, len(records[0]))
	for i, header := range records[0] {
		headers[i] = strings.TrimSpace(header)
	}

	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]string, len(headers))
		for i, header := range headers {
			if header == "" || i >= len(record) {
				continue
			}
			row[header] = record[i]
		}
		rows = append(rows, row)
	}
	return rows, nil
}
