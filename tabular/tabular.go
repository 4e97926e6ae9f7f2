// This package reads the delimited tabular payloads accepted by the import
// endpoint into per-row field maps keyed by the header line.
package tabular

import (
	"encoding/csv"
	"io"
)

// DefaultDelimiter separates fields in uploads that don't name their own
// delimiter.
const DefaultDelimiter = '|'

// Parse reads delimited text whose first line names the columns and returns
// the header list (in column order) plus one field map per subsequent row.
// Every row must have the same number of fields as the header line.
func Parse(r io.Reader, delimiter rune) ([]string, []map[string]string, error) {
	if delimiter == 0 {
		delimiter = DefaultDelimiter
	}
	reader := csv.NewReader(r)
	reader.Comma = delimiter

	headers, err := reader.Read()
	if err == io.EOF {
		return nil, nil, &EmptyPayloadError{}
	} else if err != nil {
		return nil, nil, err
	}

	var rows []map[string]string
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, nil, err
		}
		row := make(map[string]string, len(headers))
		for i, header := range headers {
			row[header] = fields[i]
		}
		rows = append(rows, row)
	}
	return headers, rows, nil
}
