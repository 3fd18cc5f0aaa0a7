package apitable

import (
	"encoding/csv"
	"io"

	"github.com/apitable/apitable-go-sdk/utils"
)

// WriteCSV writes a header of fields followed by one line per row. Missing
// values are written empty.
func WriteCSV(w io.Writer, fields []string, rows []map[string]interface{}) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(fields); err != nil {
		return err
	}

	line := make([]string, len(fields))
	for _, row := range rows {
		for i, field := range fields {
			line[i] = utils.ToString(row[field], "")
		}
		if err := writer.Write(line); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
