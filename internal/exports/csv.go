package exports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/diskleads/leadmarket-backend/pkg/db/models"
)

// ContentType is the MIME type of generated export artifacts.
const ContentType = "text/csv"

// utf8BOM keeps accented characters intact when the file is opened in Excel.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var csvHeader = []string{
	"nome",
	"segmento",
	"categoria",
	"estado",
	"cidade",
	"bairro",
	"telefone",
	"website",
	"avaliacao",
	"qtd_avaliacoes",
	"endereco",
}

// MarshalCSV renders the purchased rows as a CSV document.
func MarshalCSV(rows []models.Lead) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(utf8BOM)

	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("writing csv header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			row.Name,
			row.Segment,
			row.Category,
			row.State,
			row.City,
			row.Neighborhood,
			row.Phone,
			row.Website,
			strconv.FormatFloat(row.Rating, 'f', 1, 64),
			strconv.Itoa(row.ReviewCount),
			row.Address,
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("writing csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing csv: %w", err)
	}
	return buf.Bytes(), nil
}

// ObjectName derives the artifact's storage key from the order reference.
func ObjectName(prefix, reference string) string {
	if prefix == "" {
		prefix = "exports"
	}
	return fmt.Sprintf("%s/%s.csv", prefix, reference)
}
