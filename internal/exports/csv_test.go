package exports

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diskleads/leadmarket-backend/pkg/db/models"
)

func TestMarshalCSV(t *testing.T) {
	rows := []models.Lead{
		{
			Name:         "Pizzaria Bella",
			Segment:      "Alimentação",
			Category:     "Pizzaria",
			State:        "SP",
			City:         "São Paulo",
			Neighborhood: "Moema",
			Phone:        "+55 11 99999-0000",
			Website:      "https://bella.com.br",
			Rating:       4.6,
			ReviewCount:  120,
			Address:      "Av. Ibirapuera, 100",
		},
		{
			Name:    "Oficina do Zé, Ltda",
			Segment: "Automotivo",
			Rating:  4,
		},
	}

	data, err := MarshalCSV(rows)
	require.NoError(t, err)

	require.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}), "missing utf-8 BOM")

	r := csv.NewReader(bytes.NewReader(data[3:]))
	records, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "nome", records[0][0])
	assert.Equal(t, "Pizzaria Bella", records[1][0])
	assert.Equal(t, "São Paulo", records[1][4])
	assert.Equal(t, "4.6", records[1][8])
	assert.Equal(t, "120", records[1][9])
	// comma inside a field survives the round trip
	assert.Equal(t, "Oficina do Zé, Ltda", records[2][0])
	assert.Equal(t, "4.0", records[2][8])
}

func TestMarshalCSVEmpty(t *testing.T) {
	data, err := MarshalCSV(nil)
	require.NoError(t, err)

	r := csv.NewReader(bytes.NewReader(data[3:]))
	records, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1, "header only")
}

func TestObjectName(t *testing.T) {
	assert.Equal(t, "exports/ord-1.csv", ObjectName("", "ord-1"))
	assert.Equal(t, "artifacts/ord-2.csv", ObjectName("artifacts", "ord-2"))
}
