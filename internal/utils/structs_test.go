package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type InnerRow struct {
	City *string `db:"city"`
	Zip  string  `db:"zip"`
}

type outerRow struct {
	ID int64 `db:"id"`
	InnerRow
	Skipped string `db:"-"`
	Untagged string
	secret  string `db:"secret"`
}

func TestStructTagValuesFlattensEmbedded(t *testing.T) {
	assert.Equal(t, []string{"id", "city", "zip"}, StructTagValues(outerRow{}))
	assert.Equal(t, []string{"id", "city", "zip"}, StructTagValues(&outerRow{}))
}

func TestStructToMapFlattensEmbedded(t *testing.T) {
	city := "Pune"
	row := outerRow{ID: 4, InnerRow: InnerRow{City: &city, Zip: "411001"}, Untagged: "x", secret: "y"}

	got := StructToMap(&row)

	assert.Equal(t, map[string]any{
		"id":   int64(4),
		"city": &city,
		"zip":  "411001",
	}, got)
}

func TestStructTagValuesPanicsOnNonStruct(t *testing.T) {
	assert.Panics(t, func() { StructTagValues(42) })
}

func TestNanoIDSize(t *testing.T) {
	id := NanoIDSize(12)
	assert.Len(t, id, 12)
	assert.Regexp(t, `^[0-9a-z]+$`, id)
	assert.Len(t, NanoIDSize(0), NanoidSize)
}
