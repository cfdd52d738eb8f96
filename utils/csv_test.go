package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCsvEscape(t *testing.T) {
	assert.Equal(t, "plain", CsvEscape("plain"))
	assert.Equal(t, `"a;b"`, CsvEscape("a;b"))
	assert.Equal(t, `"a,b"`, CsvEscape("a,b"))
	assert.Equal(t, "\"a\nb\"", CsvEscape("a\nb"))
	assert.Equal(t, `"di""jo"`, CsvEscape(`di"jo`))
	assert.Equal(t, "", CsvEscape(""))
}

func TestToCsv(t *testing.T) {
	got := ToCsv(
		[]string{"id", "nombre"},
		[][]string{
			{"1", "Ana Ruiz"},
			{"2", "Torre; Apto"},
		},
	)
	want := "id;nombre\n1;Ana Ruiz\n2;\"Torre; Apto\""
	assert.Equal(t, want, got)
}

func TestToCsv_NoRows(t *testing.T) {
	assert.Equal(t, "id;nombre", ToCsv([]string{"id", "nombre"}, nil))
}
