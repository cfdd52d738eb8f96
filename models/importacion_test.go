package models_test

import (
	"strings"
	"testing"

	"github.com/conjuntopoblado/registro_backend/models"
	"github.com/conjuntopoblado/registro_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapearEncabezado(t *testing.T) {
	cases := map[string]string{
		"nombre":                 "nombrePropietario",
		"Nombre Completo":        "nombrePropietario",
		"NOMBRE DEL PROPIETARIO": "nombrePropietario",
		"Correo Electrónico":     "correo",
		"correo electronico":     "correo",
		"Email":                  "correo",
		"Cédula":                 "cedula",
		"cedula":                 "cedula",
		"CC":                     "cedula",
		"Documento":              "cedula",
		"Torre":                  "torre",
		"Apto":                   "apartamento",
		"apt":                    "apartamento",
		"Cantidad de Carros":     "cantidadCarros",
		"carros":                 "cantidadCarros",
		"Cantidad Motos":         "cantidadMotos",
		"Placa Carro":            "placaCarro",
		"placa vehiculo":         "placaCarro",
		"Placa de la Moto":       "placaMoto",
		"placa motocicleta":      "placaMoto",
		// unknown headers pass through lowercased, not as errors
		"Marca Temporal": "marca temporal",
	}

	for raw, want := range cases {
		assert.Equal(t, want, models.MapearEncabezado(raw), "header %q", raw)
	}
}

func TestImportarCSV_InsertsRecord(t *testing.T) {
	ctx := setupTestDB(t)

	csv := "nombre;correo;cedula;torre;apartamento\nAna Ruiz;ana@x.com;123;A;101"
	resumen, err := models.ImportarCSV(ctx, strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 1, resumen.Insertados)
	assert.Equal(t, 0, resumen.Actualizados)
	assert.Equal(t, 1, resumen.Total)
	assert.Empty(t, resumen.ErroresValidacion)
	assert.Empty(t, resumen.ErroresDB)

	records, err := models.ListPropietarios(ctx, "", nil)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Ana Ruiz", records[0].NombrePropietario)
	assert.Equal(t, "123", records[0].Cedula)
	assert.Equal(t, 0, records[0].CantidadCarros)
	assert.False(t, records[0].Moroso)

	entries, err := models.ListHistorial(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.AccionCreadoCSV, entries[0].Accion)
	assert.Nil(t, entries[0].DatosAntes)
}

func TestImportarCSV_HeaderSynonymsAndCommaDelimiter(t *testing.T) {
	ctx := setupTestDB(t)

	csv := "Nombre Completo,Email,CC,Torre,Apto,Carros,Placa Carro\n" +
		"Pedro Mora,pedro@x.com,900,B,502,2,abc 123\n"
	resumen, err := models.ImportarCSV(ctx, strings.NewReader(csv))
	require.NoError(t, err)
	require.Equal(t, 1, resumen.Insertados)

	records, err := models.ListPropietarios(ctx, "", nil)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Pedro Mora", records[0].NombrePropietario)
	assert.Equal(t, 2, records[0].CantidadCarros)
	require.NotNil(t, records[0].PlacaCarro)
	assert.Equal(t, "ABC123", *records[0].PlacaCarro)
}

func TestImportarCSV_RowErrorsDoNotAbortBatch(t *testing.T) {
	ctx := setupTestDB(t)

	// rows 3 and 5 are invalid: missing cedula and missing torre
	csv := strings.Join([]string{
		"nombre;correo;cedula;torre;apartamento",
		"Uno;uno@x.com;101;A;101",
		"Dos;dos@x.com;;A;102",
		"Tres;tres@x.com;103;A;103",
		"Cuatro;cuatro@x.com;104;;104",
	}, "\n")

	resumen, err := models.ImportarCSV(ctx, strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 2, resumen.Insertados)
	assert.Equal(t, 2, resumen.Total)
	require.Len(t, resumen.ErroresValidacion, 2)
	assert.Equal(t, 3, resumen.ErroresValidacion[0].Fila)
	assert.Contains(t, resumen.ErroresValidacion[0].Error, "cédula")
	assert.Equal(t, 5, resumen.ErroresValidacion[1].Fila)
	assert.Contains(t, resumen.ErroresValidacion[1].Error, "torre")
}

func TestImportarCSV_IdempotentUpsert(t *testing.T) {
	ctx := setupTestDB(t)

	csv := strings.Join([]string{
		"nombre;correo;cedula;torre;apartamento",
		"Uno;uno@x.com;201;A;101",
		"Dos;dos@x.com;202;B;202",
	}, "\n")

	first, err := models.ImportarCSV(ctx, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, first.Insertados)
	assert.Equal(t, 0, first.Actualizados)

	second, err := models.ImportarCSV(ctx, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 0, second.Insertados)
	assert.Equal(t, 2, second.Actualizados)

	records, err := models.ListPropietarios(ctx, "", nil)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestImportarCSV_PreservesArrearsOnUpdate(t *testing.T) {
	ctx := setupTestDB(t)

	input := &models.NewPropietario{
		NombrePropietario: "Marta León",
		Correo:            "marta@x.com",
		Cedula:            "301",
		Torre:             "C",
		Apartamento:       "303",
		Moroso:            true,
		DeudaMoroso:       decimal.NewFromInt(120000),
	}
	created, err := models.CreatePropietario(ctx, input)
	require.NoError(t, err)

	csv := "nombre;correo;cedula;torre;apartamento\nMarta Leon Actualizada;marta@x.com;301;C;304"
	resumen, err := models.ImportarCSV(ctx, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, resumen.Actualizados)

	got, err := models.GetPropietario(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Marta Leon Actualizada", got.NombrePropietario)
	assert.Equal(t, "304", got.Apartamento)
	assert.True(t, got.Moroso, "import must not reset arrears")
	assert.True(t, got.DeudaMoroso.Equal(decimal.NewFromInt(120000)))
	assert.Equal(t, "301", got.Cedula)

	entries, err := models.ListHistorial(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.AccionActualizadoCSV, entries[0].Accion)
	require.NotNil(t, entries[0].DatosAntes)
	require.NotNil(t, entries[0].DatosDespues)
}

func TestImportarCSV_FileLevelErrors(t *testing.T) {
	ctx := setupTestDB(t)

	var importErr *utils.ImportError

	_, err := models.ImportarCSV(ctx, strings.NewReader(""))
	require.ErrorAs(t, err, &importErr)

	_, err = models.ImportarCSV(ctx, strings.NewReader("nombre;correo;cedula;torre;apartamento\n"))
	require.ErrorAs(t, err, &importErr)
}

func TestImportarCSV_BOMTolerated(t *testing.T) {
	ctx := setupTestDB(t)

	csv := "\uFEFFnombre;correo;cedula;torre;apartamento\nAna;ana@x.com;401;A;101"
	resumen, err := models.ImportarCSV(ctx, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, resumen.Insertados)
}
