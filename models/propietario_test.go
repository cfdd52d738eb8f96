package models_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/conjuntopoblado/registro_backend/models"
	"github.com/conjuntopoblado/registro_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nuevoPropietario(cedula string) *models.NewPropietario {
	return &models.NewPropietario{
		NombrePropietario: "Ana Ruiz",
		Correo:            "ana@example.com",
		Cedula:            cedula,
		Torre:             "A",
		Apartamento:       "101",
	}
}

func TestCreatePropietario_NormalizesAndRoundTrips(t *testing.T) {
	ctx := setupTestDB(t)

	input := nuevoPropietario("1001")
	input.NombrePropietario = "  Ana Ruiz "
	input.CantidadCarros = 2
	input.PlacaCarro = "  abc 123 "
	input.PlacaMoto = "xyz 45"

	created, err := models.CreatePropietario(ctx, input)
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	got, err := models.GetPropietario(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, "Ana Ruiz", got.NombrePropietario)
	assert.Equal(t, "1001", got.Cedula)
	assert.Equal(t, 2, got.CantidadCarros)
	require.NotNil(t, got.PlacaCarro)
	assert.Equal(t, "ABC123", *got.PlacaCarro)
	require.NotNil(t, got.PlacaMoto)
	assert.Equal(t, "XYZ45", *got.PlacaMoto)
	assert.False(t, got.Moroso)
	assert.True(t, got.DeudaMoroso.IsZero())
	assert.False(t, got.CreatedAt.IsZero())

	// the creation leaves exactly one INSERT audit row with an after snapshot
	entries, err := models.ListHistorial(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.AccionInsert, entries[0].Accion)
	assert.Nil(t, entries[0].DatosAntes)
	require.NotNil(t, entries[0].DatosDespues)
}

func TestCreatePropietario_DuplicateCedulaConflicts(t *testing.T) {
	ctx := setupTestDB(t)

	_, err := models.CreatePropietario(ctx, nuevoPropietario("2002"))
	require.NoError(t, err)

	_, err = models.CreatePropietario(ctx, nuevoPropietario("2002"))
	var conflict *utils.ConflictError
	require.True(t, errors.As(err, &conflict), "expected ConflictError, got %v", err)
}

func TestCreatePropietario_Validation(t *testing.T) {
	ctx := setupTestDB(t)

	var validation *utils.ValidationError

	missing := nuevoPropietario("3003")
	missing.Torre = "   "
	_, err := models.CreatePropietario(ctx, missing)
	require.True(t, errors.As(err, &validation))

	badMail := nuevoPropietario("3003")
	badMail.Correo = "sin-arroba"
	_, err = models.CreatePropietario(ctx, badMail)
	require.True(t, errors.As(err, &validation))
}

func TestArrearsInvariant(t *testing.T) {
	ctx := setupTestDB(t)

	var validation *utils.ValidationError

	input := nuevoPropietario("4004")
	input.Moroso = true
	_, err := models.CreatePropietario(ctx, input)
	require.True(t, errors.As(err, &validation), "moroso with zero debt must be rejected")

	input.Moroso = true
	input.DeudaMoroso = decimal.NewFromInt(-50)
	_, err = models.CreatePropietario(ctx, input)
	require.True(t, errors.As(err, &validation))

	input.DeudaMoroso = decimal.NewFromInt(150000)
	created, err := models.CreatePropietario(ctx, input)
	require.NoError(t, err)

	// and the same rule on update
	update := nuevoPropietario("4004")
	update.Moroso = true
	update.DeudaMoroso = decimal.Zero
	_, err = models.UpdatePropietario(ctx, created.ID, update)
	require.True(t, errors.As(err, &validation))
}

func TestUpdatePropietario(t *testing.T) {
	ctx := setupTestDB(t)

	created, err := models.CreatePropietario(ctx, nuevoPropietario("5005"))
	require.NoError(t, err)

	update := nuevoPropietario("5005")
	update.NombrePropietario = "Ana María Ruiz"
	update.Moroso = true
	update.DeudaMoroso = decimal.NewFromInt(80000)

	updated, err := models.UpdatePropietario(ctx, created.ID, update)
	require.NoError(t, err)
	assert.Equal(t, "Ana María Ruiz", updated.NombrePropietario)
	assert.True(t, updated.Moroso)
	assert.True(t, updated.CreatedAt.Equal(created.CreatedAt), "createdAt must not change on update")

	entries, err := models.ListHistorial(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.AccionUpdate, entries[0].Accion)
	require.NotNil(t, entries[0].DatosAntes)
	require.NotNil(t, entries[0].DatosDespues)

	var antes models.Propietario
	require.NoError(t, json.Unmarshal([]byte(*entries[0].DatosAntes), &antes))
	assert.Equal(t, "Ana Ruiz", antes.NombrePropietario)
}

func TestUpdatePropietario_NotFoundAndConflict(t *testing.T) {
	ctx := setupTestDB(t)

	_, err := models.UpdatePropietario(ctx, 9999, nuevoPropietario("6006"))
	require.ErrorIs(t, err, utils.ErrorRecordNotFound)

	first, err := models.CreatePropietario(ctx, nuevoPropietario("6006"))
	require.NoError(t, err)
	_, err = models.CreatePropietario(ctx, nuevoPropietario("6007"))
	require.NoError(t, err)

	// renaming first onto the second record's cedula collides
	update := nuevoPropietario("6007")
	_, err = models.UpdatePropietario(ctx, first.ID, update)
	var conflict *utils.ConflictError
	require.True(t, errors.As(err, &conflict), "expected ConflictError, got %v", err)
}

func TestDeletePropietario(t *testing.T) {
	ctx := setupTestDB(t)

	created, err := models.CreatePropietario(ctx, nuevoPropietario("7007"))
	require.NoError(t, err)

	_, err = models.DeletePropietario(ctx, created.ID)
	require.NoError(t, err)

	_, err = models.GetPropietario(ctx, created.ID)
	require.ErrorIs(t, err, utils.ErrorRecordNotFound)

	listed, err := models.ListPropietarios(ctx, "", nil)
	require.NoError(t, err)
	assert.Empty(t, listed)

	entries, err := models.ListHistorial(ctx, 0)
	require.NoError(t, err)

	deletes := 0
	for _, h := range entries {
		if h.Accion == models.AccionDelete {
			deletes++
			require.NotNil(t, h.DatosAntes)
			assert.Nil(t, h.DatosDespues)

			var antes models.Propietario
			require.NoError(t, json.Unmarshal([]byte(*h.DatosAntes), &antes))
			assert.Equal(t, "7007", antes.Cedula)
		}
	}
	assert.Equal(t, 1, deletes, "exactly one DELETE audit row")

	_, err = models.DeletePropietario(ctx, created.ID)
	require.ErrorIs(t, err, utils.ErrorRecordNotFound)
}

func TestListPropietarios_Filters(t *testing.T) {
	ctx := setupTestDB(t)

	a := nuevoPropietario("8001")
	a.NombrePropietario = "Carlos Gómez"
	a.PlacaCarro = "JKL 789"
	_, err := models.CreatePropietario(ctx, a)
	require.NoError(t, err)

	b := nuevoPropietario("8002")
	b.NombrePropietario = "Lucía Pardo"
	b.Moroso = true
	b.DeudaMoroso = decimal.NewFromInt(20000)
	_, err = models.CreatePropietario(ctx, b)
	require.NoError(t, err)

	// newest first
	all, err := models.ListPropietarios(ctx, "", nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "8002", all[0].Cedula)

	// case-insensitive free text across fields, plates included
	byName, err := models.ListPropietarios(ctx, "carlos", nil)
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "8001", byName[0].Cedula)

	byPlate, err := models.ListPropietarios(ctx, "jkl", nil)
	require.NoError(t, err)
	require.Len(t, byPlate, 1)
	assert.Equal(t, "8001", byPlate[0].Cedula)

	moroso := true
	enMora, err := models.ListPropietarios(ctx, "", &moroso)
	require.NoError(t, err)
	require.Len(t, enMora, 1)
	assert.Equal(t, "8002", enMora[0].Cedula)

	moroso = false
	alDia, err := models.ListPropietarios(ctx, "", &moroso)
	require.NoError(t, err)
	require.Len(t, alDia, 1)
	assert.Equal(t, "8001", alDia[0].Cedula)
}
