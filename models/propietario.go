package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/conjuntopoblado/registro_backend/config"
	"github.com/conjuntopoblado/registro_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Propietario is an owner/resident record. The cedula is the natural key:
// uniqueness is enforced by the index, and the CSV importer upserts by it.
type Propietario struct {
	ID                int             `gorm:"primary_key" json:"id"`
	NombrePropietario string          `gorm:"size:200;not null" json:"nombrePropietario"`
	Correo            string          `gorm:"size:200;not null" json:"correo"`
	Cedula            string          `gorm:"size:30;not null;uniqueIndex" json:"cedula"`
	Torre             string          `gorm:"size:50;not null" json:"torre"`
	Apartamento       string          `gorm:"size:50;not null" json:"apartamento"`
	CantidadCarros    int             `gorm:"not null;default:0" json:"cantidadCarros"`
	CantidadMotos     int             `gorm:"not null;default:0" json:"cantidadMotos"`
	PlacaCarro        *string         `gorm:"size:20;index" json:"placaCarro"`
	PlacaMoto         *string         `gorm:"size:20;index" json:"placaMoto"`
	Moroso            bool            `gorm:"not null;default:false;index" json:"moroso"`
	DeudaMoroso       decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"deudaMoroso"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"createdAt"`
}

func (Propietario) TableName() string { return "propietarios" }

type NewPropietario struct {
	NombrePropietario string          `json:"nombrePropietario" binding:"required"`
	Correo            string          `json:"correo" binding:"required"`
	Cedula            string          `json:"cedula" binding:"required"`
	Torre             string          `json:"torre" binding:"required"`
	Apartamento       string          `json:"apartamento" binding:"required"`
	CantidadCarros    int             `json:"cantidadCarros"`
	CantidadMotos     int             `json:"cantidadMotos"`
	PlacaCarro        string          `json:"placaCarro"`
	PlacaMoto         string          `json:"placaMoto"`
	Moroso            bool            `json:"moroso"`
	DeudaMoroso       decimal.Decimal `json:"deudaMoroso"`
}

// validate covers both create & update: required fields, email shape and
// the arrears invariant (moroso implies deuda > 0).
func (input *NewPropietario) validate() error {
	if strings.TrimSpace(input.NombrePropietario) == "" ||
		strings.TrimSpace(input.Correo) == "" ||
		strings.TrimSpace(input.Cedula) == "" ||
		strings.TrimSpace(input.Torre) == "" ||
		strings.TrimSpace(input.Apartamento) == "" {
		return utils.NewValidationError("Faltan campos obligatorios.")
	}
	if !utils.IsEmail(input.Correo) {
		return utils.NewValidationError("Correo inválido.")
	}
	if input.Moroso && !input.deuda().IsPositive() {
		return utils.NewValidationError("Si está moroso, debes ingresar cuánto debe (mayor a 0).")
	}
	return nil
}

func (input *NewPropietario) deuda() decimal.Decimal {
	if input.DeudaMoroso.IsNegative() {
		return decimal.Zero
	}
	return input.DeudaMoroso
}

func (input *NewPropietario) model() Propietario {
	return Propietario{
		NombrePropietario: strings.TrimSpace(input.NombrePropietario),
		Correo:            strings.TrimSpace(input.Correo),
		Cedula:            strings.TrimSpace(input.Cedula),
		Torre:             strings.TrimSpace(input.Torre),
		Apartamento:       strings.TrimSpace(input.Apartamento),
		CantidadCarros:    utils.NonNegative(input.CantidadCarros),
		CantidadMotos:     utils.NonNegative(input.CantidadMotos),
		PlacaCarro:        utils.CleanPlate(input.PlacaCarro),
		PlacaMoto:         utils.CleanPlate(input.PlacaMoto),
		Moroso:            input.Moroso,
		DeudaMoroso:       input.deuda(),
	}
}

func CreatePropietario(ctx context.Context, input *NewPropietario) (*Propietario, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	propietario := input.model()

	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&propietario).Error; err != nil {
			return err
		}
		return crearHistorial(tx, AccionInsert, propietario.Cedula, propietario.ID, nil, &propietario)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, utils.NewConflictError("Ya existe un registro con esa cédula.")
		}
		return nil, err
	}
	return &propietario, nil
}

func UpdatePropietario(ctx context.Context, id int, input *NewPropietario) (*Propietario, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	db := config.GetDB()

	var after Propietario
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var before Propietario
		if err := tx.First(&before, id).Error; err != nil {
			return err
		}

		after = input.model()
		after.ID = before.ID
		after.CreatedAt = before.CreatedAt

		updates := map[string]interface{}{
			"NombrePropietario": after.NombrePropietario,
			"Correo":            after.Correo,
			"Cedula":            after.Cedula,
			"Torre":             after.Torre,
			"Apartamento":       after.Apartamento,
			"CantidadCarros":    after.CantidadCarros,
			"CantidadMotos":     after.CantidadMotos,
			"PlacaCarro":        after.PlacaCarro,
			"PlacaMoto":         after.PlacaMoto,
			"Moroso":            after.Moroso,
			"DeudaMoroso":       after.DeudaMoroso,
		}
		if err := tx.Model(&Propietario{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		return crearHistorial(tx, AccionUpdate, after.Cedula, id, &before, &after)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, utils.NewConflictError("Ya existe un registro con esa cédula.")
		}
		return nil, err
	}
	return &after, nil
}

func DeletePropietario(ctx context.Context, id int) (*Propietario, error) {
	db := config.GetDB()

	var before Propietario
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&before, id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&Propietario{}, id).Error; err != nil {
			return err
		}
		return crearHistorial(tx, AccionDelete, before.Cedula, id, &before, nil)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &before, nil
}

func GetPropietario(ctx context.Context, id int) (*Propietario, error) {
	var propietario Propietario
	db := config.GetDB()
	if err := db.WithContext(ctx).First(&propietario, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &propietario, nil
}

// ListPropietarios returns records newest first. q matches case-insensitively
// against name, email, cedula, tower, apartment and both plates; moroso
// filters by arrears state when non-nil.
func ListPropietarios(ctx context.Context, q string, moroso *bool) ([]Propietario, error) {
	db := config.GetDB()
	query := db.WithContext(ctx).Model(&Propietario{})

	q = strings.TrimSpace(q)
	if q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where(
			`LOWER(nombre_propietario) LIKE ? OR
			 LOWER(correo) LIKE ? OR
			 LOWER(cedula) LIKE ? OR
			 LOWER(torre) LIKE ? OR
			 LOWER(apartamento) LIKE ? OR
			 LOWER(placa_carro) LIKE ? OR
			 LOWER(placa_moto) LIKE ?`,
			like, like, like, like, like, like, like,
		)
	}
	if moroso != nil {
		query = query.Where("moroso = ?", *moroso)
	}

	var propietarios []Propietario
	if err := query.Order("id DESC").Find(&propietarios).Error; err != nil {
		return nil, err
	}
	return propietarios, nil
}
