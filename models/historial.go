package models

import (
	"context"
	"encoding/json"
	"time"

	"github.com/conjuntopoblado/registro_backend/config"
	"github.com/conjuntopoblado/registro_backend/utils"
	"gorm.io/gorm"
)

// Historial is the append-only audit trail. Rows are created once per
// mutation and never updated or deleted.
type Historial struct {
	ID            int       `gorm:"primary_key" json:"id"`
	Accion        string    `gorm:"size:20;not null;index" json:"accion"`
	Cedula        string    `gorm:"size:30;index" json:"cedula"`
	IdPropietario *int      `json:"idPropietario"`
	DatosAntes    *string   `gorm:"type:text" json:"datosAntes"`
	DatosDespues  *string   `gorm:"type:text" json:"datosDespues"`
	Usuario       string    `gorm:"size:100" json:"usuario"`
	Fecha         time.Time `gorm:"autoCreateTime;index" json:"fecha"`
}

func (Historial) TableName() string { return "historial_movimientos" }

// crearHistorial appends one audit row on the caller's transaction handle so
// the mutation and its trail commit or roll back together. A nil antes means
// the record did not exist before; a nil despues means it no longer does.
func crearHistorial(tx *gorm.DB, accion string, cedula string, idPropietario int, antes *Propietario, despues *Propietario) error {
	// who did it comes from the request principal
	usuario, _ := utils.GetUsuarioFromContext(tx.Statement.Context)

	h := Historial{
		Accion:  accion,
		Cedula:  cedula,
		Usuario: usuario,
	}
	if idPropietario > 0 {
		h.IdPropietario = &idPropietario
	}
	if antes != nil {
		b, err := json.Marshal(antes)
		if err != nil {
			return err
		}
		s := string(b)
		h.DatosAntes = &s
	}
	if despues != nil {
		b, err := json.Marshal(despues)
		if err != nil {
			return err
		}
		s := string(b)
		h.DatosDespues = &s
	}
	return tx.Create(&h).Error
}

// ListHistorial returns audit entries newest first. limit <= 0 returns all.
func ListHistorial(ctx context.Context, limit int) ([]Historial, error) {
	var entries []Historial
	db := config.GetDB()
	q := db.WithContext(ctx).Order("fecha DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
