package models

import (
	"log"

	"github.com/conjuntopoblado/registro_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Propietario{},
		&Historial{},
		&Usuario{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
