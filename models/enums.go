package models

// Roles. Vigilante (gate staff) can read and export; admin owns every
// mutating operation.
const (
	RolAdmin     = "admin"
	RolVigilante = "vigilante"
)

// Historial actions. The CSV values match what the legacy system stored
// so old and new history exports read the same.
const (
	AccionInsert         = "INSERT"
	AccionUpdate         = "UPDATE"
	AccionDelete         = "DELETE"
	AccionCreadoCSV      = "CREADO_CSV"
	AccionActualizadoCSV = "ACTUALIZADO_CSV"
)
