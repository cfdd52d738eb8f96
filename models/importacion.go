package models

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/conjuntopoblado/registro_backend/config"
	"github.com/conjuntopoblado/registro_backend/utils"
	"gorm.io/gorm"
)

// Synonym table for headers coming out of form-collection tools (Google
// Forms exports in particular). Keys are lowercased/trimmed raw headers.
var sinonimosEncabezado = map[string]string{
	"nombre":                "nombrePropietario",
	"nombre completo":       "nombrePropietario",
	"nombre del propietario": "nombrePropietario",
	"correo":                "correo",
	"correo electrónico":    "correo",
	"correo electronico":    "correo",
	"email":                 "correo",
	"cédula":                "cedula",
	"cedula":                "cedula",
	"cc":                    "cedula",
	"documento":             "cedula",
	"torre":                 "torre",
	"apartamento":           "apartamento",
	"apto":                  "apartamento",
	"apt":                   "apartamento",
	"cantidad de carros":    "cantidadCarros",
	"cantidad carros":       "cantidadCarros",
	"carros":                "cantidadCarros",
	"cantidad de motos":     "cantidadMotos",
	"cantidad motos":        "cantidadMotos",
	"motos":                 "cantidadMotos",
	"placa carro":           "placaCarro",
	"placa del carro":       "placaCarro",
	"placa vehiculo":        "placaCarro",
	"placa moto":            "placaMoto",
	"placa de la moto":      "placaMoto",
	"placa motocicleta":     "placaMoto",
}

// MapearEncabezado maps a raw CSV header to its canonical field name.
// Unknown headers pass through lowercased and are ignored downstream.
func MapearEncabezado(header string) string {
	normalized := strings.ToLower(strings.TrimSpace(header))
	if canonical, ok := sinonimosEncabezado[normalized]; ok {
		return canonical
	}
	return normalized
}

type ErrorFila struct {
	Fila  int    `json:"fila"`
	Error string `json:"error"`
}

type ErrorBD struct {
	Cedula string `json:"cedula"`
	Nombre string `json:"nombre"`
	Error  string `json:"error"`
}

type ResumenImportacion struct {
	Ok                bool        `json:"ok"`
	Insertados        int         `json:"insertados"`
	Actualizados      int         `json:"actualizados"`
	Total             int         `json:"total"`
	ErroresValidacion []ErrorFila `json:"erroresValidacion"`
	ErroresDB         []ErrorBD   `json:"erroresDB"`
}

// registroCSV is one candidate record built from a CSV row. Imported rows
// never carry arrears: moroso/deudaMoroso stay at their defaults and an
// update leaves the existing arrears state untouched.
type registroCSV struct {
	NombrePropietario string
	Correo            string
	Cedula            string
	Torre             string
	Apartamento       string
	CantidadCarros    int
	CantidadMotos     int
	PlacaCarro        *string
	PlacaMoto         *string
}

func procesarFila(fila map[string]string) registroCSV {
	return registroCSV{
		NombrePropietario: strings.TrimSpace(fila["nombrePropietario"]),
		Correo:            strings.TrimSpace(fila["correo"]),
		Cedula:            strings.TrimSpace(fila["cedula"]),
		Torre:             strings.TrimSpace(fila["torre"]),
		Apartamento:       strings.TrimSpace(fila["apartamento"]),
		CantidadCarros:    utils.NonNegative(utils.ToInt(fila["cantidadCarros"], 0)),
		CantidadMotos:     utils.NonNegative(utils.ToInt(fila["cantidadMotos"], 0)),
		PlacaCarro:        utils.CleanPlate(fila["placaCarro"]),
		PlacaMoto:         utils.CleanPlate(fila["placaMoto"]),
	}
}

// sniffDelimiter picks ';' when the header line looks semicolon-delimited.
// Form tools on es-CO locales export either style.
func sniffDelimiter(content string) rune {
	head := content
	if i := strings.IndexAny(head, "\r\n"); i >= 0 {
		head = head[:i]
	}
	if strings.Contains(head, ";") && !strings.Contains(head, ",") {
		return ';'
	}
	return ','
}

// ImportarCSV bulk-upserts propietarios from an uploaded CSV. Row failures
// never abort the batch: invalid rows are collected as validation errors
// (numbered 1-indexed plus header row) and per-row database failures as DB
// errors, while the remaining rows keep processing. Only an unreadable or
// empty file aborts the import as a whole.
func ImportarCSV(ctx context.Context, r io.Reader) (*ResumenImportacion, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, &utils.ImportError{Message: "Error al leer el archivo CSV", Detail: err.Error()}
	}

	content := strings.TrimPrefix(string(raw), "\ufeff")
	if strings.TrimSpace(content) == "" {
		return nil, &utils.ImportError{Message: "El archivo CSV está vacío"}
	}

	reader := csv.NewReader(strings.NewReader(content))
	reader.Comma = sniffDelimiter(content)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	lines, err := reader.ReadAll()
	if err != nil {
		return nil, &utils.ImportError{
			Message: "Error al parsear el CSV. Verifica que el archivo esté correctamente formateado.",
			Detail:  err.Error(),
		}
	}
	if len(lines) < 2 {
		return nil, &utils.ImportError{Message: "El archivo CSV está vacío"}
	}

	encabezados := make([]string, len(lines[0]))
	for i, h := range lines[0] {
		encabezados[i] = MapearEncabezado(h)
	}

	resumen := &ResumenImportacion{
		Ok:                true,
		ErroresValidacion: []ErrorFila{},
		ErroresDB:         []ErrorBD{},
	}

	for i, line := range lines[1:] {
		// 1-indexed data rows plus the header row
		numFila := i + 2

		fila := make(map[string]string, len(encabezados))
		for col, value := range line {
			if col < len(encabezados) {
				fila[encabezados[col]] = value
			}
		}

		registro := procesarFila(fila)

		if registro.NombrePropietario == "" || registro.Correo == "" || registro.Cedula == "" {
			resumen.ErroresValidacion = append(resumen.ErroresValidacion, ErrorFila{
				Fila:  numFila,
				Error: "Faltan campos obligatorios (nombre, correo o cédula)",
			})
			continue
		}
		if registro.Torre == "" || registro.Apartamento == "" {
			resumen.ErroresValidacion = append(resumen.ErroresValidacion, ErrorFila{
				Fila:  numFila,
				Error: "Faltan torre o apartamento",
			})
			continue
		}

		updated, err := upsertRegistro(ctx, registro)
		if err != nil {
			resumen.ErroresDB = append(resumen.ErroresDB, ErrorBD{
				Cedula: registro.Cedula,
				Nombre: registro.NombrePropietario,
				Error:  err.Error(),
			})
			continue
		}
		if updated {
			resumen.Actualizados++
		} else {
			resumen.Insertados++
		}
	}

	resumen.Total = resumen.Insertados + resumen.Actualizados
	return resumen, nil
}

// upsertRegistro writes one row and its audit entry in a single transaction.
// Updates match by cedula and leave cedula, arrears state and createdAt
// untouched.
func upsertRegistro(ctx context.Context, registro registroCSV) (updated bool, err error) {
	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing Propietario
		lookupErr := tx.Where("cedula = ?", registro.Cedula).First(&existing).Error
		if lookupErr != nil && !errors.Is(lookupErr, gorm.ErrRecordNotFound) {
			return lookupErr
		}

		if lookupErr == nil {
			updated = true
			before := existing

			after := existing
			after.NombrePropietario = registro.NombrePropietario
			after.Correo = registro.Correo
			after.Torre = registro.Torre
			after.Apartamento = registro.Apartamento
			after.CantidadCarros = registro.CantidadCarros
			after.CantidadMotos = registro.CantidadMotos
			after.PlacaCarro = registro.PlacaCarro
			after.PlacaMoto = registro.PlacaMoto

			updates := map[string]interface{}{
				"NombrePropietario": after.NombrePropietario,
				"Correo":            after.Correo,
				"Torre":             after.Torre,
				"Apartamento":       after.Apartamento,
				"CantidadCarros":    after.CantidadCarros,
				"CantidadMotos":     after.CantidadMotos,
				"PlacaCarro":        after.PlacaCarro,
				"PlacaMoto":         after.PlacaMoto,
			}
			if err := tx.Model(&Propietario{}).Where("id = ?", existing.ID).Updates(updates).Error; err != nil {
				return err
			}
			return crearHistorial(tx, AccionActualizadoCSV, existing.Cedula, existing.ID, &before, &after)
		}

		nuevo := Propietario{
			NombrePropietario: registro.NombrePropietario,
			Correo:            registro.Correo,
			Cedula:            registro.Cedula,
			Torre:             registro.Torre,
			Apartamento:       registro.Apartamento,
			CantidadCarros:    registro.CantidadCarros,
			CantidadMotos:     registro.CantidadMotos,
			PlacaCarro:        registro.PlacaCarro,
			PlacaMoto:         registro.PlacaMoto,
		}
		if err := tx.Create(&nuevo).Error; err != nil {
			return err
		}
		return crearHistorial(tx, AccionCreadoCSV, nuevo.Cedula, nuevo.ID, nil, &nuevo)
	})
	return updated, err
}
