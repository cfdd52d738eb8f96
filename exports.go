package main

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/conjuntopoblado/registro_backend/config"
	"github.com/conjuntopoblado/registro_backend/models"
	"github.com/conjuntopoblado/registro_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

const exportTimeLayout = "2006-01-02 15:04:05"

var propietarioColumns = []string{
	"id",
	"nombrePropietario",
	"correo",
	"cedula",
	"torre",
	"apartamento",
	"cantidadCarros",
	"cantidadMotos",
	"placaCarro",
	"placaMoto",
	"moroso",
	"deudaMoroso",
	"createdAt",
}

func propietarioRow(p models.Propietario) []string {
	return []string{
		strconv.Itoa(p.ID),
		p.NombrePropietario,
		p.Correo,
		p.Cedula,
		p.Torre,
		p.Apartamento,
		strconv.Itoa(p.CantidadCarros),
		strconv.Itoa(p.CantidadMotos),
		derefString(p.PlacaCarro),
		derefString(p.PlacaMoto),
		boolTo01(p.Moroso),
		p.DeudaMoroso.String(),
		p.CreatedAt.Format(exportTimeLayout),
	}
}

func exportPropietariosCSVHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		propietarios, err := models.ListPropietarios(c.Request.Context(), "", nil)
		if err != nil {
			respondError(c, err)
			return
		}

		rows := make([][]string, 0, len(propietarios))
		for _, p := range propietarios {
			rows = append(rows, propietarioRow(p))
		}

		sendCSV(c, "propietarios", utils.ToCsv(propietarioColumns, rows))
	}
}

func exportHistorialCSVHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := models.ListHistorial(c.Request.Context(), 0)
		if err != nil {
			respondError(c, err)
			return
		}

		columns := []string{"id", "accion", "cedula", "idPropietario", "datos_antes", "datos_despues", "usuario", "fecha"}
		rows := make([][]string, 0, len(entries))
		for _, h := range entries {
			idPropietario := ""
			if h.IdPropietario != nil {
				idPropietario = strconv.Itoa(*h.IdPropietario)
			}
			rows = append(rows, []string{
				strconv.Itoa(h.ID),
				h.Accion,
				h.Cedula,
				idPropietario,
				derefString(h.DatosAntes),
				derefString(h.DatosDespues),
				h.Usuario,
				h.Fecha.Format(exportTimeLayout),
			})
		}

		sendCSV(c, "historial", utils.ToCsv(columns, rows))
	}
}

func exportPropietariosXLSXHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()

		propietarios, err := models.ListPropietarios(c.Request.Context(), "", nil)
		if err != nil {
			respondError(c, err)
			return
		}

		f := excelize.NewFile()
		const sheet = "Sheet1"

		for col, name := range propietarioColumns {
			cell, _ := excelize.CoordinatesToCellName(col+1, 1)
			f.SetCellValue(sheet, cell, name)
		}
		for i, p := range propietarios {
			for col, value := range propietarioRow(p) {
				cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
				f.SetCellValue(sheet, cell, value)
			}
		}

		buf, err := f.WriteToBuffer()
		if err != nil {
			config.LogError(logger, "exports.go", "exportPropietariosXLSXHandler", "WriteToBuffer", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error exportando propietarios"})
			return
		}

		fileName := fmt.Sprintf("propietarios-%s.xlsx", utils.NowStamp())
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
	}
}

func sendCSV(c *gin.Context, prefix string, csv string) {
	fileName := fmt.Sprintf("%s-%s.csv", prefix, utils.NowStamp())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(csv))
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func boolTo01(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
