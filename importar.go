package main

import (
	"net/http"

	"github.com/conjuntopoblado/registro_backend/config"
	"github.com/conjuntopoblado/registro_backend/models"
	"github.com/gin-gonic/gin"
)

const maxImportSizeBytes int64 = 5 * 1024 * 1024

// importarCSVHandler receives a multipart upload (field csvFile) and runs
// the bulk upsert. Row-level failures come back in the summary; only a
// missing, oversized or unparsable file fails the request.
func importarCSVHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()

		fileHeader, err := c.FormFile("csvFile")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "No se recibió ningún archivo"})
			return
		}
		if fileHeader.Size > maxImportSizeBytes {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "El archivo supera el límite de 5MB"})
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			config.LogError(logger, "importar.go", "importarCSVHandler", "Open upload", fileHeader.Filename, err)
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "Error al procesar el archivo CSV", "detail": err.Error()})
			return
		}
		defer file.Close()

		resumen, err := models.ImportarCSV(c.Request.Context(), file)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, resumen)
	}
}
