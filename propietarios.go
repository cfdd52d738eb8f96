package main

import (
	"net/http"
	"strconv"

	"github.com/conjuntopoblado/registro_backend/models"
	"github.com/gin-gonic/gin"
)

func createPropietarioHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewPropietario
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Faltan campos obligatorios."})
			return
		}

		propietario, err := models.CreatePropietario(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": propietario.ID})
	}
}

func listPropietariosHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		q := c.Query("q")

		var moroso *bool
		switch c.Query("moroso") {
		case "1":
			v := true
			moroso = &v
		case "0":
			v := false
			moroso = &v
		}

		propietarios, err := models.ListPropietarios(c.Request.Context(), q, moroso)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, propietarios)
	}
}

func getPropietarioHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "No encontrado."})
			return
		}

		propietario, err := models.GetPropietario(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, propietario)
	}
}

func updatePropietarioHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "No encontrado."})
			return
		}

		var input models.NewPropietario
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Faltan campos obligatorios."})
			return
		}

		if _, err := models.UpdatePropietario(c.Request.Context(), id, &input); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

func deletePropietarioHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "No encontrado."})
			return
		}

		if _, err := models.DeletePropietario(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

func listHistorialHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 0
		if raw := c.Query("limit"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 {
				limit = n
			}
		}

		entries, err := models.ListHistorial(c.Request.Context(), limit)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, entries)
	}
}
