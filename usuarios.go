package main

import (
	"net/http"
	"strconv"

	"github.com/conjuntopoblado/registro_backend/models"
	"github.com/gin-gonic/gin"
)

func listUsuariosHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		usuarios, err := models.ListUsuarios(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, usuarios)
	}
}

func createUsuarioHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewUsuario
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Usuario y contraseña requeridos"})
			return
		}

		usuario, err := models.CreateUsuario(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": usuario.ID, "usuario": usuario.Usuario, "rol": usuario.Rol})
	}
}

func updateUsuarioHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "No encontrado."})
			return
		}

		var input models.UpdateUsuarioInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Datos inválidos"})
			return
		}

		if _, err := models.UpdateUsuario(c.Request.Context(), id, &input); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

func deleteUsuarioHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "No encontrado."})
			return
		}

		if err := models.DeleteUsuario(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
