// gestionar-usuarios is the operator CLI for staff accounts: create, list,
// delete and reset passwords without going through the web UI.
//
// Usage (from the backend directory):
//
//	go run ./cmd/gestionar-usuarios crear --usuario porteria --contrasena cambiar123 --rol vigilante
//	go run ./cmd/gestionar-usuarios listar
//	go run ./cmd/gestionar-usuarios eliminar --id 3
//	go run ./cmd/gestionar-usuarios reset-password --id 2 --contrasena nueva123
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/conjuntopoblado/registro_backend/config"
	"github.com/conjuntopoblado/registro_backend/models"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	godotenv.Load()

	root := &cobra.Command{
		Use:   "gestionar-usuarios",
		Short: "Administra las cuentas de usuario del registro",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.ConnectDatabaseWithRetry()
			models.MigrateTable()
		},
	}

	root.AddCommand(crearCmd(), listarCmd(), eliminarCmd(), resetPasswordCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func crearCmd() *cobra.Command {
	var usuario, contrasena, rol string

	cmd := &cobra.Command{
		Use:   "crear",
		Short: "Crea una cuenta nueva",
		RunE: func(cmd *cobra.Command, args []string) error {
			nuevo, err := models.CreateUsuario(context.Background(), &models.NewUsuario{
				Usuario:    usuario,
				Contrasena: contrasena,
				Rol:        rol,
			})
			if err != nil {
				return err
			}
			fmt.Printf("usuario creado: id=%d usuario=%s rol=%s\n", nuevo.ID, nuevo.Usuario, nuevo.Rol)
			return nil
		},
	}

	cmd.Flags().StringVar(&usuario, "usuario", "", "nombre de usuario")
	cmd.Flags().StringVar(&contrasena, "contrasena", "", "contraseña inicial")
	cmd.Flags().StringVar(&rol, "rol", models.RolVigilante, "admin o vigilante")
	cmd.MarkFlagRequired("usuario")
	cmd.MarkFlagRequired("contrasena")
	return cmd
}

func listarCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "listar",
		Short: "Lista las cuentas existentes",
		RunE: func(cmd *cobra.Command, args []string) error {
			usuarios, err := models.ListUsuarios(context.Background())
			if err != nil {
				return err
			}
			for _, u := range usuarios {
				activo := "inactivo"
				if u.Activo != nil && *u.Activo {
					activo = "activo"
				}
				fmt.Printf("%d\t%s\t%s\t%s\t%s\n", u.ID, u.Usuario, u.Rol, activo, u.CreatedAt.Format("2006-01-02"))
			}
			return nil
		},
	}
}

func eliminarCmd() *cobra.Command {
	var id int

	cmd := &cobra.Command{
		Use:   "eliminar",
		Short: "Elimina una cuenta",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := models.DeleteUsuario(context.Background(), id); err != nil {
				return err
			}
			fmt.Printf("usuario %d eliminado\n", id)
			return nil
		},
	}

	cmd.Flags().IntVar(&id, "id", 0, "id del usuario")
	cmd.MarkFlagRequired("id")
	return cmd
}

func resetPasswordCmd() *cobra.Command {
	var id int
	var contrasena string

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Asigna una contraseña nueva sin pedir la actual",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := models.UpdateUsuario(context.Background(), id, &models.UpdateUsuarioInput{
				Contrasena: contrasena,
			}); err != nil {
				return err
			}
			fmt.Printf("contraseña actualizada para el usuario %d\n", id)
			return nil
		},
	}

	cmd.Flags().IntVar(&id, "id", 0, "id del usuario")
	cmd.Flags().StringVar(&contrasena, "contrasena", "", "contraseña nueva")
	cmd.MarkFlagRequired("id")
	cmd.MarkFlagRequired("contrasena")
	return cmd
}
