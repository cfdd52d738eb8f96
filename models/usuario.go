package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/conjuntopoblado/registro_backend/config"
	"github.com/conjuntopoblado/registro_backend/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Usuario is a staff account. Passwords are stored as bcrypt hashes and
// never serialized.
type Usuario struct {
	ID         int       `gorm:"primary_key" json:"id"`
	Usuario    string    `gorm:"size:100;not null;uniqueIndex" json:"usuario"`
	Contrasena string    `gorm:"size:255;not null" json:"-"`
	Rol        string    `gorm:"size:20;not null;default:vigilante" json:"rol"`
	Activo     *bool     `gorm:"not null;default:true" json:"activo"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (Usuario) TableName() string { return "usuarios" }

type NewUsuario struct {
	Usuario    string `json:"usuario" binding:"required"`
	Contrasena string `json:"contrasena" binding:"required"`
	Rol        string `json:"rol"`
	Activo     *bool  `json:"activo"`
}

func (input *NewUsuario) validate() error {
	if len(strings.TrimSpace(input.Usuario)) < 3 {
		return utils.NewValidationError("El usuario debe tener al menos 3 caracteres")
	}
	if len(input.Contrasena) < 6 {
		return utils.NewValidationError("La contraseña debe tener al menos 6 caracteres")
	}
	if input.Rol != "" && input.Rol != RolAdmin && input.Rol != RolVigilante {
		return utils.NewValidationError("Rol inválido")
	}
	return nil
}

func CreateUsuario(ctx context.Context, input *NewUsuario) (*Usuario, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	hashed, err := utils.HashPassword(input.Contrasena)
	if err != nil {
		return nil, err
	}

	rol := input.Rol
	if rol == "" {
		rol = RolVigilante
	}
	activo := input.Activo
	if activo == nil {
		activo = utils.NewTrue()
	}

	usuario := Usuario{
		Usuario:    strings.TrimSpace(input.Usuario),
		Contrasena: string(hashed),
		Rol:        rol,
		Activo:     activo,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&usuario).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, utils.NewConflictError("Este usuario ya está en uso")
		}
		return nil, err
	}
	return &usuario, nil
}

type UpdateUsuarioInput struct {
	Usuario    string `json:"usuario"`
	Contrasena string `json:"contrasena"`
	Rol        string `json:"rol"`
	Activo     *bool  `json:"activo"`
}

// UpdateUsuario changes username, role, active flag and/or password. It
// refuses to demote or deactivate the last active admin.
func UpdateUsuario(ctx context.Context, id int, input *UpdateUsuarioInput) (*Usuario, error) {
	db := config.GetDB()

	var usuario Usuario
	if err := db.WithContext(ctx).First(&usuario, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}

	updates := map[string]interface{}{}

	if input.Usuario != "" {
		if len(strings.TrimSpace(input.Usuario)) < 3 {
			return nil, utils.NewValidationError("El usuario debe tener al menos 3 caracteres")
		}
		updates["Usuario"] = strings.TrimSpace(input.Usuario)
	}
	if input.Contrasena != "" {
		if len(input.Contrasena) < 6 {
			return nil, utils.NewValidationError("La contraseña debe tener al menos 6 caracteres")
		}
		hashed, err := utils.HashPassword(input.Contrasena)
		if err != nil {
			return nil, err
		}
		updates["Contrasena"] = string(hashed)
	}
	if input.Rol != "" {
		if input.Rol != RolAdmin && input.Rol != RolVigilante {
			return nil, utils.NewValidationError("Rol inválido")
		}
		updates["Rol"] = input.Rol
	}
	if input.Activo != nil {
		updates["Activo"] = *input.Activo
	}

	losesAdmin := usuario.Rol == RolAdmin &&
		((input.Rol != "" && input.Rol != RolAdmin) || (input.Activo != nil && !*input.Activo))
	if losesAdmin {
		admins, err := countActiveAdmins(ctx)
		if err != nil {
			return nil, err
		}
		if admins <= 1 {
			return nil, utils.NewValidationError("Debe quedar al menos un administrador activo")
		}
	}

	if len(updates) == 0 {
		return &usuario, nil
	}

	if err := db.WithContext(ctx).Model(&usuario).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, utils.NewConflictError("Este usuario ya está en uso")
		}
		return nil, err
	}
	return &usuario, nil
}

// DeleteUsuario removes an account. Self-deletion and removing the last
// active admin are rejected.
func DeleteUsuario(ctx context.Context, id int) error {
	if callerId, ok := utils.GetUserIdFromContext(ctx); ok && callerId == id {
		return utils.NewValidationError("No puedes eliminar tu propio usuario")
	}

	db := config.GetDB()

	var usuario Usuario
	if err := db.WithContext(ctx).First(&usuario, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorRecordNotFound
		}
		return err
	}

	if usuario.Rol == RolAdmin {
		admins, err := countActiveAdmins(ctx)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return utils.NewValidationError("Debe quedar al menos un administrador activo")
		}
	}

	return db.WithContext(ctx).Delete(&Usuario{}, id).Error
}

func ListUsuarios(ctx context.Context) ([]Usuario, error) {
	var usuarios []Usuario
	db := config.GetDB()
	if err := db.WithContext(ctx).Order("id ASC").Find(&usuarios).Error; err != nil {
		return nil, err
	}
	return usuarios, nil
}

func countActiveAdmins(ctx context.Context) (int64, error) {
	var count int64
	db := config.GetDB()
	err := db.WithContext(ctx).Model(&Usuario{}).
		Where("rol = ? AND activo = ?", RolAdmin, true).
		Count(&count).Error
	return count, err
}

// VerifyLogin checks credentials against active accounts. A nil result with
// a nil error means the credentials did not match.
func VerifyLogin(ctx context.Context, nombreUsuario string, contrasena string) (*Usuario, error) {
	var usuario Usuario
	db := config.GetDB()
	err := db.WithContext(ctx).
		Where("usuario = ? AND activo = ?", strings.TrimSpace(nombreUsuario), true).
		First(&usuario).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if err := utils.ComparePassword(usuario.Contrasena, contrasena); err != nil {
		return nil, nil
	}
	return &usuario, nil
}

func GetUsuario(ctx context.Context, id int) (*Usuario, error) {
	var usuario Usuario
	db := config.GetDB()
	if err := db.WithContext(ctx).First(&usuario, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &usuario, nil
}

// ChangePassword is the self-service flow: the current password must match.
func ChangePassword(ctx context.Context, id int, actual string, nueva string) error {
	if len(nueva) < 6 {
		return utils.NewValidationError("La contraseña debe tener al menos 6 caracteres")
	}

	usuario, err := GetUsuario(ctx, id)
	if err != nil {
		return err
	}
	if err := utils.ComparePassword(usuario.Contrasena, actual); err != nil {
		return utils.NewValidationError("Contraseña actual incorrecta")
	}

	hashed, err := utils.HashPassword(nueva)
	if err != nil {
		return err
	}

	db := config.GetDB()
	return db.WithContext(ctx).Model(&Usuario{}).Where("id = ?", id).
		Update("Contrasena", string(hashed)).Error
}

func ChangeUsername(ctx context.Context, id int, nuevo string) error {
	nuevo = strings.TrimSpace(nuevo)
	if len(nuevo) < 3 {
		return utils.NewValidationError("El usuario debe tener al menos 3 caracteres")
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Model(&Usuario{}).Where("id = ?", id).
		Update("Usuario", nuevo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return utils.NewConflictError("Este usuario ya está en uso")
		}
		return err
	}
	return nil
}

// EnsureDefaultUsers seeds the admin and vigilante accounts on first boot.
func EnsureDefaultUsers(ctx context.Context) {
	logger := config.GetLogger()

	defaults := []NewUsuario{
		{Usuario: "admin", Contrasena: "admin123", Rol: RolAdmin},
		{Usuario: "vigilante", Contrasena: "vigilante123", Rol: RolVigilante},
	}

	seeded := false
	db := config.GetDB()
	for _, def := range defaults {
		var count int64
		if err := db.WithContext(ctx).Model(&Usuario{}).Where("usuario = ?", def.Usuario).Count(&count).Error; err != nil {
			config.LogError(logger, "usuario.go", "EnsureDefaultUsers", "count "+def.Usuario, nil, err)
			continue
		}
		if count > 0 {
			continue
		}
		input := def
		if _, err := CreateUsuario(ctx, &input); err != nil {
			config.LogError(logger, "usuario.go", "EnsureDefaultUsers", "create "+def.Usuario, nil, err)
			continue
		}
		seeded = true
		logger.WithFields(logrus.Fields{"usuario": def.Usuario, "rol": def.Rol}).Info("usuario por defecto creado")
	}
	if seeded {
		logger.Warn("cambia las contraseñas por defecto en producción")
	}
}
