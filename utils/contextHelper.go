package utils

import (
	"context"

	"github.com/conjuntopoblado/registro_backend/appctx"
)

var (
	ContextKeyToken     = appctx.ContextKeyToken
	ContextKeyUserId    = appctx.ContextKeyUserId
	ContextKeyUsuario   = appctx.ContextKeyUsuario
	ContextKeyRol       = appctx.ContextKeyRol
	ContextKeyRequestId = appctx.ContextKeyRequestId
)

func GetTokenFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyToken)
}

func GetUserIdFromContext(ctx context.Context) (int, bool) {
	return appctx.GetInt(ctx, ContextKeyUserId)
}

func GetUsuarioFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyUsuario)
}

func GetRolFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyRol)
}

func GetRequestIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyRequestId)
}

func SetTokenInContext(ctx context.Context, token string) context.Context {
	return appctx.Set(ctx, ContextKeyToken, token)
}

func SetUserIdInContext(ctx context.Context, userId int) context.Context {
	return appctx.Set(ctx, ContextKeyUserId, userId)
}

func SetUsuarioInContext(ctx context.Context, usuario string) context.Context {
	return appctx.Set(ctx, ContextKeyUsuario, usuario)
}

func SetRolInContext(ctx context.Context, rol string) context.Context {
	return appctx.Set(ctx, ContextKeyRol, rol)
}

func SetRequestIdInContext(ctx context.Context, requestId string) context.Context {
	return appctx.Set(ctx, ContextKeyRequestId, requestId)
}
