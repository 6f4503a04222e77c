package auth

import (
	"context"
	"errors"
)

type ctxKey int

const (
	ctxUserID ctxKey = iota
	ctxTaxpayerPIN
	ctxRole
)

func WithIdentity(ctx context.Context, userID, taxpayerPIN, role string) context.Context {
	ctx = context.WithValue(ctx, ctxUserID, userID)
	ctx = context.WithValue(ctx, ctxTaxpayerPIN, taxpayerPIN)
	ctx = context.WithValue(ctx, ctxRole, role)
	return ctx
}

func UserID(ctx context.Context) (string, error) {
	v := ctx.Value(ctxUserID)
	if s, ok := v.(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("user_id not in context")
}

func TaxpayerPIN(ctx context.Context) (string, error) {
	v := ctx.Value(ctxTaxpayerPIN)
	if s, ok := v.(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("taxpayer_pin not in context")
}

func Role(ctx context.Context) (string, error) {
	v := ctx.Value(ctxRole)
	if s, ok := v.(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("role not in context")
}
