package api

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stadiumfit/scorecard/internal/report"
	"github.com/stadiumfit/scorecard/pkg/entity"
)

type JWTServiceI interface {
	GenerateToken(user *entity.User) (string, error)
	ParseToken(tokenString string) (*JWTClaims, error)
}

type JWTClaims struct {
	jwt.RegisteredClaims
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type ReportServiceI interface {
	Send(ctx context.Context, to, format string, data *entity.ReportData) (*report.SendResult, error)
}
