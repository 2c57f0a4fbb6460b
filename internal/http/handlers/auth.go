package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/geocoder89/learnhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

type AccountService interface {
	Signup(ctx context.Context, req user.SignupRequest) (user.User, error)
	Login(ctx context.Context, req user.LoginRequest) (string, user.User, error)
}

type AuthHandler struct {
	accounts AccountService
	log      *slog.Logger
}

func NewAuthHandler(accounts AccountService, log *slog.Logger) *AuthHandler {
	return &AuthHandler{accounts: accounts, log: log}
}

// POST /api/signup
func (h *AuthHandler) SignUp(ctx *gin.Context) {
	var req user.SignupRequest

	if !BindJSON(ctx, &req) {
		return
	}

	u, err := h.accounts.Signup(ctx.Request.Context(), req)
	if err != nil {
		RespondDomainError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully",
		"user":    u.Summary(),
	})
}

// POST /api/login
func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	token, u, err := h.accounts.Login(ctx.Request.Context(), req)
	if err != nil {
		RespondDomainError(ctx, h.log, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    u.Summary(),
	})
}
