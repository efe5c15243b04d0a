package models

import "github.com/camarpe/camarpe-backend/internal/types"

// ============================================
// Auth DTOs
// ============================================

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"senha" binding:"required"`
}

type ChangePasswordRequest struct {
	Current string `json:"senhaAtual" binding:"required"`
	Next    string `json:"novaSenha" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"senha" binding:"required,min=6"`
}

type SessionUser struct {
	ID    string     `json:"id"`
	Name  string     `json:"nome"`
	Email string     `json:"email"`
	Role  types.Role `json:"role"`
}

type AuthResponse struct {
	User  SessionUser `json:"user"`
	Token string      `json:"token"`
}

// ============================================
// Workflow DTOs
// ============================================

type StatusRequest struct {
	Status types.ProductionStatus `json:"statusProducao" binding:"required"`
}

type SuggestionStatusRequest struct {
	Status types.SuggestionStatus `json:"status" binding:"required"`
}

// ============================================
// Generic responses
// ============================================

type ErrorResponse struct {
	Error string `json:"error"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}

type MessageResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}
