package dto

import "anoa.com/hostelhub/internal/entity"

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"omitempty,oneof=student warden admin"`
}

type RegisterRequest struct {
	Name          string `json:"name" binding:"required,min=2,max=100"`
	Email         string `json:"email" binding:"required,email"`
	Password      string `json:"password" binding:"required,min=6"`
	Role          string `json:"role" binding:"omitempty,oneof=student warden admin"`
	RollNumber    string `json:"roll_number" binding:"required,max=50"`
	HostelBlock   string `json:"hostel_block" binding:"required,max=20"`
	RoomNumber    string `json:"room_number" binding:"required,max=20"`
	Course        string `json:"course" binding:"omitempty,max=100"`
	Year          int    `json:"year" binding:"omitempty,min=1,max=10"`
	ContactNumber string `json:"contact_number" binding:"omitempty,max=30"`
}

type AuthResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresIn int64        `json:"expires_in"`
	User      *entity.User `json:"user"`
}
