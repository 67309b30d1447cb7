package dto

type CreateWardenRequest struct {
	Name          string `json:"name" binding:"required,min=2,max=100"`
	Email         string `json:"email" binding:"required,email"`
	Password      string `json:"password" binding:"required,min=6"`
	HostelBlock   string `json:"hostel_block" binding:"required,max=20"`
	ContactNumber string `json:"contact_number" binding:"omitempty,max=30"`
}

type UpdateWardenRequest struct {
	Name          *string `json:"name" binding:"omitempty,min=2,max=100"`
	Email         *string `json:"email" binding:"omitempty,email"`
	Password      *string `json:"password" binding:"omitempty,min=6"`
	HostelBlock   *string `json:"hostel_block" binding:"omitempty,max=20"`
	ContactNumber *string `json:"contact_number" binding:"omitempty,max=30"`
	Status        *string `json:"status" binding:"omitempty,oneof=Active Inactive"`
}
