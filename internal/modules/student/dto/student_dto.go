package dto

type CreateStudentRequest struct {
	Name          string `json:"name" binding:"required,min=2,max=100"`
	Email         string `json:"email" binding:"required,email"`
	Password      string `json:"password" binding:"required,min=6"`
	RollNumber    string `json:"roll_number" binding:"required,max=50"`
	Course        string `json:"course" binding:"omitempty,max=100"`
	Year          int    `json:"year" binding:"omitempty,min=1,max=10"`
	HostelBlock   string `json:"hostel_block" binding:"required,max=20"`
	RoomNumber    string `json:"room_number" binding:"required,max=20"`
	ContactNumber string `json:"contact_number" binding:"omitempty,max=30"`
	ParentName    string `json:"parent_name" binding:"omitempty,max=100"`
	ParentContact string `json:"parent_contact" binding:"omitempty,max=30"`
	Address       string `json:"address" binding:"omitempty,max=500"`
	DateOfBirth   string `json:"date_of_birth" binding:"omitempty,datetime=2006-01-02"`
	BloodGroup    string `json:"blood_group" binding:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
}

type UpdateStudentRequest struct {
	Name          *string `json:"name" binding:"omitempty,min=2,max=100"`
	Email         *string `json:"email" binding:"omitempty,email"`
	Password      *string `json:"password" binding:"omitempty,min=6"`
	RollNumber    *string `json:"roll_number" binding:"omitempty,max=50"`
	Course        *string `json:"course" binding:"omitempty,max=100"`
	Year          *int    `json:"year" binding:"omitempty,min=1,max=10"`
	HostelBlock   *string `json:"hostel_block" binding:"omitempty,max=20"`
	RoomNumber    *string `json:"room_number" binding:"omitempty,max=20"`
	ContactNumber *string `json:"contact_number" binding:"omitempty,max=30"`
	ParentName    *string `json:"parent_name" binding:"omitempty,max=100"`
	ParentContact *string `json:"parent_contact" binding:"omitempty,max=30"`
	Address       *string `json:"address" binding:"omitempty,max=500"`
	DateOfBirth   *string `json:"date_of_birth" binding:"omitempty,datetime=2006-01-02"`
	BloodGroup    *string `json:"blood_group" binding:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	Status        *string `json:"status" binding:"omitempty,oneof=Active Inactive"`
}

type StudentFilter struct {
	HostelBlock string `form:"hostel_block"`
	Status      string `form:"status" binding:"omitempty,oneof=Active Inactive"`
	Search      string `form:"search"`
}
