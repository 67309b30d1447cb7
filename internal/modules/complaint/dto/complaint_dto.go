package dto

type CreateComplaintRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description" binding:"required,max=5000"`
	Category    string `json:"category" binding:"required,oneof=Housekeeping Internet Plumbing Electrical Furniture Security Mess Other"`
}

type UpdateStatusRequest struct {
	Status     string  `json:"status" binding:"required,oneof=Pending 'In Progress' Resolved Rejected"`
	Resolution *string `json:"resolution" binding:"omitempty,max=5000"`
}

type ResolveRequest struct {
	Resolution string `json:"resolution" binding:"required,max=5000"`
}

type ComplaintFilter struct {
	Status      string `form:"status" binding:"omitempty,oneof=Pending 'In Progress' Resolved Rejected"`
	Category    string `form:"category" binding:"omitempty,oneof=Housekeeping Internet Plumbing Electrical Furniture Security Mess Other"`
	HostelBlock string `form:"hostel_block"`
}

type SearchQuery struct {
	Q     string `form:"q" binding:"required,max=200"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=100"`
}
