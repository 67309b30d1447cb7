package dto

type CreateSuggestionRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description" binding:"required,max=5000"`
	Category    string `json:"category" binding:"required,oneof=Facilities Food Academics Events Rules Other"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=Pending 'In Progress' Resolved Rejected"`
}

type CommentRequest struct {
	Text string `json:"text" binding:"required,max=2000"`
}

type RespondRequest struct {
	Response string `json:"response" binding:"required,max=5000"`
}

type SuggestionFilter struct {
	Status   string `form:"status" binding:"omitempty,oneof=Pending 'In Progress' Resolved Rejected"`
	Category string `form:"category" binding:"omitempty,oneof=Facilities Food Academics Events Rules Other"`
}

type CountResponse struct {
	Count int64 `json:"count"`
}
