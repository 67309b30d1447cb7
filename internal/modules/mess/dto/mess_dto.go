package dto

type UpdateMenuRequest struct {
	Breakfast   string  `json:"breakfast" binding:"required,max=500"`
	Lunch       string  `json:"lunch" binding:"required,max=500"`
	Dinner      string  `json:"dinner" binding:"required,max=500"`
	SpecialMenu *string `json:"special_menu" binding:"omitempty,max=500"`
	Notes       *string `json:"notes" binding:"omitempty,max=500"`
}

// MenuItemRequest is one day of a bulk menu update.
type MenuItemRequest struct {
	Day         string  `json:"day" binding:"required"`
	Breakfast   string  `json:"breakfast" binding:"required,max=500"`
	Lunch       string  `json:"lunch" binding:"required,max=500"`
	Dinner      string  `json:"dinner" binding:"required,max=500"`
	SpecialMenu *string `json:"special_menu" binding:"omitempty,max=500"`
	Notes       *string `json:"notes" binding:"omitempty,max=500"`
}

type FeedbackRequest struct {
	Rating   *int   `json:"rating" binding:"omitempty,min=1,max=5"`
	Feedback string `json:"feedback" binding:"required,max=1000"`
}
