package request_models

type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required,min=6"`
}

type SignUpRequest struct {
	Username string `json:"username" form:"username" binding:"required,min=3,max=150"`
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required,min=8"`
}

type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" form:"new_password" binding:"required,min=8"`
	Token       string `json:"token" form:"token" binding:"required"`
}

type RequestForgotPassword struct {
	Email string `json:"email" form:"email" binding:"required,email"`
}

type UpdateProfileRequest struct {
	AddressLine1 string   `json:"address_line1" form:"address_line1" binding:"max=255"`
	AddressLine2 string   `json:"address_line2" form:"address_line2" binding:"max=255"`
	City         string   `json:"city" form:"city" binding:"max=100"`
	County       string   `json:"county" form:"county" binding:"max=100"`
	Postcode     string   `json:"postcode" form:"postcode" binding:"max=20"`
	Country      string   `json:"country" form:"country" binding:"max=64"`
	Latitude     *float64 `json:"latitude" form:"latitude" binding:"omitempty,min=-90,max=90"`
	Longitude    *float64 `json:"longitude" form:"longitude" binding:"omitempty,min=-180,max=180"`
	TravelRadius float64  `json:"travel_radius" form:"travel_radius" binding:"min=0"`
}

type SetGroupsRequest struct {
	Groups []string `json:"groups" binding:"dive,required"`
}
