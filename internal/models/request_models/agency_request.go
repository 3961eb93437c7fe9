package request_models

type CreateAgencyRequest struct {
	Name       string `json:"name" form:"name" binding:"required,min=2,max=255"`
	Email      string `json:"email" form:"email" binding:"omitempty,email"`
	Phone      string `json:"phone" form:"phone" binding:"max=32"`
	Address    string `json:"address" form:"address" binding:"max=255"`
	Postcode   string `json:"postcode" form:"postcode" binding:"max=20"`
	AgencyType string `json:"agency_type" form:"agency_type"`
	Website    string `json:"website" form:"website" binding:"omitempty,url"`
}

// AddMemberRequest attaches an existing account to the caller's agency.
type AddMemberRequest struct {
	Email string `json:"email" form:"email" binding:"required,email"`
	Group string `json:"group" form:"group" binding:"required"`
}
