package response_models

import (
	"github.com/google/uuid"
	"shiftwise/internal/access"
	"shiftwise/internal/models/db_models"
)

type AccountLoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

type AccountResponse struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	IsSuperuser bool      `json:"is_superuser"`
	Groups      []string  `json:"groups"`
}

func NewAccountResponse(a db_models.Account) AccountResponse {
	groups := make([]string, 0, len(a.Groups))
	for _, g := range a.Groups {
		groups = append(groups, g.Group.String())
	}
	return AccountResponse{
		ID:          a.ID,
		Username:    a.Username,
		Email:       a.Email,
		IsSuperuser: a.IsSuperuser,
		Groups:      groups,
	}
}

// IdentityResponse is the per-request context exposed to clients: who the
// caller is and what their agency's subscription unlocks.
type IdentityResponse struct {
	AccountID             uuid.UUID  `json:"account_id"`
	Username              string     `json:"username"`
	Email                 string     `json:"email"`
	IsSuperuser           bool       `json:"is_superuser"`
	Groups                []string   `json:"groups"`
	AgencyID              *uuid.UUID `json:"agency_id,omitempty"`
	IsAgencyOwner         bool       `json:"is_agency_owner"`
	IsAgencyManager       bool       `json:"is_agency_manager"`
	IsAgencyStaff         bool       `json:"is_agency_staff"`
	HasActiveSubscription bool       `json:"has_active_subscription"`
	Features              []string   `json:"features"`
}

func NewIdentityResponse(id access.Identity) IdentityResponse {
	groups := make([]string, 0, len(id.Groups))
	for _, g := range id.Groups {
		groups = append(groups, g.String())
	}
	return IdentityResponse{
		AccountID:             id.AccountID,
		Username:              id.Username,
		Email:                 id.Email,
		IsSuperuser:           id.Superuser,
		Groups:                groups,
		AgencyID:              id.AgencyID,
		IsAgencyOwner:         id.IsAgencyOwner(),
		IsAgencyManager:       id.IsAgencyManager(),
		IsAgencyStaff:         id.IsAgencyStaff(),
		HasActiveSubscription: id.HasActiveSubscription,
		Features:              id.Features.Sorted(),
	}
}

type ProfileResponse struct {
	AccountID    uuid.UUID  `json:"account_id"`
	AgencyID     *uuid.UUID `json:"agency_id,omitempty"`
	AgencyName   string     `json:"agency_name,omitempty"`
	AddressLine1 string     `json:"address_line1"`
	AddressLine2 string     `json:"address_line2"`
	City         string     `json:"city"`
	County       string     `json:"county"`
	Postcode     string     `json:"postcode"`
	Country      string     `json:"country"`
	Latitude     *float64   `json:"latitude"`
	Longitude    *float64   `json:"longitude"`
	TravelRadius float64    `json:"travel_radius"`
}

func NewProfileResponse(p db_models.Profile) ProfileResponse {
	resp := ProfileResponse{
		AccountID:    p.AccountID,
		AgencyID:     p.AgencyID,
		AddressLine1: p.AddressLine1,
		AddressLine2: p.AddressLine2,
		City:         p.City,
		County:       p.County,
		Postcode:     p.Postcode,
		Country:      p.Country,
		Latitude:     p.Latitude,
		Longitude:    p.Longitude,
		TravelRadius: p.TravelRadius,
	}
	if p.Agency != nil {
		resp.AgencyName = p.Agency.Name
	}
	return resp
}

type AgencyResponse struct {
	ID                 uuid.UUID  `json:"id"`
	Name               string     `json:"name"`
	AgencyCode         string     `json:"agency_code"`
	OwnerID            *uuid.UUID `json:"owner_id,omitempty"`
	Email              string     `json:"email,omitempty"`
	Phone              string     `json:"phone,omitempty"`
	Address            string     `json:"address,omitempty"`
	Postcode           string     `json:"postcode,omitempty"`
	AgencyType         string     `json:"agency_type"`
	Website            string     `json:"website,omitempty"`
	HasBillingCustomer bool       `json:"has_billing_customer"`
	IsActive           bool       `json:"is_active"`
}

func NewAgencyResponse(a db_models.Agency) AgencyResponse {
	return AgencyResponse{
		ID:                 a.ID,
		Name:               a.Name,
		AgencyCode:         a.AgencyCode,
		OwnerID:            a.OwnerID,
		Email:              a.Email,
		Phone:              a.Phone,
		Address:            a.Address,
		Postcode:           a.Postcode,
		AgencyType:         string(a.AgencyType),
		Website:            a.Website,
		HasBillingCustomer: a.CustomerID() != "",
		IsActive:           a.IsActive,
	}
}

func NewAgencyResponses(agencies []db_models.Agency) []AgencyResponse {
	out := make([]AgencyResponse, 0, len(agencies))
	for _, a := range agencies {
		out = append(out, NewAgencyResponse(a))
	}
	return out
}
