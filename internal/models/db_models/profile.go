package db_models

import "github.com/google/uuid"

type Profile struct {
	BaseModel
	AccountID    uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null"`
	AgencyID     *uuid.UUID `gorm:"type:uuid;index"`
	AddressLine1 string
	AddressLine2 string
	City         string
	County       string
	Postcode     string
	Country      string `gorm:"size:64"`
	Latitude     *float64
	Longitude    *float64
	// TravelRadius is in miles; zero means the worker accepts any distance.
	TravelRadius float64

	Agency *Agency `gorm:"foreignKey:AgencyID"`
}

func (p Profile) HasCoordinates() bool {
	return p.Latitude != nil && p.Longitude != nil
}
