package db_models

import (
	"github.com/google/uuid"
	"shiftwise/internal/access"
)

type Account struct {
	BaseModel
	Username     string `gorm:"size:150;uniqueIndex;not null"`
	Email        string `gorm:"size:254;uniqueIndex;not null"`
	PasswordHash string `json:"-"`
	IsSuperuser  bool
	IsActive     bool

	Groups  []AccountGroup `gorm:"foreignKey:AccountID"`
	Profile *Profile       `gorm:"foreignKey:AccountID"`
}

// AccountGroup is one membership row of the closed group set.
type AccountGroup struct {
	BaseModel
	AccountID uuid.UUID    `gorm:"type:uuid;uniqueIndex:idx_account_group;not null"`
	Group     access.Group `gorm:"column:group_name;size:64;uniqueIndex:idx_account_group;not null"`
}

func (a Account) GroupNames() []access.Group {
	out := make([]access.Group, 0, len(a.Groups))
	for _, g := range a.Groups {
		out = append(out, g.Group)
	}
	return out
}
