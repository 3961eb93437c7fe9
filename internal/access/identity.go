package access

import (
	"github.com/google/uuid"
)

// Identity is the resolved view of the caller that every gate decision is
// made against.
type Identity struct {
	AccountID     uuid.UUID
	Username      string
	Email         string
	Authenticated bool
	Superuser     bool
	Groups        []Group
	AgencyID      *uuid.UUID

	HasActiveSubscription bool
	Features              FeatureSet
}

func Anonymous() Identity {
	return Identity{Features: FeatureSet{}}
}

func (i Identity) InGroup(g Group) bool {
	for _, have := range i.Groups {
		if have == g {
			return true
		}
	}
	return false
}

func (i Identity) IsAgencyOwner() bool {
	return i.Superuser || i.InGroup(GroupAgencyOwners)
}

// IsAgencyManager also holds for owners, who manage their own agency.
func (i Identity) IsAgencyManager() bool {
	return i.IsAgencyOwner() || i.InGroup(GroupAgencyManagers)
}

func (i Identity) IsAgencyStaff() bool {
	return i.Superuser || i.InGroup(GroupAgencyStaff)
}

func (i Identity) HasFeature(f Feature) bool {
	return i.Superuser || i.Features.Has(f)
}

// BelongsTo reports whether the identity is attached to agencyID.
func (i Identity) BelongsTo(agencyID uuid.UUID) bool {
	return i.AgencyID != nil && *i.AgencyID == agencyID
}
