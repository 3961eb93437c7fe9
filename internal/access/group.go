package access

import "fmt"

// Group is an authorization group. The set is closed; ParseGroup rejects
// anything else.
type Group string

const (
	GroupAgencyOwners   Group = "Agency Owners"
	GroupAgencyManagers Group = "Agency Managers"
	GroupAgencyStaff    Group = "Agency Staff"
)

func AllGroups() []Group {
	return []Group{GroupAgencyOwners, GroupAgencyManagers, GroupAgencyStaff}
}

func ParseGroup(s string) (Group, error) {
	switch g := Group(s); g {
	case GroupAgencyOwners, GroupAgencyManagers, GroupAgencyStaff:
		return g, nil
	}
	return "", fmt.Errorf("unknown group %q", s)
}

func (g Group) String() string { return string(g) }
