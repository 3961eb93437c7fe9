package access

// Route names used as redirect targets when a gate denies.
const (
	RouteLogin            = "/accounts/login"
	RouteHome             = "/"
	RouteSubscriptionHome = "/subscriptions/"
)

type RequirementKind int

const (
	RequireLogin RequirementKind = iota
	RequireSuperuser
	RequireGroup
	RequireSubscription
	RequireFeatures
)

// Requirement is what a route declares it needs from the caller.
type Requirement struct {
	Kind     RequirementKind
	Groups   []Group
	Features []Feature
}

func Authenticated() Requirement { return Requirement{Kind: RequireLogin} }

func Superuser() Requirement { return Requirement{Kind: RequireSuperuser} }

// Member admits superusers and members of g only.
func Member(g Group) Requirement { return Requirement{Kind: RequireGroup, Groups: []Group{g}} }

// ManagerOrOwner admits agency managers and agency owners.
func ManagerOrOwner() Requirement {
	return Requirement{Kind: RequireGroup, Groups: []Group{GroupAgencyManagers, GroupAgencyOwners}}
}

// ActiveSubscription requires a current subscription whose plan grants
// every listed feature.
func ActiveSubscription(features ...Feature) Requirement {
	return Requirement{Kind: RequireSubscription, Features: features}
}

func Features(features ...Feature) Requirement {
	return Requirement{Kind: RequireFeatures, Features: features}
}

type Decision struct {
	Allowed       bool
	Redirect      string
	Message       string
	ClearMessages bool
}

func allow() Decision { return Decision{Allowed: true} }

func deny(redirect, message string) Decision {
	return Decision{Redirect: redirect, Message: message}
}

// Evaluate decides whether id satisfies req.
func Evaluate(id Identity, req Requirement) Decision {
	switch req.Kind {
	case RequireLogin:
		if id.Authenticated {
			return allow()
		}
		return deny(RouteLogin, "Please log in to continue.")

	case RequireSuperuser:
		if !id.Authenticated {
			return deny(RouteLogin, "Please log in to continue.")
		}
		if id.Superuser {
			return allow()
		}
		return deny(RouteLogin, "You do not have permission to access this page.")

	case RequireGroup:
		if !id.Authenticated {
			return deny(RouteLogin, "Please log in to continue.")
		}
		if id.Superuser {
			return allow()
		}
		for _, g := range req.Groups {
			if id.InGroup(g) {
				return allow()
			}
		}
		if len(req.Groups) == 0 {
			return deny(RouteHome, groupDenial(""))
		}
		return deny(RouteHome, groupDenial(req.Groups[0]))

	case RequireSubscription:
		if id.Superuser {
			return allow()
		}
		if !id.Authenticated {
			d := deny(RouteLogin, "Please log in to continue.")
			d.ClearMessages = true
			return d
		}
		if id.AgencyID == nil || !id.HasActiveSubscription {
			d := deny(RouteSubscriptionHome, "You need an active subscription to access this page.")
			d.ClearMessages = true
			return d
		}
		if !id.Features.HasAll(req.Features) {
			d := deny(RouteSubscriptionHome, "Your current plan does not include this feature. Please upgrade.")
			d.ClearMessages = true
			return d
		}
		return allow()

	case RequireFeatures:
		if id.Superuser {
			return allow()
		}
		if !id.Authenticated {
			return deny(RouteLogin, "Please log in to continue.")
		}
		if id.Features.HasAll(req.Features) {
			return allow()
		}
		return deny(RouteSubscriptionHome, "Your current plan does not include this feature. Please upgrade.")
	}

	return deny(RouteHome, "You do not have permission to access this page.")
}

func groupDenial(g Group) string {
	switch g {
	case GroupAgencyOwners:
		return "Only agency owners can access this page."
	case GroupAgencyManagers:
		return "Only agency managers can access this page."
	case GroupAgencyStaff:
		return "Only agency staff can access this page."
	}
	return "You do not have permission to access this page."
}
