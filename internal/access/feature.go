package access

import (
	"fmt"
	"sort"
)

// Feature is a plan entitlement.
type Feature string

const (
	FeatureNotifications      Feature = "notifications_enabled"
	FeatureAdvancedReporting  Feature = "advanced_reporting"
	FeaturePrioritySupport    Feature = "priority_support"
	FeatureShiftManagement    Feature = "shift_management"
	FeatureStaffPerformance   Feature = "staff_performance"
	FeatureCustomIntegrations Feature = "custom_integrations"
)

func AllFeatures() []Feature {
	return []Feature{
		FeatureNotifications,
		FeatureAdvancedReporting,
		FeaturePrioritySupport,
		FeatureShiftManagement,
		FeatureStaffPerformance,
		FeatureCustomIntegrations,
	}
}

func ParseFeature(s string) (Feature, error) {
	switch f := Feature(s); f {
	case FeatureNotifications,
		FeatureAdvancedReporting,
		FeaturePrioritySupport,
		FeatureShiftManagement,
		FeatureStaffPerformance,
		FeatureCustomIntegrations:
		return f, nil
	}
	return "", fmt.Errorf("unknown feature %q", s)
}

type FeatureSet map[Feature]struct{}

func NewFeatureSet(features ...Feature) FeatureSet {
	set := make(FeatureSet, len(features))
	for _, f := range features {
		set[f] = struct{}{}
	}
	return set
}

func (s FeatureSet) Has(f Feature) bool {
	_, ok := s[f]
	return ok
}

// HasAll reports whether every feature in required is present. An empty
// requirement is always satisfied.
func (s FeatureSet) HasAll(required []Feature) bool {
	for _, f := range required {
		if !s.Has(f) {
			return false
		}
	}
	return true
}

// Sorted returns the features in a stable order for responses.
func (s FeatureSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for f := range s {
		out = append(out, string(f))
	}
	sort.Strings(out)
	return out
}
