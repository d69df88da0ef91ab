// Copyright (c) 2026 ColorPro. All rights reserved.
// Author: dev@colorpro.app

package sec

// # Subscription Tiers

// Tier represents the subscription level gating feature access.
type Tier string

const (
	// Entry plan: one basic analysis per period
	TierBronze Tier = "bronze"

	// Mid plan: detailed reports and style recommendations
	TierSilver Tier = "silver"

	// Top plan: personal consultations and seasonal palette updates
	TierGold Tier = "gold"
)

// # Features

// Feature names the individually gated capabilities of the platform.
type Feature string

const (
	FeatureBasicAnalysis        Feature = "basic_analysis"
	FeatureDetailedReport       Feature = "detailed_report"
	FeatureStyleRecommendations Feature = "style_recommendations"
	FeaturePersonalConsultation Feature = "personal_consultation"
	FeatureSeasonalUpdates      Feature = "seasonal_updates"
)

// tierFeatures maps each tier to its full feature set. The sets form a
// lattice: silver contains everything bronze has, gold contains everything
// silver has. Changing this table is an authorization change and must be
// reviewed accordingly.
var tierFeatures = map[Tier][]Feature{
	TierBronze: {
		FeatureBasicAnalysis,
	},
	TierSilver: {
		FeatureBasicAnalysis,
		FeatureDetailedReport,
		FeatureStyleRecommendations,
	},
	TierGold: {
		FeatureBasicAnalysis,
		FeatureDetailedReport,
		FeatureStyleRecommendations,
		FeaturePersonalConsultation,
		FeatureSeasonalUpdates,
	},
}

// TierHasFeature reports whether the given tier includes the named feature.
// Unknown or empty tiers grant no features.
func TierHasFeature(tier Tier, feature Feature) bool {
	for _, f := range tierFeatures[tier] {
		if f == feature {
			return true
		}
	}
	return false
}

// Features returns the feature set of a tier in declaration order.
// It returns a copy so callers cannot mutate the lattice.
func Features(tier Tier) []Feature {
	src := tierFeatures[tier]
	out := make([]Feature, len(src))
	copy(out, src)
	return out
}

// IsValidTier reports whether the string names a known subscription tier.
func IsValidTier(tier string) bool {
	switch Tier(tier) {
	case TierBronze, TierSilver, TierGold:
		return true
	default:
		return false
	}
}
