// Copyright (c) 2026 ColorPro. All rights reserved.
// Author: dev@colorpro.app

package sec_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/colorpro/colorpro/internal/platform/sec"
)

/*
TestTierHasFeature walks the full tier/feature lattice: every tier includes
everything the tier below it has.
*/
func TestTierHasFeature(t *testing.T) {
	tests := []struct {
		tier    sec.Tier
		feature sec.Feature
		granted bool
	}{
		{sec.TierBronze, sec.FeatureBasicAnalysis, true},
		{sec.TierBronze, sec.FeatureDetailedReport, false},
		{sec.TierBronze, sec.FeaturePersonalConsultation, false},

		{sec.TierSilver, sec.FeatureBasicAnalysis, true},
		{sec.TierSilver, sec.FeatureDetailedReport, true},
		{sec.TierSilver, sec.FeatureStyleRecommendations, true},
		{sec.TierSilver, sec.FeaturePersonalConsultation, false},
		{sec.TierSilver, sec.FeatureSeasonalUpdates, false},

		{sec.TierGold, sec.FeatureBasicAnalysis, true},
		{sec.TierGold, sec.FeatureDetailedReport, true},
		{sec.TierGold, sec.FeatureStyleRecommendations, true},
		{sec.TierGold, sec.FeaturePersonalConsultation, true},
		{sec.TierGold, sec.FeatureSeasonalUpdates, true},

		{sec.Tier(""), sec.FeatureBasicAnalysis, false},
		{sec.Tier("platinum"), sec.FeatureBasicAnalysis, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.tier)+"/"+string(tt.feature), func(t *testing.T) {
			assert.Equal(t, tt.granted, sec.TierHasFeature(tt.tier, tt.feature))
		})
	}
}

/*
TestFeatures checks the returned set is a defensive copy.
*/
func TestFeatures(t *testing.T) {
	features := sec.Features(sec.TierSilver)
	assert.Len(t, features, 3)

	features[0] = sec.Feature("tampered")
	assert.Equal(t, sec.FeatureBasicAnalysis, sec.Features(sec.TierSilver)[0])

	assert.Empty(t, sec.Features(sec.Tier("unknown")))
}

/*
TestIsValidTier checks tier name recognition.
*/
func TestIsValidTier(t *testing.T) {
	assert.True(t, sec.IsValidTier("bronze"))
	assert.True(t, sec.IsValidTier("silver"))
	assert.True(t, sec.IsValidTier("gold"))
	assert.False(t, sec.IsValidTier("platinum"))
	assert.False(t, sec.IsValidTier(""))
	assert.False(t, sec.IsValidTier("Gold"))
}

/*
TestHasActiveSubscription checks that access requires both the active status
and an unexpired period.
*/
func TestHasActiveSubscription(t *testing.T) {
	future := time.Now().Add(time.Hour)
	past := time.Now().Add(-time.Hour)

	tests := []struct {
		name    string
		sub     *sec.Subscription
		granted bool
	}{
		{"nil", nil, false},
		{"active_unexpired", &sec.Subscription{Status: sec.StatusActive, CurrentPeriodEnd: future}, true},
		{"active_expired", &sec.Subscription{Status: sec.StatusActive, CurrentPeriodEnd: past}, false},
		{"cancelled_unexpired", &sec.Subscription{Status: sec.StatusCancelled, CurrentPeriodEnd: future}, false},
		{"pending_unexpired", &sec.Subscription{Status: sec.StatusPending, CurrentPeriodEnd: future}, false},
		{"inactive", &sec.Subscription{Status: sec.StatusInactive, CurrentPeriodEnd: future}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.granted, sec.HasActiveSubscription(tt.sub))
		})
	}
}
