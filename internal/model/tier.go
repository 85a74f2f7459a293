package model

import "slices"

// Subscription tier constants.
const (
	TierFree        = "free"
	TierKickstart   = "kickstart"
	TierSEOTakeover = "seo_takeover"
	TierAgency      = "agency"
	TierAdmin       = "admin"
)

// ValidTiers contains all valid tier values.
var ValidTiers = []string{TierFree, TierKickstart, TierSEOTakeover, TierAgency, TierAdmin}

// TierConfig defines monthly quotas and API rate limits for a tier.
// A zero value means unlimited.
type TierConfig struct {
	Articles          int
	Keywords          int
	Products          int
	RequestsPerMinute int
	Burst             int
}

// TierConfigs maps tier names to their configuration.
var TierConfigs = map[string]TierConfig{
	TierFree:        {Articles: 2, Keywords: 2, Products: 2, RequestsPerMinute: 30, Burst: 10},
	TierKickstart:   {Articles: 10, Keywords: 50, Products: 50, RequestsPerMinute: 60, Burst: 15},
	TierSEOTakeover: {Articles: 30, Keywords: 150, Products: 150, RequestsPerMinute: 120, Burst: 30},
	TierAgency:      {Articles: 100, Keywords: 500, Products: 500, RequestsPerMinute: 300, Burst: 50},
	TierAdmin:       {}, // unlimited
}

// IsValidTier reports whether tier names a known subscription tier.
func IsValidTier(tier string) bool {
	return slices.Contains(ValidTiers, tier)
}

// GetTierConfig returns the configuration for a tier, defaulting to free.
func GetTierConfig(tier string) TierConfig {
	if cfg, ok := TierConfigs[tier]; ok {
		return cfg
	}
	return TierConfigs[TierFree]
}

// Limit returns the monthly quota for a usage kind. Zero means unlimited.
func (c TierConfig) Limit(kind UsageKind) int {
	switch kind {
	case UsageArticles:
		return c.Articles
	case UsageKeywords:
		return c.Keywords
	case UsageProducts:
		return c.Products
	default:
		return 0
	}
}
