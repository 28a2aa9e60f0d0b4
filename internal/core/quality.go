package core

import "github.com/dkeye/Huddle/internal/domain"

const (
	poorPacketLoss   = 5.0
	poorRTT          = 300.0
	mediumPacketLoss = 2.0
	mediumRTT        = 150.0
)

var recommendations = map[domain.QualityTier]string{
	domain.TierPoor:   "Consider switching to audio-only mode",
	domain.TierMedium: "Video quality automatically reduced",
	domain.TierGood:   "Optimal video quality available",
}

// Evaluate classifies a single sample. Only packet loss and RTT count;
// jitter is carried along but never moves the tier.
func Evaluate(s domain.QualitySample) (domain.QualityTier, string) {
	tier := domain.TierGood
	switch {
	case s.PacketLoss > poorPacketLoss || s.RTT > poorRTT:
		tier = domain.TierPoor
	case s.PacketLoss > mediumPacketLoss || s.RTT > mediumRTT:
		tier = domain.TierMedium
	}
	return tier, Recommendation(tier)
}

func Recommendation(tier domain.QualityTier) string {
	if r, ok := recommendations[tier]; ok {
		return r
	}
	return "Unknown quality"
}
