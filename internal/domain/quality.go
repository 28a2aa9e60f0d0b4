package domain

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

type QualityTier string

const (
	TierGood   QualityTier = "good"
	TierMedium QualityTier = "medium"
	TierPoor   QualityTier = "poor"
)

// QualitySample is one network report from a peer. Values are taken as
// sent; nothing is clamped.
type QualitySample struct {
	PacketLoss float64   `json:"packet_loss"`
	RTT        float64   `json:"rtt"`
	Jitter     float64   `json:"jitter"`
	Timestamp  UnixTime  `json:"timestamp"`
	User       SessionID `json:"user"`
}

// UnixTime is encoded in JSON as fractional unix seconds.
type UnixTime time.Time

func (t UnixTime) MarshalJSON() ([]byte, error) {
	secs := float64(time.Time(t).UnixNano()) / float64(time.Second)
	return strconv.AppendFloat(nil, secs, 'f', 6, 64), nil
}

func (t *UnixTime) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	secs, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("unix time %s: %w", b, err)
	}
	whole, frac := math.Modf(secs)
	*t = UnixTime(time.Unix(int64(whole), int64(math.Round(frac*1e6))*int64(time.Microsecond)))
	return nil
}

func (t UnixTime) Time() time.Time { return time.Time(t) }
