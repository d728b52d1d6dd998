package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	trackingPrefix    = "STYLE"
	trackingAlphabet  = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	trackingSuffixLen = 6
)

// TrackingIDPattern matches every id produced by NewTrackingID.
var TrackingIDPattern = regexp.MustCompile(`^STYLE-[0-9A-Z]+-[0-9A-Z]{6}$`)

// NewTrackingID returns a human-shareable booking reference: a constant
// prefix, the base-36 millisecond timestamp and a random base-36 suffix.
// Collisions are possible but vanishingly unlikely; the bookings table
// rejects them.
func NewTrackingID(now time.Time) (string, error) {
	stamp := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))

	var suffix strings.Builder
	max := big.NewInt(int64(len(trackingAlphabet)))
	for i := 0; i < trackingSuffixLen; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate tracking id: %w", err)
		}
		suffix.WriteByte(trackingAlphabet[n.Int64()])
	}
	return trackingPrefix + "-" + stamp + "-" + suffix.String(), nil
}
