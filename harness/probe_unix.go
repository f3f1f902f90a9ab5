//go:build unix

package harness

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// MaxRSSProbe reports the peak resident set size of this process so far,
// as returned by getrusage(RUSAGE_SELF).
type MaxRSSProbe struct{}

// NewMaxRSSProbe creates a peak-RSS probe.
func NewMaxRSSProbe() (*MaxRSSProbe, error) {
	return &MaxRSSProbe{}, nil
}

// ResidentBytes returns ru_maxrss converted to bytes.
func (MaxRSSProbe) ResidentBytes() (uint64, error) {
	var usage unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &usage); err != nil {
		return 0, fmt.Errorf("getrusage: %w", err)
	}

	maxRSS := uint64(usage.Maxrss)

	// Darwin reports bytes, everything else kilobytes.
	if runtime.GOOS == "darwin" || runtime.GOOS == "ios" {
		return maxRSS, nil
	}

	return maxRSS * 1024, nil
}
