//go:build !unix

package harness

// MaxRSSProbe is unavailable without getrusage.
type MaxRSSProbe struct{}

// NewMaxRSSProbe returns ErrProbeUnsupported.
func NewMaxRSSProbe() (*MaxRSSProbe, error) {
	return nil, ErrProbeUnsupported
}

// ResidentBytes returns ErrProbeUnsupported.
func (MaxRSSProbe) ResidentBytes() (uint64, error) {
	return 0, ErrProbeUnsupported
}
