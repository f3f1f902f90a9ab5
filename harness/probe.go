package harness

import (
	"errors"
	"fmt"
	"os"

	"github.com/shirou/gopsutil/v3/process"
)

// ErrProbeUnsupported is returned when a memory probe is not available on
// the current platform.
var ErrProbeUnsupported = errors.New("memory probe not supported on this platform")

// ErrNoProbe is returned by Harness.Run when no memory probe is set.
var ErrNoProbe = errors.New("no memory probe")

// MemoryProbe reports the resident memory of the current process in bytes.
type MemoryProbe interface {
	ResidentBytes() (uint64, error)
}

// ProbeFunc adapts a function to MemoryProbe.
type ProbeFunc func() (uint64, error)

// ResidentBytes calls f.
func (f ProbeFunc) ResidentBytes() (uint64, error) {
	return f()
}

// Probe names accepted by ProbeByName.
const (
	ProbeRSS    = "rss"
	ProbeMaxRSS = "maxrss"
)

// ProbeByName returns the probe registered under name.
func ProbeByName(name string) (MemoryProbe, error) {
	switch name {
	case ProbeRSS:
		p, err := NewRSSProbe()
		if err != nil {
			return nil, err
		}

		return p, nil
	case ProbeMaxRSS:
		p, err := NewMaxRSSProbe()
		if err != nil {
			return nil, err
		}

		return p, nil
	default:
		return nil, fmt.Errorf("unknown memory probe %q (want %s or %s)",
			name, ProbeRSS, ProbeMaxRSS)
	}
}

// RSSProbe samples the current resident set size of this process.
type RSSProbe struct {
	proc *process.Process
}

// NewRSSProbe creates a probe bound to the running process.
func NewRSSProbe() (*RSSProbe, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("open process %d: %w", os.Getpid(), err)
	}

	return &RSSProbe{proc: proc}, nil
}

// ResidentBytes returns the current RSS.
func (p *RSSProbe) ResidentBytes() (uint64, error) {
	info, err := p.proc.MemoryInfo()
	if err != nil {
		return 0, fmt.Errorf("read memory info: %w", err)
	}

	return info.RSS, nil
}
