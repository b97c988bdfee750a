// Package compat holds the table that the decorator pass consults to know
// which of the four proposal revisions it is targeting, modeled on
// esbuild's own internal/compat package (a small data table plus a bitset
// of feature flags, consulted instead of scattering "if version == x"
// checks through the pass).
package compat

import (
	"fmt"

	"github.com/declower/declower/internal/runtime"
)

// Version identifies one of the four decorator proposal revisions the pass
// must be able to emit, per spec.md §1/§9.
type Version uint8

const (
	V2021_12 Version = iota
	V2022_03
	V2023_01
	V2023_05
)

func ParseVersion(s string) (Version, error) {
	switch s {
	case "2021-12":
		return V2021_12, nil
	case "2022-03":
		return V2022_03, nil
	case "2023-01":
		return V2023_01, nil
	case "2023-05":
		return V2023_05, nil
	default:
		return 0, fmt.Errorf("unsupported decorator version %q: must be one of 2021-12, 2022-03, 2023-01, 2023-05", s)
	}
}

func (v Version) String() string {
	switch v {
	case V2021_12:
		return "2021-12"
	case V2022_03:
		return "2022-03"
	case V2023_01:
		return "2023-01"
	case V2023_05:
		return "2023-05"
	default:
		return "unknown"
	}
}

// HostVersion is a semantic-version triple used to gate the pass on the
// surrounding host compiler, per spec.md §6/§7.2.
type HostVersion struct {
	Major, Minor, Patch int
}

func (a HostVersion) Compare(b HostVersion) int {
	if d := a.Major - b.Major; d != 0 {
		return d
	}
	if d := a.Minor - b.Minor; d != 0 {
		return d
	}
	return a.Patch - b.Patch
}

func (a HostVersion) AtLeast(b HostVersion) bool { return a.Compare(b) >= 0 }

func (a HostVersion) String() string { return fmt.Sprintf("%d.%d.%d", a.Major, a.Minor, a.Patch) }

// MinimumHostVersion returns the lowest host compiler version that may
// select this decorator revision, per spec.md §6.
func (v Version) MinimumHostVersion() HostVersion {
	switch v {
	case V2021_12:
		return HostVersion{7, 16, 0}
	case V2022_03:
		return HostVersion{7, 19, 0}
	case V2023_01, V2023_05:
		return HostVersion{7, 21, 0}
	default:
		return HostVersion{}
	}
}

// Policy is the per-version table that the emission phase (P5) and the
// decorator-extraction phase (P4) consult instead of branching on Version
// directly, per spec.md §9 "Version dispatch".
type Policy struct {
	Version Version

	// Helper is the name of the runtime.applyDecs* helper this version emits.
	Helper string

	// PreferHelperOver, if non-empty, names a legacy fallback helper for
	// this version that a host lacking support for Helper would need
	// instead (2022-03's flat-array applyDecs2203, now that Helper itself
	// defaults to the revised applyDecs2203R per spec.md §4.6's stated
	// "when available" preference). No host-capability-detection signal
	// exists yet to act on this automatically — see DESIGN.md's open
	// question.
	PreferHelperOver string

	// TrackThis is true when decorator expressions that are member
	// expressions on `this`/`super` must have their receiver captured
	// separately in DecoratorInfo.decoratorsThis (2023-05 only).
	TrackThis bool

	// EmitSuperClass is true when the superclass must be threaded through
	// to the applyDecs* call so the runtime can perform brand checks that
	// also consider inherited private members (2023-05 only).
	EmitSuperClass bool

	// StaticBitIsFlagBit is true when the "static" flag is encoded as bit 3
	// of the element flag (2023-01/2023-05). When false, "static" is encoded
	// by adding the literal 5 to the kind instead (2021-12/2022-03), per
	// spec.md §4.6.1.
	StaticBitIsFlagBit bool

	// FlatDestructure is true when the runtime helper returns one flat array
	// destructured positionally instead of an `{e, c}` object (2021-12 and
	// the non-"R" 2022-03 shape), per spec.md §4.6.
	FlatDestructure bool
}

var policies = map[Version]Policy{
	V2021_12: {
		Version:         V2021_12,
		Helper:          runtime.ApplyDecs,
		FlatDestructure: true,
	},
	V2022_03: {
		Version:          V2022_03,
		Helper:           runtime.ApplyDecs2203R,
		PreferHelperOver: runtime.ApplyDecs2203,
		FlatDestructure:  false,
	},
	V2023_01: {
		Version:            V2023_01,
		Helper:             runtime.ApplyDecs2301,
		StaticBitIsFlagBit: true,
	},
	V2023_05: {
		Version:            V2023_05,
		Helper:             runtime.ApplyDecs2305,
		StaticBitIsFlagBit: true,
		TrackThis:          true,
		EmitSuperClass:     true,
	},
}

// PolicyFor returns the emission policy for a decorator proposal version.
func PolicyFor(v Version) Policy {
	p, ok := policies[v]
	if !ok {
		panic(fmt.Sprintf("compat: no policy registered for version %v", v))
	}
	return p
}
