package compat

import "testing"

func TestParseVersion(t *testing.T) {
	tests := []struct {
		in      string
		want    Version
		wantErr bool
	}{
		{"2021-12", V2021_12, false},
		{"2022-03", V2022_03, false},
		{"2023-01", V2023_01, false},
		{"2023-05", V2023_05, false},
		{"1999-01", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseVersion(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseVersion(%q) did not return an error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseVersion(%q) returned unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("ParseVersion(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestVersionStringRoundTrips(t *testing.T) {
	for _, v := range []Version{V2021_12, V2022_03, V2023_01, V2023_05} {
		parsed, err := ParseVersion(v.String())
		if err != nil {
			t.Fatalf("ParseVersion(%q) failed: %v", v.String(), err)
		}
		if parsed != v {
			t.Fatalf("round trip of %v produced %v", v, parsed)
		}
	}
}

func TestPolicyForFlags(t *testing.T) {
	tests := []struct {
		version            Version
		helper             string
		staticBitIsFlagBit bool
		trackThis          bool
		emitSuperClass     bool
		flatDestructure    bool
	}{
		{V2021_12, "applyDecs", false, false, false, true},
		{V2022_03, "applyDecs2203R", false, false, false, false},
		{V2023_01, "applyDecs2301", true, false, false, false},
		{V2023_05, "applyDecs2305", true, true, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.version.String(), func(t *testing.T) {
			p := PolicyFor(tt.version)
			if p.Helper != tt.helper {
				t.Errorf("Helper = %q, want %q", p.Helper, tt.helper)
			}
			if p.StaticBitIsFlagBit != tt.staticBitIsFlagBit {
				t.Errorf("StaticBitIsFlagBit = %v, want %v", p.StaticBitIsFlagBit, tt.staticBitIsFlagBit)
			}
			if p.TrackThis != tt.trackThis {
				t.Errorf("TrackThis = %v, want %v", p.TrackThis, tt.trackThis)
			}
			if p.EmitSuperClass != tt.emitSuperClass {
				t.Errorf("EmitSuperClass = %v, want %v", p.EmitSuperClass, tt.emitSuperClass)
			}
			if p.FlatDestructure != tt.flatDestructure {
				t.Errorf("FlatDestructure = %v, want %v", p.FlatDestructure, tt.flatDestructure)
			}
		})
	}
}

func TestMinimumHostVersionIncreasesMonotonically(t *testing.T) {
	versions := []Version{V2021_12, V2022_03, V2023_01, V2023_05}
	for i := 1; i < len(versions); i++ {
		prev := versions[i-1].MinimumHostVersion()
		cur := versions[i].MinimumHostVersion()
		if cur.Compare(prev) < 0 {
			t.Fatalf("%v's minimum host version %v is lower than %v's %v", versions[i], cur, versions[i-1], prev)
		}
	}
}

func TestHostVersionAtLeast(t *testing.T) {
	tests := []struct {
		a, b HostVersion
		want bool
	}{
		{HostVersion{7, 21, 0}, HostVersion{7, 21, 0}, true},
		{HostVersion{7, 22, 0}, HostVersion{7, 21, 0}, true},
		{HostVersion{7, 20, 5}, HostVersion{7, 21, 0}, false},
		{HostVersion{8, 0, 0}, HostVersion{7, 21, 0}, true},
	}
	for _, tt := range tests {
		if got := tt.a.AtLeast(tt.b); got != tt.want {
			t.Errorf("%v.AtLeast(%v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
