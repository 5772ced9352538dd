// Package linecode implements digital line coding: encoding bitstreams into
// sampled waveforms and recovering bitstreams from waveforms, including the
// B8ZS and HDB3 zero-substitution scramblers used with AMI.
package linecode

import "strings"

// Scheme identifies a line coding scheme
type Scheme string

const (
	SchemeNRZL           Scheme = "NRZ-L"
	SchemeNRZI           Scheme = "NRZ-I"
	SchemeManchester     Scheme = "Manchester"
	SchemeDiffManchester Scheme = "Differential Manchester"
	SchemeAMI            Scheme = "AMI"
	SchemeAMIB8ZS        Scheme = "AMI-B8ZS"
	SchemeAMIHDB3        Scheme = "AMI-HDB3"
)

// Schemes returns all supported schemes in canonical display order
func Schemes() []Scheme {
	return []Scheme{
		SchemeNRZL,
		SchemeNRZI,
		SchemeManchester,
		SchemeDiffManchester,
		SchemeAMI,
		SchemeAMIB8ZS,
		SchemeAMIHDB3,
	}
}

// ParseScheme resolves a scheme identifier. It accepts the canonical names
// case-insensitively plus the short aliases used on the command line
// (nrzl, nrzi, manchester, diffmanchester, ami, b8zs, hdb3).
func ParseScheme(name string) (Scheme, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "nrz-l", "nrzl":
		return SchemeNRZL, nil
	case "nrz-i", "nrzi":
		return SchemeNRZI, nil
	case "manchester":
		return SchemeManchester, nil
	case "differential manchester", "differential-manchester", "diffmanchester", "diff-manchester":
		return SchemeDiffManchester, nil
	case "ami":
		return SchemeAMI, nil
	case "ami-b8zs", "b8zs":
		return SchemeAMIB8ZS, nil
	case "ami-hdb3", "hdb3":
		return SchemeAMIHDB3, nil
	}
	return "", &UnsupportedSchemeError{Name: name}
}

// Valid reports whether s is one of the supported schemes
func (s Scheme) Valid() bool {
	switch s {
	case SchemeNRZL, SchemeNRZI, SchemeManchester, SchemeDiffManchester,
		SchemeAMI, SchemeAMIB8ZS, SchemeAMIHDB3:
		return true
	}
	return false
}

// Scrambled reports whether s applies zero-run substitution on top of AMI
func (s Scheme) Scrambled() bool {
	return s == SchemeAMIB8ZS || s == SchemeAMIHDB3
}

func (s Scheme) String() string {
	return string(s)
}
