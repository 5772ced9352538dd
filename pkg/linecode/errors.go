package linecode

import "fmt"

// ConfigError reports an unusable samples-per-bit setting. It is fatal:
// an Encoder cannot be constructed with a bad rate.
type ConfigError struct {
	SamplesPerBit int
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("samples per bit must be an even number >= 2, got %d", e.SamplesPerBit)
}

// InvalidInputError reports input rejected before any encoding ran:
// a non-binary bitstream or a non-positive numeric parameter.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return "invalid input: " + e.Reason
}

// UnsupportedSchemeError reports a scheme identifier that is not one of
// the supported schemes.
type UnsupportedSchemeError struct {
	Name string
}

func (e *UnsupportedSchemeError) Error() string {
	return fmt.Sprintf("unsupported scheme: %q", e.Name)
}
