// Command linecode is a one-shot codec tool: it encodes a bitstream (typed,
// piped, or generated from a sine wave via PCM or delta modulation) into a
// waveform, or decodes a waveform back into bits.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/linelab/linelab/pkg/analog"
	"github.com/linelab/linelab/pkg/analysis"
	"github.com/linelab/linelab/pkg/linecode"
)

var version = "dev"

func main() {
	schemeName := flag.String("scheme", "NRZ-L", "Line coding scheme (NRZ-L, NRZ-I, Manchester, Differential Manchester, AMI, AMI-B8ZS, AMI-HDB3)")
	spb := flag.Int("spb", 4, "Samples per bit (even, >= 2)")
	decode := flag.Bool("decode", false, "Decode a waveform (comma/space-separated levels) instead of encoding")
	format := flag.String("format", "levels", "Encode output format: levels, symbols, json")
	verify := flag.Bool("verify", false, "After encoding, decode the waveform and report the round-trip")
	palindrome := flag.Bool("palindrome", false, "Also print the longest palindromic substring of the bits")

	analogKind := flag.String("analog", "", "Generate bits from a sine wave first: pcm or dm")
	freq := flag.Float64("freq", 5, "Sine frequency (Hz) for -analog")
	amp := flag.Float64("amp", 1, "Sine amplitude for -analog")
	duration := flag.Float64("duration", 1, "Sine duration (s) for -analog")
	samples := flag.Int("samples", 50, "Sine sample count for -analog")
	pcmBits := flag.Int("pcm-bits", 8, "PCM quantizer depth for -analog pcm")
	step := flag.Float64("step", 0, "Delta modulation step for -analog dm (amp/16 when 0)")

	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("linecode %s\n", version)
		return
	}

	_ = godotenv.Load()

	if err := run(*schemeName, *spb, *decode, *format, *verify, *palindrome,
		*analogKind, *freq, *amp, *duration, *samples, *pcmBits, *step); err != nil {
		fmt.Fprintln(os.Stderr, "linecode:", err)
		os.Exit(1)
	}
}

func run(schemeName string, spb int, decode bool, format string, verify, palindrome bool,
	analogKind string, freq, amp, duration float64, samples, pcmBits int, step float64) error {

	scheme, err := linecode.ParseScheme(schemeName)
	if err != nil {
		return err
	}

	input, err := readInput()
	if err != nil {
		return err
	}

	if decode {
		return runDecode(scheme, input, spb)
	}

	var bits string
	switch analogKind {
	case "":
		bits = linecode.NormalizeBits(input)
	case "pcm":
		bits, err = analog.PCM(analog.SineParams{Freq: freq, Amp: amp, Duration: duration, Samples: samples}, pcmBits)
		if err != nil {
			return err
		}
	case "dm":
		if step == 0 {
			step = analog.DefaultStep(amp)
		}
		bits, err = analog.DeltaMod(analog.SineParams{Freq: freq, Amp: amp, Duration: duration, Samples: samples}, step)
		if err != nil {
			return err
		}
	default:
		return &linecode.InvalidInputError{Reason: fmt.Sprintf("analog kind must be pcm or dm, got %q", analogKind)}
	}

	encoder, err := linecode.NewEncoder(spb)
	if err != nil {
		return err
	}
	waveform, err := encoder.Encode(bits, scheme)
	if err != nil {
		return err
	}

	if analogKind != "" {
		fmt.Println("bits:", bits)
	}
	if err := printWaveform(waveform, scheme, bits, spb, format); err != nil {
		return err
	}
	if palindrome {
		fmt.Println("palindrome:", analysis.LongestPalindrome(bits))
	}
	if verify {
		decoded := linecode.Decode(scheme, waveform, spb)
		status := "mismatch"
		if decoded == bits {
			status = "ok"
		}
		fmt.Printf("verify: %s (decoded %s)\n", status, decoded)
	}
	return nil
}

// readInput takes the bitstream or waveform from the first positional
// argument, falling back to stdin when none is given.
func readInput() (string, error) {
	if flag.NArg() > 0 {
		return flag.Arg(0), nil
	}
	stat, err := os.Stdin.Stat()
	if err == nil && (stat.Mode()&os.ModeCharDevice) != 0 {
		// Interactive terminal with no argument: nothing to read
		return "", nil
	}
	data, err := io.ReadAll(bufio.NewReader(os.Stdin))
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func runDecode(scheme linecode.Scheme, input string, spb int) error {
	waveform, err := parseWaveform(input)
	if err != nil {
		return err
	}
	fmt.Println(linecode.Decode(scheme, waveform, spb))
	return nil
}

// parseWaveform reads comma/space-separated level values
func parseWaveform(s string) (linecode.Waveform, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	w := make(linecode.Waveform, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, &linecode.InvalidInputError{Reason: fmt.Sprintf("level %q is not a number", f)}
		}
		w = append(w, v)
	}
	return w, nil
}

func printWaveform(w linecode.Waveform, scheme linecode.Scheme, bits string, spb int, format string) error {
	switch format {
	case "levels":
		parts := make([]string, len(w))
		for i, v := range w {
			parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		fmt.Println(strings.Join(parts, ","))
	case "symbols":
		// One character per cell: + pulse, - pulse, or 0
		var sb strings.Builder
		for i := 0; i+spb <= len(w); i += spb {
			switch {
			case w[i] > 0:
				sb.WriteByte('+')
			case w[i] < 0:
				sb.WriteByte('-')
			default:
				sb.WriteByte('0')
			}
		}
		fmt.Println(sb.String())
	case "json":
		out := map[string]interface{}{
			"scheme":          scheme,
			"bits":            bits,
			"samples_per_bit": spb,
			"waveform":        w,
		}
		enc := json.NewEncoder(os.Stdout)
		return enc.Encode(out)
	default:
		return &linecode.InvalidInputError{Reason: fmt.Sprintf("format must be levels, symbols or json, got %q", format)}
	}
	return nil
}
