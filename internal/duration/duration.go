package duration

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// Duration is a pflag-compatible wrapper around time.Duration that also
// accepts day/week suffixes ("12h", "2d", "1w") used in config files.
type Duration time.Duration

var suffixes = []struct {
	Suffix     string
	Multiplier time.Duration
}{
	{Suffix: "d", Multiplier: time.Hour * 24},
	{Suffix: "w", Multiplier: time.Hour * 24 * 7},
}

func ParseDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err == nil {
		return d, nil
	}

	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf.Suffix) {
			n, perr := strconv.ParseFloat(strings.TrimSuffix(s, suf.Suffix), 64)
			if perr != nil {
				return 0, perr
			}
			return time.Duration(n * float64(suf.Multiplier)), nil
		}
	}
	return 0, err
}

func (d *Duration) String() string {
	return time.Duration(*d).String()
}

func (d *Duration) Set(s string) error {
	v, err := ParseDuration(s)
	*d = Duration(v)
	return err
}

func (d *Duration) Type() string {
	return "Duration"
}

func (d *Duration) UnmarshalText(text []byte) error {
	return d.Set(string(text))
}

func newDurationValue(val time.Duration, p *time.Duration) *Duration {
	*p = val
	return (*Duration)(p)
}

func DurationVar(f *pflag.FlagSet, p *time.Duration, name string, value time.Duration, usage string) {
	f.VarP(newDurationValue(value, p), name, "", usage)
}
