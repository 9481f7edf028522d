package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/blockhost/rootagent/internal/validate"
)

// vmidRangeFlag is a pflag.Value holding an inclusive "MIN-MAX" range.
// An unset flag leaves the configured range in place.
type vmidRangeFlag struct {
	r *validate.VMIDRange
}

var _ pflag.Value = (*vmidRangeFlag)(nil)

func (f *vmidRangeFlag) String() string {
	if f.r == nil {
		return ""
	}
	return f.r.String()
}

func (f *vmidRangeFlag) Set(s string) error {
	lo, hi, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return fmt.Errorf("expected MIN-MAX, got %q", s)
	}
	minID, err := strconv.Atoi(lo)
	if err != nil || minID < 0 {
		return fmt.Errorf("invalid minimum %q", lo)
	}
	maxID, err := strconv.Atoi(hi)
	if err != nil {
		return fmt.Errorf("invalid maximum %q", hi)
	}
	if maxID < minID {
		return fmt.Errorf("maximum %d is below minimum %d", maxID, minID)
	}
	f.r = &validate.VMIDRange{Min: minID, Max: maxID}
	return nil
}

func (f *vmidRangeFlag) Type() string {
	return "range"
}

// Range returns the parsed range, or nil when the flag was not given.
func (f *vmidRangeFlag) Range() *validate.VMIDRange {
	return f.r
}
