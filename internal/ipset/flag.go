package ipset

import (
	"fmt"

	"github.com/unioslo/flytrap/internal/ip4addr"
)

// Flag implements flag.Value over a *Tree, letting a repeatable
// command-line flag build up an address set one address, "A-B" range,
// or "A/plen" CIDR block at a time. Invert selects exclude semantics:
// the set is seeded as "everything" on first use, and each flag
// occurrence removes the given range instead of adding it — the same
// include_range/exclude_range split the reference ft2dshield CLI uses.
type Flag struct {
	Set    **Tree
	Invert bool
}

// String satisfies flag.Value; the set itself is rendered with Print.
func (f Flag) String() string {
	return ""
}

// Set parses s and inserts or removes it from the underlying set.
func (f Flag) Set(s string) error {
	first, last, rest, ok := ip4addr.ParseRange(s)
	if !ok || rest != "" {
		return fmt.Errorf("invalid address or range: %s", s)
	}
	if *f.Set == nil {
		if f.Invert {
			*f.Set = NewFull()
		} else {
			*f.Set = New()
		}
	}
	if f.Invert {
		(*f.Set).Remove(first, last)
	} else {
		(*f.Set).Insert(first, last)
	}
	return nil
}
