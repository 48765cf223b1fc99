package flags

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

type TargetKind string

// Evaluation targets accepted by fcorr
const (
	Solution TargetKind = "solution"
	SDK      TargetKind = "sdk"
	Dir      TargetKind = "dir"
)

var AllowedTargets = []string{string(Solution), string(SDK), string(Dir)}

// Target is the single evaluation target chosen on the command line
type Target struct {
	Kind  TargetKind
	Value string
}

func (t Target) String() string {
	return fmt.Sprintf("--%s %s", t.Kind, t.Value)
}

// PickTarget returns the one target flag set on fs
func PickTarget(fs *pflag.FlagSet) (Target, error) {
	var picked []Target
	for _, name := range AllowedTargets {
		flag := fs.Lookup(name)
		if flag == nil || !flag.Changed {
			continue
		}
		picked = append(picked, Target{Kind: TargetKind(name), Value: flag.Value.String()})
	}

	switch len(picked) {
	case 1:
		if strings.TrimSpace(picked[0].Value) == "" {
			return Target{}, fmt.Errorf("--%s requires a non-empty value", picked[0].Kind)
		}
		return picked[0], nil
	case 0:
		return Target{}, fmt.Errorf("one target is required. Allowed flags: --%s", strings.Join(AllowedTargets, ", --"))
	default:
		return Target{}, fmt.Errorf("only one target may be given, got %s and %s", picked[0], picked[1])
	}
}
