// Package dice provides the randomness abstraction and roll-result types
// for the combat resolver. All engine rolls flow through a Roller so that
// outcomes can be replayed deterministically with a seeded source.
package dice

import (
	"math/rand"
	"regexp"
	"strconv"
	"strings"
)

// Roller is the randomness provider for dice rolls. Intn returns a
// non-negative int in [0, n).
type Roller interface {
	Intn(n int) int
}

type randRoller struct {
	rng *rand.Rand
}

func (r *randRoller) Intn(n int) int { return r.rng.Intn(n) }

// NewRoller returns a Roller backed by math/rand with the given seed.
// Use a fixed seed in tests for reproducible outcomes.
func NewRoller(seed int64) Roller {
	return &randRoller{rng: rand.New(rand.NewSource(seed))}
}

// RollResult holds the audit trail for one dice-expression evaluation.
type RollResult struct {
	Expression string `json:"expression"`
	Rolls      []int  `json:"rolls"`
	Modifier   int    `json:"modifier"`
	Total      int    `json:"total"`
}

var exprRegex = regexp.MustCompile(`^(\d+)d(\d+)(?:\+(\d+))?$`)

// Roll evaluates a dice expression of the form "<count>d<size>[+<modifier>]"
// (e.g. "2d6+3"). When critical is true the die count is doubled. A
// malformed expression yields a zero-total, empty-rolls result rather than
// an error so a bad statblock entry never aborts an encounter.
func Roll(r Roller, expression string, critical bool) RollResult {
	expr := strings.ToLower(strings.TrimSpace(expression))
	m := exprRegex.FindStringSubmatch(expr)
	if m == nil {
		return RollResult{Expression: expression, Rolls: []int{}}
	}
	count, _ := strconv.Atoi(m[1])
	size, _ := strconv.Atoi(m[2])
	modifier := 0
	if m[3] != "" {
		modifier, _ = strconv.Atoi(m[3])
	}
	if count <= 0 || size <= 0 {
		return RollResult{Expression: expression, Rolls: []int{}}
	}
	if critical {
		count *= 2
	}
	rolls := make([]int, 0, count)
	total := modifier
	for i := 0; i < count; i++ {
		v := r.Intn(size) + 1
		rolls = append(rolls, v)
		total += v
	}
	return RollResult{Expression: expression, Rolls: rolls, Modifier: modifier, Total: total}
}

// Mode selects how a d20 roll is taken.
type Mode int

const (
	Normal Mode = iota
	Advantage
	Disadvantage
)

// D20 rolls a single twenty-sided die.
func D20(r Roller) int {
	return r.Intn(20) + 1
}

// D20With rolls a d20 under the given mode. Advantage and disadvantage
// roll twice and keep the better or worse die; both raw rolls are
// returned for logging.
func D20With(r Roller, mode Mode) (result int, rolls []int) {
	first := D20(r)
	if mode == Normal {
		return first, []int{first}
	}
	second := D20(r)
	rolls = []int{first, second}
	switch mode {
	case Advantage:
		if second > first {
			return second, rolls
		}
		return first, rolls
	default:
		if second < first {
			return second, rolls
		}
		return first, rolls
	}
}
