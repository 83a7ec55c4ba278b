package wager

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Outcome is one row of the payout table.
type Outcome struct {
	Multiplier float64 `yaml:"multiplier"`
	Weight     int     `yaml:"weight"`
}

// Table is a weighted payout table. Outcomes with multiplier zero are losing
// draws; the weights define the odds.
type Table struct {
	outcomes    []Outcome
	totalWeight int
}

type tableFile struct {
	Outcomes []Outcome `yaml:"outcomes"`
}

// LoadTable reads a payout table from a YAML file.
func LoadTable(path string) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read payout table %s: %w", path, err)
	}
	t, err := ParseTable(raw)
	if err != nil {
		return nil, fmt.Errorf("parse payout table %s: %w", path, err)
	}
	return t, nil
}

// ParseTable parses and validates a YAML payout table. The expected value
// must stay below 1.0 so the table cannot bleed the bankroll.
func ParseTable(raw []byte) (*Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}
	return NewTable(f.Outcomes)
}

func NewTable(outcomes []Outcome) (*Table, error) {
	if len(outcomes) == 0 {
		return nil, fmt.Errorf("payout table has no outcomes")
	}

	total := 0
	for i, o := range outcomes {
		if o.Weight <= 0 {
			return nil, fmt.Errorf("outcome %d: weight must be positive, got %d", i, o.Weight)
		}
		if o.Multiplier < 0 {
			return nil, fmt.Errorf("outcome %d: multiplier must not be negative, got %f", i, o.Multiplier)
		}
		total += o.Weight
	}

	t := &Table{outcomes: outcomes, totalWeight: total}
	if ev := t.ExpectedValue(); ev >= 1.0 {
		return nil, fmt.Errorf("payout table expected value %.4f pays out at least what it takes in", ev)
	}
	return t, nil
}

// DefaultTable is the stock table: roughly 60% losing draws with a long tail
// up to 10x and an expected value just under 0.92.
func DefaultTable() *Table {
	t, err := NewTable([]Outcome{
		{Multiplier: 0, Weight: 60},
		{Multiplier: 1.5, Weight: 24},
		{Multiplier: 2.5, Weight: 12},
		{Multiplier: 5, Weight: 3},
		{Multiplier: 10, Weight: 1},
	})
	if err != nil {
		panic(err) // static table, cannot fail
	}
	return t
}

// Pick maps a uniform roll in [0,1) onto the weighted outcomes. The roll
// itself comes from outside the core; this table only turns it into a
// multiplier.
func (t *Table) Pick(roll float64) Outcome {
	n := int(roll * float64(t.totalWeight))
	for _, o := range t.outcomes {
		n -= o.Weight
		if n < 0 {
			return o
		}
	}
	return t.outcomes[len(t.outcomes)-1]
}

// MaxMultiplier is the largest possible payout multiplier. The bankroll
// guard divides the treasury by this to bound the acceptable stake.
func (t *Table) MaxMultiplier() float64 {
	max := 0.0
	for _, o := range t.outcomes {
		if o.Multiplier > max {
			max = o.Multiplier
		}
	}
	return max
}

// ExpectedValue is the mean multiplier over the weights.
func (t *Table) ExpectedValue() float64 {
	sum := 0.0
	for _, o := range t.outcomes {
		sum += o.Multiplier * float64(o.Weight)
	}
	return sum / float64(t.totalWeight)
}
