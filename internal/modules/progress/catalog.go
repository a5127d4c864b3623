package progress

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Metric selects which aggregate a rule is measured against.
type Metric string

const (
	MetricHours       Metric = "hours"
	MetricStreak      Metric = "streak"
	MetricInstruments Metric = "instruments"
	MetricMaxBPM      Metric = "max_bpm"
	MetricCompletions Metric = "completions"
	MetricAIUsage     Metric = "ai_usage"
)

func (m Metric) Valid() bool {
	switch m {
	case MetricHours, MetricStreak, MetricInstruments, MetricMaxBPM, MetricCompletions, MetricAIUsage:
		return true
	default:
		return false
	}
}

var ErrUnknownMetric = errors.New("unknown metric")

// Rule is one declarative catalog entry. Binary rules report 0 or 100
// instead of a ratio.
type Rule struct {
	Code        string  `yaml:"code"`
	Category    string  `yaml:"category"`
	Metric      Metric  `yaml:"metric"`
	Threshold   float64 `yaml:"threshold"`
	Binary      bool    `yaml:"binary"`
	Title       string  `yaml:"title"`
	Description string  `yaml:"description"`
	Icon        string  `yaml:"icon"`
}

// StoredThreshold is the threshold as persisted on the achievement row.
// Hours rules are stored in minutes so the column is always a whole number.
func (r Rule) StoredThreshold() int {
	if r.Metric == MetricHours {
		return int(math.Round(r.Threshold * 60))
	}
	return int(math.Round(r.Threshold))
}

// Catalog is an immutable, ordered set of rules keyed by code.
type Catalog struct {
	rules  []Rule
	byCode map[string]int
}

func NewCatalog(rules []Rule) (Catalog, error) {
	c := Catalog{
		rules:  make([]Rule, 0, len(rules)),
		byCode: make(map[string]int, len(rules)),
	}
	for i, r := range rules {
		r.Code = strings.TrimSpace(r.Code)
		if r.Code == "" {
			return Catalog{}, fmt.Errorf("rule %d: empty code", i)
		}
		if _, dup := c.byCode[r.Code]; dup {
			return Catalog{}, fmt.Errorf("rule %q: duplicate code", r.Code)
		}
		if !r.Metric.Valid() {
			return Catalog{}, fmt.Errorf("rule %q: %w %q", r.Code, ErrUnknownMetric, r.Metric)
		}
		if r.Threshold <= 0 {
			return Catalog{}, fmt.Errorf("rule %q: threshold must be positive", r.Code)
		}
		c.byCode[r.Code] = len(c.rules)
		c.rules = append(c.rules, r)
	}
	return c, nil
}

func (c Catalog) Len() int { return len(c.rules) }

// Rules returns a copy of the rules in catalog order.
func (c Catalog) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

func (c Catalog) Lookup(code string) (Rule, bool) {
	i, ok := c.byCode[code]
	if !ok {
		return Rule{}, false
	}
	return c.rules[i], true
}

//go:embed catalog.yaml
var defaultCatalogYAML []byte

type catalogFile struct {
	Achievements []Rule `yaml:"achievements"`
}

// ParseCatalog reads a catalog document in the embedded YAML layout.
func ParseCatalog(raw []byte) (Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return Catalog{}, fmt.Errorf("parse catalog: %w", err)
	}
	return NewCatalog(f.Achievements)
}

var defaultCatalog = sync.OnceValues(func() (Catalog, error) {
	return ParseCatalog(defaultCatalogYAML)
})

// DefaultCatalog returns the built-in 23-rule catalog.
func DefaultCatalog() (Catalog, error) {
	return defaultCatalog()
}
