package bot

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/freeeve/entangled/pkg/entangled"
)

// Strategy chooses moves for one side of a game. Implementations never
// modify the engine they are given; look-ahead runs on clones.
type Strategy interface {
	Name() string
	// ChooseMove returns a legal symbol, or false when there is none.
	ChooseMove(e *entangled.Engine) (string, bool)
	// ShouldSwap is asked when White may take over Black's opening stone.
	ShouldSwap(e *entangled.Engine) bool
}

// Kind names a strategy variant.
type Kind string

const (
	KindRandom        Kind = "random"
	KindDeterministic Kind = "deterministic"
	KindGreedyHigh    Kind = "greedy-high"
	KindGreedyLow     Kind = "greedy-low"
	KindDefensive     Kind = "defensive"
	KindMinimax       Kind = "minimax"
	KindMCTS          Kind = "mcts"
	KindHybrid        Kind = "hybrid"
)

// Kinds lists every variant in a stable order.
func Kinds() []Kind {
	return []Kind{
		KindRandom, KindDeterministic, KindGreedyHigh, KindGreedyLow,
		KindDefensive, KindMinimax, KindMCTS, KindHybrid,
	}
}

var (
	ErrUnknownStrategy = errors.New("unknown strategy")
	ErrStrategyConfig  = errors.New("invalid strategy config")
)

// GreedyConfig configures both greedy variants.
type GreedyConfig struct {
	// Threshold is the fraction of the best value within which moves count
	// as tied and one is picked at random. Zero always takes the first best.
	Threshold float64
}

// MinimaxConfig configures alpha-beta search.
type MinimaxConfig struct {
	Depth int
}

// MCTSConfig configures the rollout search.
type MCTSConfig struct {
	Budget   time.Duration // wall-clock time per decision
	MoveCap  int           // rollout length limit; 0 plays to the end
	Rollouts int           // optional hard limit per decision; 0 means budget only
}

// HybridConfig switches between minimax and MCTS.
type HybridConfig struct {
	BranchLimit int // use minimax at or below this many legal moves
	Minimax     MinimaxConfig
	MCTS        MCTSConfig
}

// Spec is a strategy kind plus its configuration.
type Spec struct {
	Kind    Kind
	Greedy  GreedyConfig
	Minimax MinimaxConfig
	MCTS    MCTSConfig
	Hybrid  HybridConfig
}

const (
	defaultMinimaxDepth = 2
	defaultMCTSBudget   = 100 * time.Millisecond
	defaultMCTSMoveCap  = 100
	defaultBranchLimit  = 10
	defaultHybridDepth  = 3
)

// DefaultSpec returns kind with its default configuration.
func DefaultSpec(kind Kind) Spec {
	return Spec{
		Kind:    kind,
		Minimax: MinimaxConfig{Depth: defaultMinimaxDepth},
		MCTS:    MCTSConfig{Budget: defaultMCTSBudget, MoveCap: defaultMCTSMoveCap},
		Hybrid: HybridConfig{
			BranchLimit: defaultBranchLimit,
			Minimax:     MinimaxConfig{Depth: defaultHybridDepth},
			MCTS:        MCTSConfig{Budget: defaultMCTSBudget, MoveCap: defaultMCTSMoveCap},
		},
	}
}

// ParseSpec parses a strategy id of the form "kind" or "kind:key=value,...".
//
//	greedy-high:threshold=0.1
//	minimax:depth=3
//	mcts:budget=200ms,cap=80,rollouts=500
//	hybrid:branch=12,depth=3,budget=150ms,cap=80
func ParseSpec(id string) (Spec, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	name, params, _ := strings.Cut(id, ":")
	kind := Kind(name)
	if !kind.valid() {
		return Spec{}, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
	spec := DefaultSpec(kind)
	if params == "" {
		return spec, spec.Validate()
	}
	for _, kv := range strings.Split(params, ",") {
		key, val, ok := strings.Cut(strings.TrimSpace(kv), "=")
		if !ok {
			return Spec{}, fmt.Errorf("%w: %s: malformed parameter %q", ErrStrategyConfig, kind, kv)
		}
		if err := spec.set(key, val); err != nil {
			return Spec{}, fmt.Errorf("%w: %s: %s: %v", ErrStrategyConfig, kind, key, err)
		}
	}
	return spec, spec.Validate()
}

// SplitIDs splits a comma-separated list of strategy ids. Parameter lists
// stay attached to their id: an item holding '=' but no ':' continues the
// previous id, so "random,mcts:rollouts=50,cap=20" yields two ids.
func SplitIDs(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		switch {
		case p == "":
		case len(out) > 0 && strings.Contains(p, "=") && !strings.Contains(p, ":"):
			out[len(out)-1] += "," + p
		default:
			out = append(out, p)
		}
	}
	return out
}

func (k Kind) valid() bool {
	for _, v := range Kinds() {
		if k == v {
			return true
		}
	}
	return false
}

func (s *Spec) set(key, val string) error {
	switch {
	case key == "threshold" && (s.Kind == KindGreedyHigh || s.Kind == KindGreedyLow):
		f, err := strconv.ParseFloat(val, 64)
		s.Greedy.Threshold = f
		return err
	case key == "depth" && s.Kind == KindMinimax:
		return setInt(&s.Minimax.Depth, val)
	case key == "depth" && s.Kind == KindHybrid:
		return setInt(&s.Hybrid.Minimax.Depth, val)
	case key == "branch" && s.Kind == KindHybrid:
		return setInt(&s.Hybrid.BranchLimit, val)
	case s.Kind == KindMCTS:
		return s.MCTS.set(key, val)
	case s.Kind == KindHybrid:
		return s.Hybrid.MCTS.set(key, val)
	}
	return errors.New("unknown parameter")
}

func (c *MCTSConfig) set(key, val string) error {
	switch key {
	case "budget":
		d, err := time.ParseDuration(val)
		c.Budget = d
		return err
	case "cap":
		return setInt(&c.MoveCap, val)
	case "rollouts":
		return setInt(&c.Rollouts, val)
	}
	return errors.New("unknown parameter")
}

func setInt(dst *int, val string) error {
	n, err := strconv.Atoi(val)
	*dst = n
	return err
}

// Validate checks the configuration of s.Kind.
func (s Spec) Validate() error {
	switch s.Kind {
	case KindRandom, KindDeterministic, KindDefensive:
		return nil
	case KindGreedyHigh, KindGreedyLow:
		if s.Greedy.Threshold < 0 || s.Greedy.Threshold > 1 {
			return fmt.Errorf("%w: threshold %v outside [0,1]", ErrStrategyConfig, s.Greedy.Threshold)
		}
		return nil
	case KindMinimax:
		return s.Minimax.validate()
	case KindMCTS:
		return s.MCTS.validate()
	case KindHybrid:
		if s.Hybrid.BranchLimit < 1 {
			return fmt.Errorf("%w: branch limit %d < 1", ErrStrategyConfig, s.Hybrid.BranchLimit)
		}
		if err := s.Hybrid.Minimax.validate(); err != nil {
			return err
		}
		return s.Hybrid.MCTS.validate()
	}
	return fmt.Errorf("%w: %q", ErrUnknownStrategy, s.Kind)
}

func (c MinimaxConfig) validate() error {
	if c.Depth < 1 || c.Depth > 8 {
		return fmt.Errorf("%w: depth %d outside 1-8", ErrStrategyConfig, c.Depth)
	}
	return nil
}

func (c MCTSConfig) validate() error {
	if c.Budget <= 0 && c.Rollouts <= 0 {
		return fmt.Errorf("%w: mcts needs a time budget or a rollout limit", ErrStrategyConfig)
	}
	if c.MoveCap < 0 || c.Rollouts < 0 {
		return fmt.Errorf("%w: negative mcts limit", ErrStrategyConfig)
	}
	return nil
}

// String returns the canonical id for s, which ParseSpec accepts.
func (s Spec) String() string {
	switch s.Kind {
	case KindGreedyHigh, KindGreedyLow:
		if s.Greedy.Threshold > 0 {
			return fmt.Sprintf("%s:threshold=%g", s.Kind, s.Greedy.Threshold)
		}
	case KindMinimax:
		return fmt.Sprintf("%s:depth=%d", s.Kind, s.Minimax.Depth)
	case KindMCTS:
		return fmt.Sprintf("%s:%s", s.Kind, s.MCTS.params())
	case KindHybrid:
		return fmt.Sprintf("%s:branch=%d,depth=%d,%s", s.Kind,
			s.Hybrid.BranchLimit, s.Hybrid.Minimax.Depth, s.Hybrid.MCTS.params())
	}
	return string(s.Kind)
}

func (c MCTSConfig) params() string {
	p := fmt.Sprintf("budget=%s,cap=%d", c.Budget, c.MoveCap)
	if c.Rollouts > 0 {
		p += fmt.Sprintf(",rollouts=%d", c.Rollouts)
	}
	return p
}

// NewStrategy validates spec and builds the strategy. rng may be nil for
// kinds that never draw random numbers; the others get a time-seeded source.
func NewStrategy(spec Spec, rng *rand.Rand) (Strategy, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = NewRand(0)
	}
	name := spec.String()
	switch spec.Kind {
	case KindRandom:
		return &RandomStrategy{rng: rng}, nil
	case KindDeterministic:
		return DeterministicStrategy{}, nil
	case KindGreedyHigh:
		return &GreedyStrategy{name: name, low: false, cfg: spec.Greedy, rng: rng}, nil
	case KindGreedyLow:
		return &GreedyStrategy{name: name, low: true, cfg: spec.Greedy, rng: rng}, nil
	case KindDefensive:
		return DefensiveStrategy{}, nil
	case KindMinimax:
		return &MinimaxStrategy{name: name, cfg: spec.Minimax}, nil
	case KindMCTS:
		return NewMCTSStrategy(name, spec.MCTS, rng), nil
	case KindHybrid:
		return &HybridStrategy{
			name:    name,
			limit:   spec.Hybrid.BranchLimit,
			minimax: &MinimaxStrategy{name: name, cfg: spec.Hybrid.Minimax},
			mcts:    NewMCTSStrategy(name, spec.Hybrid.MCTS, rng),
		}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, spec.Kind)
}

// StrategyForID parses id and builds the strategy in one step.
func StrategyForID(id string, rng *rand.Rand) (Strategy, error) {
	spec, err := ParseSpec(id)
	if err != nil {
		return nil, err
	}
	return NewStrategy(spec, rng)
}
