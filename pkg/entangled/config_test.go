package entangled

import (
	"errors"
	"testing"
)

func TestParseStartingStones(t *testing.T) {
	stones, skipped := ParseStartingStones("bm1,WC2,,QQ1,B12,BX3,")
	if len(stones) != 3 {
		t.Fatalf("expected 3 stones, got %d: %+v", len(stones), stones)
	}
	want := []StartingStone{
		{Color: Black, Symbol: "M", Board: Board1},
		{Color: White, Symbol: "C", Board: Board2},
		{Color: Black, Symbol: "1", Board: Board2},
	}
	for i := range want {
		if stones[i] != want[i] {
			t.Errorf("stone %d: expected %+v, got %+v", i, want[i], stones[i])
		}
	}
	if len(skipped) != 3 {
		t.Errorf("expected 3 skipped tokens, got %v", skipped)
	}
}

func TestParseStartingStonesEmpty(t *testing.T) {
	stones, skipped := ParseStartingStones("  ,, ")
	if len(stones) != 0 || len(skipped) != 0 {
		t.Errorf("expected nothing from an empty config, got %v %v", stones, skipped)
	}
}

func TestParseSuperposition(t *testing.T) {
	cfg, err := ParseSuperposition("a, rng ,B,RNG,")
	if err != nil {
		t.Fatalf("ParseSuperposition: %v", err)
	}
	if cfg.Random != 2 {
		t.Errorf("expected 2 random draws, got %d", cfg.Random)
	}
	if len(cfg.Symbols) != 2 || cfg.Symbols[0] != "A" || cfg.Symbols[1] != "B" {
		t.Errorf("expected [A B], got %v", cfg.Symbols)
	}
}

func TestParseSuperpositionDuplicate(t *testing.T) {
	_, err := ParseSuperposition("A,a")
	var ce *ConfigError
	if !errors.As(err, &ce) || ce.Token != "A" {
		t.Fatalf("expected duplicate error for A, got %v", err)
	}
}
