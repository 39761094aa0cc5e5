package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/freeeve/entangled/internal/elo"
	"github.com/freeeve/entangled/internal/model"
	"github.com/freeeve/entangled/internal/tournament"
	"github.com/freeeve/entangled/pkg/entangled"
)

func TestParseSizes(t *testing.T) {
	got, err := parseSizes(" 4, 5 ,6")
	if err != nil {
		t.Fatalf("parseSizes: %v", err)
	}
	if len(got) != 3 || got[0] != 4 || got[2] != 6 {
		t.Errorf("unexpected sizes %v", got)
	}
	if _, err := parseSizes("5,x"); err == nil {
		t.Error("expected error for non-numeric size")
	}
	if _, err := parseSizes(" , "); err == nil {
		t.Error("expected error for empty list")
	}
}

func TestJoinInts(t *testing.T) {
	if got := joinInts([]int{4, 5}); got != "4,5" {
		t.Errorf("joinInts = %q", got)
	}
}

func TestJSONLSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "games.jsonl")
	sink, err := newJSONLSink(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ctx := context.Background()
	for i := range 3 {
		rec := model.GameRecord{ID: "g", GameIndex: i, Winner: entangled.OutcomeTie}
		if err := sink.RecordGameResult(ctx, rec); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer f.Close()
	lines := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var rec model.GameRecord
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			t.Fatalf("line %d: %v", lines, err)
		}
		if rec.GameIndex != lines {
			t.Errorf("line %d has game index %d", lines, rec.GameIndex)
		}
		lines++
	}
	if lines != 3 {
		t.Errorf("expected 3 lines, got %d", lines)
	}
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	writeSummary(&buf, &tournament.Summary{
		TournamentID: "t1",
		Progress:     model.Progress{Completed: 3, Failed: 1, Total: 4},
		Matchups: []tournament.MatchupStats{
			{Key: "random vs minimax @ square-5/square-5-twin", Games: 3, WhiteWins: 3, BlackScore: 9, WhiteScore: 15},
		},
		Ratings: []elo.PlayerRating{{ID: "minimax", Rating: 1546.2, Games: 3}},
	})
	out := buf.String()
	for _, want := range []string{"3/4 games", "1 games failed", "avg score 3.0 / 5.0", "minimax", "1546.2"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}
