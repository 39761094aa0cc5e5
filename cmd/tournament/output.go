package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/freeeve/entangled/internal/model"
	"github.com/freeeve/entangled/internal/tournament"
)

func printSummary(s *tournament.Summary) {
	writeSummary(os.Stdout, s)
}

func writeSummary(w io.Writer, s *tournament.Summary) {
	p := s.Progress
	fmt.Fprintf(w, "\nTournament %s: %d/%d games in %s\n", s.TournamentID, p.Completed, p.Total, s.Elapsed.Round(time.Millisecond))
	if p.Failed > 0 {
		fmt.Fprintf(w, "  (%d games failed)\n", p.Failed)
	}

	fmt.Fprintf(w, "\nMatchups:\n")
	for _, m := range s.Matchups {
		avgB, avgW := m.AvgScores()
		fmt.Fprintf(w, "  %-60s  B %3d  W %3d  T %3d  -- avg score %.1f / %.1f\n",
			m.Key, m.BlackWins, m.WhiteWins, m.Ties, avgB, avgW)
	}

	fmt.Fprintf(w, "\nRatings:\n")
	for i, r := range s.Ratings {
		fmt.Fprintf(w, "  %2d. %-40s %7.1f  ±%5.1f  (%d games)\n", i+1, r.ID, r.Rating, r.Confidence, r.Games)
	}
}

func printJSON(s *tournament.Summary) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(s)
}

// jsonlSink appends one JSON game record per line.
type jsonlSink struct {
	mu  sync.Mutex
	f   *os.File
	w   *bufio.Writer
	enc *json.Encoder
}

func newJSONLSink(path string) (*jsonlSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	w := bufio.NewWriter(f)
	return &jsonlSink{f: f, w: w, enc: json.NewEncoder(w)}, nil
}

func (s *jsonlSink) RecordGameResult(_ context.Context, rec model.GameRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.Encode(rec)
}

func (s *jsonlSink) Flush(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Flush()
}

func (s *jsonlSink) Close() error {
	if err := s.Flush(context.Background()); err != nil {
		s.f.Close()
		return err
	}
	return s.f.Close()
}
