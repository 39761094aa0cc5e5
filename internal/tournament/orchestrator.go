// Package tournament runs many strategy-vs-strategy games on a fixed pool of
// workers and aggregates the results.
//
// A single scheduler goroutine owns the matchup cursor and all counters.
// Each unit plays one game at a time and only ever reports a finished game
// back; the scheduler then hands it the next game. Results are processed in
// completion order, so Elo ratings depend on scheduling and are not
// reproducible run to run.
package tournament

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/freeeve/entangled/internal/bot"
	"github.com/freeeve/entangled/internal/elo"
	"github.com/freeeve/entangled/internal/model"
	"github.com/freeeve/entangled/pkg/entangled"
)

// ResultSink stores finished games. Flush is called once when the run ends.
type ResultSink interface {
	RecordGameResult(ctx context.Context, rec model.GameRecord) error
	Flush(ctx context.Context) error
}

// ProgressListener is notified after every processed game. Calls come from
// the scheduler goroutine and should not block.
type ProgressListener interface {
	OnProgress(p model.Progress)
	OnGameResult(rec model.GameRecord)
}

// RatingListener receives the rating table after every rated game.
// Not all listeners support ratings; the orchestrator uses a type assertion.
type RatingListener interface {
	OnRatings(ratings []model.Rating)
}

// Config configures a tournament.
type Config struct {
	ID              string        `json:"id,omitempty"` // empty = generated
	Name            string        `json:"name,omitempty"`
	Strategies      []string      `json:"strategies"`
	Boards          []BoardConfig `json:"boards"`
	GamesPerMatchup int           `json:"gamesPerMatchup"`
	Workers         int           `json:"workers"`
	Shuffle         bool          `json:"shuffle,omitempty"`
	Seed            int64         `json:"seed,omitempty"` // base seed; unit i uses Seed+i. 0 = time-seeded
	RecordHistory   bool          `json:"recordHistory,omitempty"`

	// Layouts resolves board ids; StandardLayouts when nil.
	Layouts entangled.LayoutProvider `json:"-"`
}

// Record encodes the configuration for the tournaments table.
func (c Config) Record() ([]byte, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode tournament config: %w", err)
	}
	return b, nil
}

// Job is one game to play.
type Job struct {
	Matchup   Matchup
	GameIndex int
}

type outcome struct {
	unit   int
	job    Job
	result *bot.GameResult
	err    error
}

type playFunc func(ctx context.Context, job Job, rng *rand.Rand) (*bot.GameResult, error)

// Orchestrator schedules the games of one tournament.
type Orchestrator struct {
	cfg       Config
	id        string
	matchups  []Matchup
	ratings   *elo.System
	sinks     []ResultSink
	listeners []ProgressListener
	play      playFunc

	paused atomic.Bool
	wake   chan struct{}

	mu       sync.Mutex // guards progress, stats, started
	progress model.Progress
	stats    map[string]*MatchupStats
	started  time.Time
}

// New validates cfg and prepares the matchup list.
func New(cfg Config) (*Orchestrator, error) {
	if len(cfg.Strategies) == 0 {
		return nil, errors.New("tournament: no strategies")
	}
	if len(cfg.Boards) == 0 {
		return nil, errors.New("tournament: no boards")
	}
	if cfg.GamesPerMatchup < 1 {
		return nil, fmt.Errorf("tournament: games per matchup %d < 1", cfg.GamesPerMatchup)
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Layouts == nil {
		cfg.Layouts = entangled.StandardLayouts()
	}
	for _, id := range cfg.Strategies {
		if _, err := bot.ParseSpec(id); err != nil {
			return nil, fmt.Errorf("tournament: strategy %q: %w", id, err)
		}
	}
	for _, b := range cfg.Boards {
		if _, _, err := b.resolve(cfg.Layouts); err != nil {
			return nil, fmt.Errorf("tournament: board %s: %w", b.Key(), err)
		}
	}
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}

	o := &Orchestrator{
		cfg:      cfg,
		id:       cfg.ID,
		matchups: GenerateMatchups(cfg.Strategies, cfg.Boards, cfg.Shuffle),
		ratings:  elo.NewSystem(),
		wake:     make(chan struct{}, 1),
		stats:    make(map[string]*MatchupStats),
	}
	o.play = o.playGame
	o.progress = model.Progress{
		TournamentID: o.id,
		Total:        len(o.matchups) * cfg.GamesPerMatchup,
	}
	return o, nil
}

// ID returns the tournament id.
func (o *Orchestrator) ID() string { return o.id }

// Matchups returns the scheduled matchups in play order.
func (o *Orchestrator) Matchups() []Matchup { return o.matchups }

// Ratings returns the live rating table.
func (o *Orchestrator) Ratings() *elo.System { return o.ratings }

// AddSink registers a result sink. Call before Run.
func (o *Orchestrator) AddSink(s ResultSink) { o.sinks = append(o.sinks, s) }

// AddListener registers a progress listener. Call before Run.
func (o *Orchestrator) AddListener(l ProgressListener) { o.listeners = append(o.listeners, l) }

// Pause stops new games from being scheduled. Games in flight finish.
func (o *Orchestrator) Pause() {
	o.paused.Store(true)
	o.poke()
}

// Resume restarts scheduling and refills every idle unit.
func (o *Orchestrator) Resume() {
	o.paused.Store(false)
	o.poke()
}

func (o *Orchestrator) poke() {
	select {
	case o.wake <- struct{}{}:
	default:
	}
}

// Progress returns the current progress.
func (o *Orchestrator) Progress() model.Progress {
	o.mu.Lock()
	defer o.mu.Unlock()
	p := o.progress
	p.Paused = o.paused.Load()
	return p
}

// Summary returns progress, per-matchup stats and ratings.
func (o *Orchestrator) Summary() *Summary {
	o.mu.Lock()
	s := &Summary{
		TournamentID: o.id,
		Progress:     o.progress,
		Matchups:     sortedStats(o.stats),
	}
	if !o.started.IsZero() {
		s.Elapsed = time.Since(o.started)
	}
	o.mu.Unlock()
	s.Progress.Paused = o.paused.Load()
	s.Ratings = o.ratings.Snapshot()
	return s
}

// Run plays every game and returns the final summary. Cancelling ctx stops
// scheduling; Run then returns the partial summary with the context error.
// Failed games are logged and counted, never retried.
func (o *Orchestrator) Run(ctx context.Context) (*Summary, error) {
	o.mu.Lock()
	o.started = time.Now()
	o.mu.Unlock()

	base := o.cfg.Seed
	if base == 0 {
		base = time.Now().UnixNano()
	}

	n := o.cfg.Workers
	results := make(chan outcome)
	assign := make([]chan Job, n)
	var g errgroup.Group
	for i := range n {
		assign[i] = make(chan Job, 1)
		rng := bot.NewRand(base + int64(i))
		g.Go(func() error {
			for job := range assign[i] {
				res, err := o.play(ctx, job, rng)
				select {
				case results <- outcome{unit: i, job: job, result: res, err: err}:
				case <-ctx.Done():
					return nil
				}
			}
			return nil
		})
	}

	log.Info().
		Str("tournament", o.id).
		Int("matchups", len(o.matchups)).
		Int("games", o.progress.Total).
		Int("workers", n).
		Msg("Tournament started")

	var (
		cursor   int
		issued   = make([]int, len(o.matchups))
		idle     = make([]int, 0, n)
		inflight int
	)
	for i := n - 1; i >= 0; i-- {
		idle = append(idle, i)
	}

	// next returns the next unplayed game, advancing past full matchups.
	next := func() (Job, bool) {
		for cursor < len(o.matchups) && issued[cursor] >= o.cfg.GamesPerMatchup {
			cursor++
		}
		if cursor == len(o.matchups) {
			return Job{}, false
		}
		job := Job{Matchup: o.matchups[cursor], GameIndex: issued[cursor]}
		issued[cursor]++
		return job, true
	}
	exhausted := func() bool {
		for cursor < len(o.matchups) && issued[cursor] >= o.cfg.GamesPerMatchup {
			cursor++
		}
		return cursor == len(o.matchups)
	}
	dispatch := func() {
		for !o.paused.Load() && len(idle) > 0 {
			job, ok := next()
			if !ok {
				return
			}
			u := idle[len(idle)-1]
			idle = idle[:len(idle)-1]
			assign[u] <- job
			inflight++
		}
	}

	var runErr error
	dispatch()
loop:
	for inflight > 0 || !exhausted() {
		select {
		case out := <-results:
			inflight--
			idle = append(idle, out.unit)
			o.handle(ctx, out)
			dispatch()
		case <-o.wake:
			o.notifyProgress()
			dispatch()
		case <-ctx.Done():
			runErr = ctx.Err()
			break loop
		}
	}

	for _, ch := range assign {
		close(ch)
	}
	_ = g.Wait()

	flushCtx := context.WithoutCancel(ctx)
	for _, s := range o.sinks {
		if err := s.Flush(flushCtx); err != nil {
			log.Error().Err(err).Str("tournament", o.id).Msg("Result sink flush failed")
		}
	}

	summary := o.Summary()
	log.Info().
		Str("tournament", o.id).
		Int("completed", summary.Progress.Completed).
		Int("failed", summary.Progress.Failed).
		Dur("elapsed", summary.Elapsed).
		Msg("Tournament finished")
	return summary, runErr
}

// handle processes one finished game on the scheduler goroutine.
func (o *Orchestrator) handle(ctx context.Context, out outcome) {
	if out.err != nil {
		log.Error().Err(out.err).
			Str("matchup", out.job.Matchup.Key()).
			Int("game", out.job.GameIndex).
			Msg("Game failed")
		o.mu.Lock()
		o.progress.Failed++
		o.updateETA()
		o.mu.Unlock()
		o.notifyProgress()
		return
	}

	rec := o.record(out.job, out.result)
	key := out.job.Matchup.Key()

	o.mu.Lock()
	st, ok := o.stats[key]
	if !ok {
		st = &MatchupStats{
			Key:   key,
			Black: out.job.Matchup.Black,
			White: out.job.Matchup.White,
			Board: out.job.Matchup.Board.Key(),
		}
		o.stats[key] = st
	}
	st.add(rec)
	o.progress.Completed++
	o.updateETA()
	o.mu.Unlock()

	rated := !out.job.Matchup.SelfPlay()
	if rated {
		o.ratings.UpdateRating(out.job.Matchup.Black, out.job.Matchup.White, ScoreFor(rec.Winner))
	}

	for _, s := range o.sinks {
		if err := s.RecordGameResult(ctx, rec); err != nil {
			log.Warn().Err(err).Str("game", rec.ID).Msg("Result sink rejected game")
		}
	}

	log.Debug().
		Str("matchup", key).
		Int("game", out.job.GameIndex).
		Str("winner", string(rec.Winner)).
		Int("black", rec.BlackScore).
		Int("white", rec.WhiteScore).
		Msg("Game completed")

	var ratings []model.Rating
	if rated {
		ratings = RatingRows(o.id, o.ratings.Snapshot())
	}
	for _, l := range o.listeners {
		l.OnGameResult(rec)
		if rl, ok := l.(RatingListener); ok && rated {
			rl.OnRatings(ratings)
		}
	}
	o.notifyProgress()
}

// updateETA extrapolates the remaining time from the average so far.
// Callers hold o.mu.
func (o *Orchestrator) updateETA() {
	done := o.progress.Completed + o.progress.Failed
	if done == 0 {
		return
	}
	perGame := time.Since(o.started).Seconds() / float64(done)
	o.progress.ETASeconds = perGame * float64(o.progress.Total-done)
}

func (o *Orchestrator) notifyProgress() {
	p := o.Progress()
	for _, l := range o.listeners {
		l.OnProgress(p)
	}
}

func (o *Orchestrator) record(job Job, r *bot.GameResult) model.GameRecord {
	return model.GameRecord{
		ID:           r.ID,
		TournamentID: o.id,
		MatchupKey:   job.Matchup.Key(),
		Black:        job.Matchup.Black,
		White:        job.Matchup.White,
		BoardKey:     job.Matchup.Board.Key(),
		GameIndex:    job.GameIndex,
		Winner:       r.Winner,
		BlackScore:   r.Scores.Black,
		WhiteScore:   r.Scores.White,
		TieBreak:     r.TieBreak,
		Moves:        r.Moves,
		History:      r.History,
		DurationMS:   r.Duration.Milliseconds(),
		CreatedAt:    time.Now().UTC(),
	}
}

// playGame builds fresh strategies for one game, seeded from the unit's
// source, and plays it.
func (o *Orchestrator) playGame(ctx context.Context, job Job, rng *rand.Rand) (*bot.GameResult, error) {
	black, err := bot.StrategyForID(job.Matchup.Black, bot.NewRand(rng.Int63()))
	if err != nil {
		return nil, err
	}
	white, err := bot.StrategyForID(job.Matchup.White, bot.NewRand(rng.Int63()))
	if err != nil {
		return nil, err
	}
	l1, l2, err := job.Matchup.Board.resolve(o.cfg.Layouts)
	if err != nil {
		return nil, err
	}
	return bot.RunGame(ctx, bot.GameConfig{
		Black:          black,
		White:          white,
		Board1:         l1,
		Board2:         l2,
		StartingStones: job.Matchup.Board.StartingStones,
		Superposition:  job.Matchup.Board.Superposition,
		SwapRule:       job.Matchup.Board.SwapRule,
		RecordHistory:  o.cfg.RecordHistory,
		Rand:           bot.NewRand(rng.Int63()),
	})
}
