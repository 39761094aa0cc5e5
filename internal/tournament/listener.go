package tournament

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/entangled/internal/model"
	"github.com/freeeve/entangled/internal/repository"
)

const cacheTimeout = 2 * time.Second

// CacheListener mirrors live progress, recent results and ratings into a
// ProgressCache. Errors are logged and otherwise ignored.
type CacheListener struct {
	cache repository.ProgressCache
}

// NewCacheListener wraps cache as a progress listener.
func NewCacheListener(cache repository.ProgressCache) *CacheListener {
	return &CacheListener{cache: cache}
}

func (c *CacheListener) OnProgress(p model.Progress) {
	ctx, cancel := context.WithTimeout(context.Background(), cacheTimeout)
	defer cancel()
	if err := c.cache.SetProgress(ctx, p); err != nil {
		log.Warn().Err(err).Str("tournament", p.TournamentID).Msg("Cache progress update failed")
	}
}

func (c *CacheListener) OnGameResult(rec model.GameRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), cacheTimeout)
	defer cancel()
	// History is large and only kept in durable storage.
	rec.History = nil
	if err := c.cache.PushResult(ctx, rec); err != nil {
		log.Warn().Err(err).Str("game", rec.ID).Msg("Cache result push failed")
	}
}

func (c *CacheListener) OnRatings(ratings []model.Rating) {
	if len(ratings) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), cacheTimeout)
	defer cancel()
	if err := c.cache.SetRatings(ctx, ratings[0].TournamentID, ratings); err != nil {
		log.Warn().Err(err).Msg("Cache ratings update failed")
	}
}
