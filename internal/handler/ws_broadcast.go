package handler

import (
	"github.com/freeeve/entangled/internal/model"
	"github.com/freeeve/entangled/internal/tournament"
)

// OnProgress implements tournament.ProgressListener.
func (h *Hub) OnProgress(p model.Progress) {
	h.BroadcastToTournament(p.TournamentID, WSEvent{
		Type:         EventProgress,
		TournamentID: p.TournamentID,
		Data:         p,
	})
}

// OnGameResult implements tournament.ProgressListener. Position history is
// not broadcast.
func (h *Hub) OnGameResult(rec model.GameRecord) {
	rec.History = nil
	h.BroadcastToTournament(rec.TournamentID, WSEvent{
		Type:         EventGameResult,
		TournamentID: rec.TournamentID,
		Data:         rec,
	})
}

// OnRatings implements tournament.RatingListener.
func (h *Hub) OnRatings(ratings []model.Rating) {
	if len(ratings) == 0 {
		return
	}
	id := ratings[0].TournamentID
	h.BroadcastToTournament(id, WSEvent{
		Type:         EventRatings,
		TournamentID: id,
		Data:         ratings,
	})
}

// TournamentFinished announces the final summary.
func (h *Hub) TournamentFinished(s *tournament.Summary) {
	h.BroadcastToTournament(s.TournamentID, WSEvent{
		Type:         EventTournamentFinished,
		TournamentID: s.TournamentID,
		Data:         s,
	})
}

var (
	_ tournament.ProgressListener = (*Hub)(nil)
	_ tournament.RatingListener   = (*Hub)(nil)
)
