package ui

import (
	"github.com/automoto/orbitfall/shared/messages"
	"github.com/automoto/orbitfall/shared/netconfig"
	"github.com/charmbracelet/log"
)

// LogView reports lobby state as log lines. It is the fallback when stdout
// is not a terminal.
type LogView struct {
	log *log.Logger
}

func NewLogView(logger *log.Logger) *LogView {
	return &LogView{log: logger.WithPrefix("lobby")}
}

func (v *LogView) ShowNotInLobby(reason string) {
	v.log.Info("not in lobby", "reason", reason)
}

func (v *LogView) ShowLobbyStatus(room netconfig.RoomID, members, size int) {
	v.log.Info("lobby status", "room", room, "players", members, "size", size)
}

func (v *LogView) ShowGameStarted(seed uint32) {
	v.log.Info("game started", "seed", seed)
}

func (v *LogView) ShowScore(score messages.GameScore) {
	v.log.Info("score", "red", score.Scores[netconfig.TeamRed], "blue", score.Scores[netconfig.TeamBlue], "to", score.MaxScore)
}

func (v *LogView) ShowGameResult(score messages.GameScore, team netconfig.Team) {
	v.log.Info("game over", "result", Result(score, team), "red", score.Scores[netconfig.TeamRed], "blue", score.Scores[netconfig.TeamBlue])
}

// Result is "victory", "defeat" or "draw" from team's point of view.
func Result(score messages.GameScore, team netconfig.Team) string {
	leader, ok := score.Leader()
	switch {
	case !ok:
		return "draw"
	case leader == team:
		return "victory"
	default:
		return "defeat"
	}
}
