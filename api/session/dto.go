package session

import "github.com/beka-birhanu/vinom-warden/game/guard"

// ScenarioRequest selects the scenario for a new session or a preview.
// Scenario is a YAML document applied over the server's scenario; Seed overrides the seed.
type ScenarioRequest struct {
	Seed     *int64 `json:"seed"`
	Scenario string `json:"scenario"`
}

// CreateSessionResponse carries the id of a started session.
type CreateSessionResponse struct {
	ID string `json:"id"`
}

// WorldResponse is the tile layout of a running session.
type WorldResponse struct {
	Rows []string `json:"rows"`
}

// TransitionsResponse lists squad state changes, oldest first.
type TransitionsResponse struct {
	Transitions []TransitionDTO `json:"transitions"`
}

// TransitionDTO is a guard.Transition with readable state names.
type TransitionDTO struct {
	SquadID  string     `json:"squad_id"`
	From     string     `json:"from"`
	To       string     `json:"to"`
	Tick     uint64     `json:"tick"`
	LastSeen [2]float64 `json:"last_seen"`
	Agent    int        `json:"agent"`
}

func toTransitionDTOs(ts []guard.Transition) []TransitionDTO {
	out := make([]TransitionDTO, len(ts))
	for k, t := range ts {
		out[k] = TransitionDTO{
			SquadID:  t.SquadID,
			From:     t.From.String(),
			To:       t.To.String(),
			Tick:     t.Tick,
			LastSeen: [2]float64{t.LastSeen.X, t.LastSeen.Z},
			Agent:    t.Agent,
		}
	}
	return out
}
