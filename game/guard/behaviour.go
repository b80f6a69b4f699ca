package guard

import (
	"fmt"
	"time"

	"github.com/beka-birhanu/vinom-warden/game"
)

// patrol walks routes until any agent perceives the intruder. The first agent to
// spot it ends the pass: later agents get no patrol update this tick.
func (s *Squad) patrol(snap game.TargetSnapshot) {
	for _, a := range s.agents {
		if s.perceive(a, snap) {
			s.enterAttack(snap.Position, a.ID)
			return
		}
		s.updateDestination(a)
	}
}

// updateDestination advances a patroller once it stops and pulls a reserve back home.
func (s *Squad) updateDestination(a *Agent) {
	switch a.Kind {
	case Patroller:
		if !a.stationary(s.cfg.StationarySpeed) {
			return
		}
		a.RouteIndex = (a.RouteIndex + 1) % len(a.Route)
		s.moveTo(a, a.Route[a.RouteIndex])
	case Reserve:
		if a.Position.Dist(a.Home) > s.cfg.ReserveLeash {
			s.moveTo(a, a.Home)
		}
	}
}

// attack closes in on the last seen position and strikes when in range.
func (s *Squad) attack(snap game.TargetSnapshot, dt time.Duration) {
	anySeen := false
	for _, a := range s.agents {
		a.Cooldown -= dt
		seen := s.perceive(a, snap)
		anySeen = anySeen || seen

		if a.Position.Dist(s.lastSeen) <= s.cfg.AttackDistance {
			s.halt(a)
			a.Heading.Face(a.Position, s.lastSeen)
			if seen && a.Cooldown <= 0 {
				s.sink.ApplyDamage(s.cfg.AttackDamage)
				a.Cooldown = s.cfg.AttackCooldown
				s.log.Debug(fmt.Sprintf("squad %s agent %d hit for %d", s.id, a.ID, s.cfg.AttackDamage))
			}
			continue
		}

		chase := s.lastSeen
		if seen {
			chase = snap.Position
		}
		s.moveTo(a, chase)
	}

	if anySeen {
		s.visibleTimer = 0
		s.lastSeen = snap.Position
		return
	}

	s.visibleTimer += dt
	if s.visibleTimer >= s.cfg.TimeToLosePlayer {
		s.enterHunt()
	}
}

// hunt searches ever wider rings around the last seen position, one stage at a time.
func (s *Squad) hunt(snap game.TargetSnapshot, dt time.Duration) {
	stage := s.cfg.HuntStages[s.stage]
	for _, a := range s.agents {
		if s.perceive(a, snap) {
			s.enterAttack(snap.Position, a.ID)
			return
		}
		if a.stationary(s.cfg.StationarySpeed) {
			s.search(a, stage.Radius)
		}
	}

	s.stageTimer += dt
	if s.stageTimer < stage.Duration {
		return
	}

	s.stage++
	s.stageTimer = 0
	if s.stage == 1 && s.cfg.AlarmPolicy == StopAfterFirstStage {
		s.stopAlarm()
	}
	if s.stage == len(s.cfg.HuntStages) {
		s.enterPatrol()
		return
	}
	s.log.Debug(fmt.Sprintf("squad %s hunt stage %d radius %.1f", s.id, s.stage, s.cfg.HuntStages[s.stage].Radius))
}

// search picks a random destination within radius of the last seen position.
// When every retry fails the agent keeps its previous destination.
func (s *Squad) search(a *Agent, radius float64) {
	for range s.cfg.PathRetries {
		p := s.bounds.Clamp(game.Vec2{
			X: s.lastSeen.X + (s.rng.Float64()*2-1)*radius,
			Z: s.lastSeen.Z + (s.rng.Float64()*2-1)*radius,
		})
		if s.moveTo(a, p) {
			return
		}
	}
	s.log.Debug(fmt.Sprintf("squad %s agent %d: %v after %d tries", s.id, a.ID, game.ErrPathResolutionFailed, s.cfg.PathRetries))
}
