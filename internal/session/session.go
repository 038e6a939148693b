package session

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/rocketrun/rocketrun-server/internal/account"
	"github.com/rocketrun/rocketrun-server/internal/game"
	"github.com/rocketrun/rocketrun-server/internal/level"
	"github.com/rocketrun/rocketrun-server/internal/store"
	"github.com/rocketrun/rocketrun-server/internal/ws"
)

// Session is one game session: a pilot flying runs, plus spectators.
// The session owns the spawner; the clients only render what it emits
// and report collisions back.
type Session struct {
	Code  string
	State game.RunState

	Pilot   *game.Player
	players map[string]*game.Player

	// Client mapping: player ID -> ws client
	clients map[string]*ws.Client

	levels *level.Registry
	store  store.Store

	// seed is the base RNG seed; each run offsets it by its index so
	// restarts differ but a whole session replays from one number.
	seed int64
	runs int

	spawner      *game.Spawner
	level        level.Level
	pendingLevel *level.Level
	score        int
	gravityMult  float64
	elapsed      time.Duration
	startedAt    time.Time

	// gravityPending maps live gravity obstacle IDs to the multiplier
	// they apply on contact; scoredGaps dedupes gap_passed reports.
	gravityPending map[string]float64
	scoredGaps     map[string]bool

	stopCh chan struct{}

	mu sync.RWMutex
}

// NewSession creates a session with the given code and RNG seed.
func NewSession(code string, levels *level.Registry, st store.Store, seed int64) *Session {
	return &Session{
		Code:    code,
		State:   game.StateWaiting,
		players: make(map[string]*game.Player),
		clients: make(map[string]*ws.Client),
		levels:  levels,
		store:   st,
		seed:    seed,
	}
}

// AddPilot seats the pilot. Returns false if the seat is taken or the
// session is full.
func (s *Session) AddPilot(player *game.Player, client *ws.Client) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Pilot != nil || len(s.players) >= game.MaxClients {
		return false
	}

	s.Pilot = player
	s.players[player.ID] = player
	s.clients[player.ID] = client
	return true
}

// AddSpectator adds a watching client. Returns false if the session is full.
func (s *Session) AddSpectator(player *game.Player, client *ws.Client) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.players) >= game.MaxClients {
		return false
	}

	player.Spectator = true
	s.players[player.ID] = player
	s.clients[player.ID] = client
	return true
}

// RemovePlayer removes a player. Removing the pilot ends any active run.
func (s *Session) RemovePlayer(playerID string) {
	s.mu.Lock()
	pilotLeft := s.Pilot != nil && s.Pilot.ID == playerID
	delete(s.players, playerID)
	delete(s.clients, playerID)
	if pilotLeft {
		s.Pilot = nil
	}
	s.mu.Unlock()

	if pilotLeft {
		s.EndRun("", true)
	}
}

// IsPilot reports whether the player flies this session.
func (s *Session) IsPilot(playerID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Pilot != nil && s.Pilot.ID == playerID
}

// PlayerCount returns the number of connected players.
func (s *Session) PlayerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.players)
}

// HasPlayer reports whether the player belongs to this session.
func (s *Session) HasPlayer(playerID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.players[playerID]
	return ok
}

// IsEmpty returns true if the session has no players.
func (s *Session) IsEmpty() bool {
	return s.PlayerCount() == 0
}

// Players returns a snapshot of all players.
func (s *Session) Players() []*game.Player {
	s.mu.RLock()
	defer s.mu.RUnlock()
	players := make([]*game.Player, 0, len(s.players))
	for _, p := range s.players {
		players = append(players, p)
	}
	return players
}

// Score returns the current run score.
func (s *Session) Score() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.score
}

// LevelName returns the name of the level currently in effect.
func (s *Session) LevelName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.level.Name
}

// GravityMult returns the gravity multiplier currently in effect.
func (s *Session) GravityMult() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gravityMult
}

// BroadcastMessage sends a message to every connected client.
func (s *Session) BroadcastMessage(msg ws.Message) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, client := range s.clients {
		client.SendMessage(msg)
	}
}

// runStartMessage tells clients everything they need to set the scene.
type runStartMessage struct {
	Level       string      `json:"level"`
	Bounds      game.Bounds `json:"bounds"`
	ItemVel     game.Vec2   `json:"item_vel"`
	GravityMult float64     `json:"gravity_mult"`
}

// PrepareRun resets run state and seeds a fresh spawner. Must be called
// before broadcasting run_start so clients receive correct settings.
func (s *Session) PrepareRun() ws.Message {
	s.mu.Lock()

	base := s.levels.Base()
	runSeed := s.seed + int64(s.runs)
	s.runs++

	s.State = game.StatePlaying
	s.level = base
	s.pendingLevel = nil
	s.spawner = game.NewSpawner(base.Settings, rand.New(rand.NewSource(runSeed)))
	s.score = 0
	s.gravityMult = game.DefaultGravityMult
	s.elapsed = 0
	s.startedAt = time.Now()
	s.gravityPending = make(map[string]float64)
	s.scoredGaps = make(map[string]bool)
	s.stopCh = make(chan struct{})

	msg, _ := ws.NewMessage(ws.TypeRunStart, runStartMessage{
		Level:       base.Name,
		Bounds:      game.WorldBounds(),
		ItemVel:     base.Settings.ItemVel,
		GravityMult: s.gravityMult,
	})

	pilot := ""
	if s.Pilot != nil {
		pilot = s.Pilot.Nickname
	}
	s.mu.Unlock()

	slog.Info("run prepared", "session", s.Code, "pilot", pilot, "level", base.Name, "seed", runSeed)
	return msg
}

// StartRunLoop starts the tick loop. Call after PrepareRun and after
// broadcasting its run_start message.
func (s *Session) StartRunLoop() {
	go s.runLoop()
}

// obstacleMessage carries one spawn decision plus its world placement.
type obstacleMessage struct {
	Obstacle game.ObstacleSpec      `json:"obstacle"`
	Tunnel   *game.TunnelPlacement  `json:"tunnel_placement,omitempty"`
	Gravity  *game.GravityPlacement `json:"gravity_placement,omitempty"`

	// GravityMult is the multiplier a gravity region applies on contact.
	GravityMult float64 `json:"gravity_mult,omitempty"`
}

type runStateMessage struct {
	ElapsedSecs float64 `json:"elapsed_secs"`
	Score       int     `json:"score"`
	Level       string  `json:"level"`
	GravityMult float64 `json:"gravity_mult"`
	Items       int     `json:"items"`
}

type velocityChangeMessage struct {
	Level    string    `json:"level"`
	Velocity game.Vec2 `json:"velocity"`
	RampSecs float64   `json:"ramp_secs"`
}

// runLoop advances the spawner at TickRate and broadcasts its output.
// The loop goroutine is the only writer of spawner state while a run is
// playing.
func (s *Session) runLoop() {
	ticker := time.NewTicker(game.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.mu.Lock()
			if s.State != game.StatePlaying {
				s.mu.Unlock()
				return
			}

			dt := game.TickInterval.Seconds()
			s.elapsed += game.TickInterval
			specs, levelChanged := s.spawner.Advance(dt)
			settings := s.spawner.Settings()
			bounds := game.WorldBounds()

			outgoing := make([]ws.Message, 0, len(specs)+2)
			for _, spec := range specs {
				out := obstacleMessage{Obstacle: spec}
				switch spec.Kind {
				case game.KindTunnel:
					placement := game.PlaceTunnel(*spec.Tunnel, settings, bounds)
					out.Tunnel = &placement
				case game.KindGravity:
					placement := game.PlaceGravity(*spec.Gravity, settings, bounds)
					out.Gravity = &placement
					// Regions flip whatever gravity is active when they spawn.
					out.GravityMult = -s.gravityMult
					s.gravityPending[spec.ID] = out.GravityMult
				}
				msg, _ := ws.NewMessage(ws.TypeObstacleSpawn, out)
				outgoing = append(outgoing, msg)
			}

			if levelChanged && s.pendingLevel != nil {
				s.level = *s.pendingLevel
				s.pendingLevel = nil
				msg, _ := ws.NewMessage(ws.TypeVelocityChange, velocityChangeMessage{
					Level:    s.level.Name,
					Velocity: s.level.Settings.ItemVel,
					RampSecs: game.VelocityRampSecs,
				})
				outgoing = append(outgoing, msg)
				slog.Info("level changed", "session", s.Code, "level", s.level.Name)
			}

			stateMsg, _ := ws.NewMessage(ws.TypeRunState, runStateMessage{
				ElapsedSecs: s.elapsed.Seconds(),
				Score:       s.score,
				Level:       s.level.Name,
				GravityMult: s.gravityMult,
				Items:       s.spawner.ItemCount(),
			})
			outgoing = append(outgoing, stateMsg)
			s.mu.Unlock()

			for _, msg := range outgoing {
				s.BroadcastMessage(msg)
			}
		}
	}
}

// GapPassed records a scoring-gap passage reported by the client. Each
// obstacle scores at most once; repeats are ignored.
func (s *Session) GapPassed(obstacleID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.State != game.StatePlaying || s.scoredGaps[obstacleID] {
		return
	}
	s.scoredGaps[obstacleID] = true
	s.score++

	if s.level.NextLevel != "" && s.pendingLevel == nil && s.score >= s.level.NextLevelAtScore {
		if next, ok := s.levels.Get(s.level.NextLevel); ok {
			s.pendingLevel = &next
			s.spawner.QueueLevel(next.Settings)
			slog.Info("level queued", "session", s.Code, "level", next.Name, "score", s.score)
		}
	}
}

type gravityStateMessage struct {
	GravityMult float64 `json:"gravity_mult"`
}

// GravityShift applies a gravity region the client reports the pilot
// entered. Each region fires at most once.
func (s *Session) GravityShift(obstacleID string) {
	s.mu.Lock()
	if s.State != game.StatePlaying {
		s.mu.Unlock()
		return
	}
	mult, ok := s.gravityPending[obstacleID]
	if !ok {
		s.mu.Unlock()
		return
	}
	delete(s.gravityPending, obstacleID)
	s.gravityMult = mult
	s.mu.Unlock()

	msg, _ := ws.NewMessage(ws.TypeGravityState, gravityStateMessage{GravityMult: mult})
	s.BroadcastMessage(msg)

	slog.Info("gravity shifted", "session", s.Code, "gravity_mult", mult)
}

type runOverMessage struct {
	Score        int     `json:"score"`
	BestScore    int     `json:"best_score"`
	Level        string  `json:"level"`
	DurationSecs float64 `json:"duration_secs"`
}

// EndRun stops the run loop and transitions to ended. The obstacle ID is
// informational; silent is set when the pilot disconnected and there is
// nobody left to tell.
func (s *Session) EndRun(obstacleID string, silent bool) {
	s.mu.Lock()

	if s.State != game.StatePlaying {
		s.mu.Unlock()
		return
	}

	s.State = game.StateEnded
	select {
	case <-s.stopCh:
		// Already closed
	default:
		close(s.stopCh)
	}

	score := s.score
	levelName := s.level.Name
	duration := time.Since(s.startedAt)
	pilot := s.Pilot
	s.mu.Unlock()

	best := score
	if s.store != nil && pilot != nil && pilot.AccountID != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		run := account.NewRun(pilot.AccountID, score, levelName, duration)
		if err := s.store.RecordRun(ctx, run); err != nil {
			slog.Error("failed to record run", "session", s.Code, "error", err)
		}
		if b, err := s.store.BestScore(ctx, pilot.AccountID); err == nil && b > best {
			best = b
		}
	}

	if !silent {
		msg, _ := ws.NewMessage(ws.TypeRunOver, runOverMessage{
			Score:        score,
			BestScore:    best,
			Level:        levelName,
			DurationSecs: duration.Seconds(),
		})
		s.BroadcastMessage(msg)
	}

	slog.Info("run ended", "session", s.Code, "score", score, "level", levelName, "obstacle", obstacleID)
}
