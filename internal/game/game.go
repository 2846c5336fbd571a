// Package game drives a well from terminal input and a fall timer.
package game

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"

	"tetrawell/internal/config"
	"tetrawell/internal/render"
	"tetrawell/internal/well"
)

// frameInterval is how often the loop wakes to check the fall timer. Free
// fall moves one row per frame.
const frameInterval = 20 * time.Millisecond

// highScoreCount is the number of runs shown after a game ends.
const highScoreCount = 5

// FallInterval is the delay between gravity steps at level.
func FallInterval(level int) time.Duration {
	level = max(1, level)
	return 500*time.Millisecond/time.Duration(level) + 100*time.Millisecond
}

// Recorder receives game lifecycle events. Metrics plug in here.
type Recorder interface {
	GameStarted()
	RowsCleared(n int)
	GameOver(score int)
}

type nopRecorder struct{}

func (nopRecorder) GameStarted() {}
func (nopRecorder) RowsCleared(int) {}
func (nopRecorder) GameOver(int) {}

// Game is one player's session: a well, a screen and the timers between them.
type Game struct {
	screen   tcell.Screen
	renderer *render.Renderer
	well     *well.Well
	cfg      config.Config
	logger   *slog.Logger

	// Recorder is told when games start and end. Nil records nothing.
	Recorder Recorder
	// Player labels run log entries. Empty for local play.
	Player string

	runID     string
	freeFall  bool
	paused    bool
	finished  bool
	started   time.Time
	nextFall  time.Time
	topScores []RunLog

	now func() time.Time
}

// New builds a game on an initialized screen.
func New(screen tcell.Screen, cfg config.Config, logger *slog.Logger) *Game {
	seed := cfg.Game.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	return &Game{
		screen:   screen,
		renderer: render.NewRenderer(screen, cfg.Theme, cfg.Game.Ghost),
		well: well.New(rng, well.Options{
			WeightedValues: cfg.Game.WeightedValues,
			StartLevel:     cfg.Game.StartLevel,
		}),
		cfg:      cfg,
		logger:   logger,
		Recorder: nopRecorder{},
		now:      time.Now,
	}
}

// Open creates a screen on the local terminal and returns a game using it.
func Open(cfg config.Config, logger *slog.Logger) (*Game, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("init screen: %w", err)
	}
	return New(screen, cfg, logger), nil
}

// Well exposes the playing field.
func (g *Game) Well() *well.Well { return g.well }

// Run plays until the player quits, the screen is closed or ctx is done.
// The screen is finalized on return.
func (g *Game) Run(ctx context.Context) {
	defer g.screen.Fini()

	done := make(chan struct{})
	defer close(done)

	eventCh := make(chan tcell.Event, 32)
	go func() {
		for {
			ev := g.screen.PollEvent()
			if ev == nil {
				close(eventCh)
				return
			}
			select {
			case eventCh <- ev:
			case <-done:
				return
			}
		}
	}()

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	g.start()
	g.draw()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-eventCh:
			if !ok {
				return
			}
			if !g.handleEvent(ev) {
				return
			}
		case <-ticker.C:
			g.tick()
		}
		g.draw()
	}
}

// start begins a new run on the current well.
func (g *Game) start() {
	now := g.now()
	g.runID = uuid.NewString()
	g.started = now
	g.finished = false
	g.freeFall = false
	g.paused = false
	g.topScores = nil
	g.nextFall = now.Add(FallInterval(g.well.Level()))
	g.recorder().GameStarted()
	g.logger.Info("game started", "run", g.runID, "player", g.Player, "level", g.well.Level())
}

func (g *Game) recorder() Recorder {
	if g.Recorder == nil {
		return nopRecorder{}
	}
	return g.Recorder
}

func (g *Game) restart() {
	g.well.Reset()
	g.start()
}

// handleEvent applies one terminal event. It returns false when the player
// asked to quit.
func (g *Game) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		g.screen.Sync()
	case *tcell.EventKey:
		return g.handleAction(keyToAction(ev))
	}
	return true
}

func (g *Game) handleAction(a Action) bool {
	over := g.well.State() == well.StateGameOver
	switch a {
	case ActionQuit:
		return false
	case ActionRestart:
		if over {
			g.restart()
		}
		return true
	case ActionPause:
		if !over {
			g.paused = !g.paused
			if !g.paused {
				g.nextFall = g.now().Add(FallInterval(g.well.Level()))
			}
		}
		return true
	}
	if over || g.paused {
		return true
	}

	switch a {
	case ActionLevelUp, ActionLevelDown:
		delta := 1
		if a == ActionLevelDown {
			delta = -1
		}
		g.well.SetLevel(g.well.Level() + delta)
		g.logger.Debug("level changed", "run", g.runID, "level", g.well.Level())
		return true
	case ActionSoftDrop:
		g.fall()
		return true
	}

	if _, ok := g.well.Falling(); !ok || g.freeFall {
		return true
	}
	switch a {
	case ActionFreeFall:
		g.freeFall = true
	case ActionMoveLeft, ActionMoveRight:
		dx, _ := actionToDelta(a)
		g.well.Advance(dx, 0, 0)
	case ActionRotateCCW, ActionRotateCW:
		_, drot := actionToDelta(a)
		if g.cfg.Game.WallKick {
			RotateWithKick(g.well, drot)
		} else {
			g.well.Advance(0, 0, drot)
		}
	}
	return true
}

// tick runs gravity when the fall timer has expired, or every frame while
// free falling.
func (g *Game) tick() {
	if g.paused || g.well.State() == well.StateGameOver {
		return
	}
	if g.freeFall || !g.now().Before(g.nextFall) {
		g.fall()
	}
}

// fall moves the piece one row down, spawning or locking as needed.
func (g *Game) fall() {
	res := g.well.Advance(0, 1, 0)
	g.nextFall = g.now().Add(FallInterval(g.well.Level()))
	if res.Hit.Landed() {
		g.freeFall = false
	}
	if res.Rows > 0 {
		g.recorder().RowsCleared(res.Rows)
		g.logger.Debug("rows cleared", "run", g.runID, "rows", res.Rows, "score", g.well.Score())
	}
	if res.Hit == well.GameOver {
		g.finish()
	}
}

// finish records the run once and loads the high score table.
func (g *Game) finish() {
	if g.finished {
		return
	}
	g.finished = true
	g.freeFall = false
	now := g.now()
	saveRunLog(RunLog{
		ID:        g.runID,
		Timestamp: now,
		Player:    g.Player,
		Score:     g.well.Score(),
		Rows:      g.well.Rows(),
		Level:     g.well.Level(),
		Pieces:    g.well.Pieces(),
		Seconds:   now.Sub(g.started).Seconds(),
	}, g.logger)
	g.recorder().GameOver(g.well.Score())
	g.logger.Info("game over", "run", g.runID, "player", g.Player,
		"score", g.well.Score(), "rows", g.well.Rows(), "level", g.well.Level())

	runs, err := LoadRuns()
	if err != nil {
		g.logger.Warn("run log: load failed", "error", err)
	}
	g.topScores = TopScores(runs, highScoreCount)
}

func (g *Game) draw() {
	lines := make([]render.ScoreLine, 0, len(g.topScores))
	for _, rl := range g.topScores {
		lines = append(lines, render.ScoreLine{Player: rl.Player, Score: rl.Score, Rows: rl.Rows})
	}
	g.renderer.Draw(render.Frame{
		Well:       g.well,
		Paused:     g.paused,
		Player:     g.Player,
		HighScores: lines,
	})
}
