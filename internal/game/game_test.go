package game

import (
	"context"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"tetrawell/internal/config"
	"tetrawell/internal/well"
)

// ─── helpers ──────────────────────────────────────────────────────────────────

type fakeRecorder struct {
	started int
	rows    []int
	scores  []int
}

func (r *fakeRecorder) GameStarted() { r.started++ }
func (r *fakeRecorder) RowsCleared(n int) { r.rows = append(r.rows, n) }
func (r *fakeRecorder) GameOver(score int) { r.scores = append(r.scores, score) }

type testGame struct {
	*Game
	clock time.Time
	rec   *fakeRecorder
}

func (tg *testGame) advanceClock(d time.Duration) { tg.clock = tg.clock.Add(d) }

func newTestGame(t *testing.T) *testGame {
	t.Helper()
	isolateData(t)
	screen := tcell.NewSimulationScreen("UTF-8")
	screen.SetSize(80, 30)
	if err := screen.Init(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(screen.Fini)

	cfg := config.Default()
	cfg.Game.Seed = 7
	tg := &testGame{
		Game:  New(screen, cfg, discardLogger()),
		clock: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		rec:   &fakeRecorder{},
	}
	tg.now = func() time.Time { return tg.clock }
	tg.Recorder = tg.rec
	tg.start()
	return tg
}

func (tg *testGame) restore(t *testing.T, snap well.Snapshot) {
	t.Helper()
	if snap.Level == 0 {
		snap.Level = 1
	}
	if snap.Next.Shape == "" {
		snap.Next.Shape = "O"
	}
	if err := tg.well.Restore(snap); err != nil {
		t.Fatalf("Restore: %v", err)
	}
}

func (tg *testGame) press(r rune) bool {
	return tg.handleEvent(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
}

func (tg *testGame) falling(t *testing.T) well.FallingPiece {
	t.Helper()
	p, ok := tg.well.Falling()
	if !ok {
		t.Fatal("no falling piece")
	}
	return p
}

// ─── timing ───────────────────────────────────────────────────────────────────

func TestFallInterval(t *testing.T) {
	cases := []struct {
		level int
		want  time.Duration
	}{
		{1, 600 * time.Millisecond},
		{2, 350 * time.Millisecond},
		{5, 200 * time.Millisecond},
		{0, 600 * time.Millisecond},
	}
	for _, tc := range cases {
		if got := FallInterval(tc.level); got != tc.want {
			t.Errorf("FallInterval(%d) = %v, want %v", tc.level, got, tc.want)
		}
	}
}

func TestTickWaitsForFallInterval(t *testing.T) {
	tg := newTestGame(t)

	tg.tick()
	if _, ok := tg.well.Falling(); ok {
		t.Fatal("piece spawned before the fall interval elapsed")
	}

	tg.advanceClock(FallInterval(1))
	tg.tick()
	y := tg.falling(t).Y

	tg.advanceClock(FallInterval(1) / 2)
	tg.tick()
	if got := tg.falling(t).Y; got != y {
		t.Errorf("piece fell early: Y %d -> %d", y, got)
	}

	tg.advanceClock(FallInterval(1) / 2)
	tg.tick()
	if got := tg.falling(t).Y; got != y+1 {
		t.Errorf("Y = %d, want %d", got, y+1)
	}
}

func TestPauseFreezesGravity(t *testing.T) {
	tg := newTestGame(t)
	tg.restore(t, well.Snapshot{Falling: &well.PieceRecord{Shape: "T", X: 4, Y: 3}})

	tg.press('p')
	tg.advanceClock(10 * FallInterval(1))
	tg.tick()
	tg.press('l')
	if p := tg.falling(t); p.X != 4 || p.Y != 3 {
		t.Errorf("paused piece moved to (%d, %d)", p.X, p.Y)
	}

	tg.press('p')
	tg.advanceClock(FallInterval(1))
	tg.tick()
	if p := tg.falling(t); p.Y != 4 {
		t.Errorf("after unpause Y = %d, want 4", p.Y)
	}
}

// ─── input ────────────────────────────────────────────────────────────────────

func TestMoveAndRotateKeys(t *testing.T) {
	tg := newTestGame(t)
	tg.restore(t, well.Snapshot{Falling: &well.PieceRecord{Shape: "T", X: 4, Y: 3}})

	tg.press('l')
	tg.press('l')
	tg.press('h')
	tg.handleEvent(tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone))
	p := tg.falling(t)
	if p.X != 5 || p.Y != 3 || p.Rot != 1 {
		t.Errorf("piece = X%d Y%d rot%d, want X5 Y3 rot1", p.X, p.Y, p.Rot)
	}
}

func TestSoftDropMovesOneRow(t *testing.T) {
	tg := newTestGame(t)
	tg.restore(t, well.Snapshot{Falling: &well.PieceRecord{Shape: "T", X: 4, Y: 3}})
	tg.press('s')
	if p := tg.falling(t); p.Y != 4 {
		t.Errorf("Y = %d, want 4", p.Y)
	}
}

func TestFreeFallLandsAndLocks(t *testing.T) {
	tg := newTestGame(t)
	tg.restore(t, well.Snapshot{Falling: &well.PieceRecord{Shape: "O", X: 4, Y: 0}})

	tg.press(' ')
	if !tg.freeFall {
		t.Fatal("space should start free fall")
	}
	tg.press('h')
	if p := tg.falling(t); p.X != 4 {
		t.Errorf("lateral input moved a free-falling piece to X=%d", p.X)
	}

	for i := 0; i < well.Height+2 && tg.freeFall; i++ {
		tg.tick()
	}
	if tg.freeFall {
		t.Fatal("free fall did not end on landing")
	}
	snap := tg.well.Snapshot()
	if len(snap.Shards) != 4 || snap.Pieces != 1 {
		t.Errorf("after landing: %d shards, %d pieces; want 4 and 1", len(snap.Shards), snap.Pieces)
	}
	for _, s := range snap.Shards {
		if s.Y < well.Height-2 {
			t.Errorf("shard at row %d, want the bottom two rows", s.Y)
		}
	}
}

func TestLevelKeys(t *testing.T) {
	tg := newTestGame(t)
	tg.press('+')
	tg.press('+')
	if got := tg.well.Level(); got != 3 {
		t.Errorf("level = %d, want 3", got)
	}
	for i := 0; i < 5; i++ {
		tg.press('-')
	}
	if got := tg.well.Level(); got != 1 {
		t.Errorf("level = %d, want 1", got)
	}
}

func TestRowsClearedReachRecorder(t *testing.T) {
	tg := newTestGame(t)
	var shards []well.ShardRecord
	for x := 0; x < well.Width; x++ {
		if x != 5 {
			shards = append(shards, well.ShardRecord{X: x, Y: well.Height - 1})
		}
	}
	// A vertical I in column 5 fills the gap.
	tg.restore(t, well.Snapshot{
		Shards:  shards,
		Falling: &well.PieceRecord{Shape: "I", X: 3, Y: well.Height - 4, Rot: 1},
	})
	tg.press('s')
	if len(tg.rec.rows) != 1 || tg.rec.rows[0] != 1 {
		t.Errorf("recorded rows = %v, want [1]", tg.rec.rows)
	}
	if tg.well.Rows() != 1 {
		t.Errorf("well rows = %d, want 1", tg.well.Rows())
	}
}

func TestQuitKeys(t *testing.T) {
	tg := newTestGame(t)
	if tg.press('q') {
		t.Error("q should quit")
	}
	if tg.handleEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)) {
		t.Error("Esc should quit")
	}
	if !tg.press('?') {
		t.Error("unbound keys must not quit")
	}
}

// ─── game over ────────────────────────────────────────────────────────────────

func TestGameOverRecordsRunAndRestarts(t *testing.T) {
	tg := newTestGame(t)
	tg.Player = "bob"
	var shards []well.ShardRecord
	for x := 1; x < well.Width; x++ {
		shards = append(shards, well.ShardRecord{X: x, Y: 0})
	}
	tg.restore(t, well.Snapshot{Shards: shards, Next: well.PieceRecord{Shape: "J"}, Score: 480})

	tg.advanceClock(FallInterval(1))
	tg.tick()
	if tg.well.State() != well.StateGameOver {
		t.Fatalf("state = %v, want game over", tg.well.State())
	}
	if len(tg.rec.scores) != 1 || tg.rec.scores[0] != 480 {
		t.Errorf("recorded game over scores = %v, want [480]", tg.rec.scores)
	}

	runs, err := LoadRuns()
	if err != nil {
		t.Fatalf("LoadRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].Player != "bob" || runs[0].Score != 480 || runs[0].ID != tg.runID {
		t.Errorf("runs = %+v", runs)
	}
	if len(tg.topScores) != 1 {
		t.Errorf("top scores = %+v, want the finished run", tg.topScores)
	}

	// Further ticks neither move nor record anything.
	tg.advanceClock(FallInterval(1))
	tg.tick()
	tg.press('s')
	if len(tg.rec.scores) != 1 {
		t.Errorf("game over recorded %d times", len(tg.rec.scores))
	}

	tg.draw()

	tg.press('r')
	if tg.well.State() != well.StateEmpty || tg.well.Score() != 0 {
		t.Errorf("after restart state=%v score=%d", tg.well.State(), tg.well.Score())
	}
	if tg.rec.started != 2 {
		t.Errorf("games started = %d, want 2", tg.rec.started)
	}
}

func TestRestartIgnoredDuringPlay(t *testing.T) {
	tg := newTestGame(t)
	tg.restore(t, well.Snapshot{Falling: &well.PieceRecord{Shape: "T", X: 4, Y: 3}, Score: 90})
	tg.press('r')
	if tg.well.Score() != 90 {
		t.Errorf("r during play reset the score to %d", tg.well.Score())
	}
}

// ─── loop ─────────────────────────────────────────────────────────────────────

// runGame runs g on its own goroutine and fails the test if it does not
// return within a second.
func runGame(t *testing.T, ctx context.Context, g *Game) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		g.Run(ctx)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
}

func newRunScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	isolateData(t)
	screen := tcell.NewSimulationScreen("UTF-8")
	screen.SetSize(80, 30)
	if err := screen.Init(); err != nil {
		t.Fatal(err)
	}
	return screen
}

func TestRunQuitsOnKey(t *testing.T) {
	screen := newRunScreen(t)
	g := New(screen, config.Default(), discardLogger())
	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	runGame(t, context.Background(), g)
}

func TestRunStopsWhenContextDone(t *testing.T) {
	screen := newRunScreen(t)
	g := New(screen, config.Default(), discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	runGame(t, ctx, g)
}
