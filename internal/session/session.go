package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/minesweeper/internal/leaderboard"
	"github.com/vancomm/minesweeper/internal/mines"
)

var ErrDisposed = errors.New("session is disposed")

const (
	DefaultTickInterval = time.Second
	submitTimeout       = 5 * time.Second
)

type State int

const (
	Unstarted State = iota
	Playing
	Won
	Lost
)

func (s State) String() string {
	switch s {
	case Unstarted:
		return "unstarted"
	case Playing:
		return "playing"
	case Won:
		return "won"
	case Lost:
		return "lost"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	for _, state := range []State{Unstarted, Playing, Won, Lost} {
		if state.String() == string(text) {
			*s = state
			return nil
		}
	}
	return fmt.Errorf("unknown session state %q", text)
}

func (s State) Terminal() bool {
	return s == Won || s == Lost
}

type Option func(*Session)

// WithRand fixes the source used to place mines.
func WithRand(r *rand.Rand) Option {
	return func(s *Session) { s.rand = r }
}

func WithClock(c Clock) Option {
	return func(s *Session) { s.clock = c }
}

func WithTickInterval(d time.Duration) Option {
	return func(s *Session) { s.interval = d }
}

// WithLeaderboard makes won games submit their time to b.
func WithLeaderboard(b *leaderboard.Board) Option {
	return func(s *Session) { s.board = b }
}

// WithPlayer sets the name recorded on the leaderboard.
func WithPlayer(name string) Option {
	return func(s *Session) { s.player = leaderboard.SanitizeName(name) }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Session) { s.log = log }
}

func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

type subscriber struct {
	id int
	fn func(Event)
}

// Session is one player's game: the grid, the state machine around it, the
// timer and the subscribers that follow it. Commands and ticks are
// serialised by a mutex; events are delivered after the lock is released.
type Session struct {
	mu sync.Mutex

	id         string
	difficulty mines.Difficulty
	grid       *mines.Grid
	state      State
	elapsed    int
	generation uint64
	stopTimer  func()
	disposed   bool

	subs    []subscriber
	nextSub int

	rand     *rand.Rand
	clock    Clock
	interval time.Duration
	board    *leaderboard.Board
	player   string
	log      logrus.FieldLogger
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newGrid(d mines.Difficulty) (*mines.Grid, error) {
	params, ok := d.Params()
	if !ok {
		return nil, fmt.Errorf("%w: %q", mines.ErrUnknownDifficulty, d)
	}
	return mines.NewGrid(params)
}

// New creates an unstarted session. Mines are placed by the first open.
func New(d mines.Difficulty, opts ...Option) (*Session, error) {
	grid, err := newGrid(d)
	if err != nil {
		return nil, err
	}
	s := &Session{
		difficulty: d,
		grid:       grid,
		interval:   DefaultTickInterval,
		player:     leaderboard.DefaultName,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	if s.rand == nil {
		s.rand = mines.NewRand()
	}
	if s.clock == nil {
		s.clock = RealClock()
	}
	if s.log == nil {
		s.log = discardLogger()
	}
	s.log = s.log.WithField("session", s.id)
	return s, nil
}

func (s *Session) ID() string { return s.id }

func (s *Session) Player() string { return s.player }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Difficulty() mines.Difficulty {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.difficulty
}

// Elapsed is the number of timer ticks counted while playing.
func (s *Session) Elapsed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed
}

func (s *Session) MinesRemaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.MinesRemaining()
}

func (s *Session) Cell(row, col int) (mines.CellView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.View(row, col)
}

// Snapshot dumps the grid, mine layout included.
func (s *Session) Snapshot() mines.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.Snapshot()
}

// Start discards the current game and prepares a new unstarted one of
// difficulty d.
func (s *Session) Start(d mines.Difficulty) error {
	grid, err := newGrid(d)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return ErrDisposed
	}
	s.stopTimerLocked()
	s.difficulty = d
	s.grid = grid
	s.state = Unstarted
	s.elapsed = 0
	s.mu.Unlock()

	s.log.WithField("difficulty", d).Debug("game reset")
	s.emit(GameReset{Difficulty: d})
	return nil
}

// Reset starts over with the current difficulty.
func (s *Session) Reset() error {
	return s.Start(s.Difficulty())
}

// Open reveals (row, col). The first open of a game places the mines around
// it and starts the timer.
func (s *Session) Open(row, col int) mines.Result {
	s.mu.Lock()
	if !s.acceptsLocked(Unstarted, Playing) {
		defer s.mu.Unlock()
		return s.noopLocked()
	}

	var events []Event
	if s.state == Unstarted {
		c, ok := s.grid.Cell(row, col)
		if !ok || c.Flagged {
			defer s.mu.Unlock()
			return s.noopLocked()
		}
		if err := s.grid.PlaceMines(row, col, s.rand); err != nil {
			defer s.mu.Unlock()
			s.log.WithError(err).Error("unable to place mines")
			return s.noopLocked()
		}
		s.state = Playing
		s.startTimerLocked()
		events = append(events, GameStarted{Difficulty: s.difficulty})
	}

	res := s.grid.OpenCell(row, col)
	events = append(events, s.settleLocked(res)...)
	won, elapsed, d := s.state == Won, s.elapsed, s.difficulty
	s.mu.Unlock()

	if won {
		events = append(events, GameWon{Elapsed: elapsed, Rank: s.submit(d, elapsed)})
	}
	s.emit(events...)
	return res
}

// ToggleFlag flags or unflags (row, col). Flags may be placed before the
// first open.
func (s *Session) ToggleFlag(row, col int) mines.Result {
	s.mu.Lock()
	if !s.acceptsLocked(Unstarted, Playing) {
		defer s.mu.Unlock()
		return s.noopLocked()
	}
	res := s.grid.FlagCell(row, col)
	s.mu.Unlock()

	if res.Outcome == mines.Marked {
		s.emit(CellsChanged{Points: res.Changed})
	}
	return res
}

// Chord opens the neighbours of a revealed number whose flags are all placed.
func (s *Session) Chord(row, col int) mines.Result {
	s.mu.Lock()
	if !s.acceptsLocked(Playing) {
		defer s.mu.Unlock()
		return s.noopLocked()
	}
	res := s.grid.ChordCell(row, col)
	events := s.settleLocked(res)
	won, elapsed, d := s.state == Won, s.elapsed, s.difficulty
	s.mu.Unlock()

	if won {
		events = append(events, GameWon{Elapsed: elapsed, Rank: s.submit(d, elapsed)})
	}
	s.emit(events...)
	return res
}

func (s *Session) acceptsLocked(states ...State) bool {
	if s.disposed {
		return false
	}
	for _, st := range states {
		if s.state == st {
			return true
		}
	}
	return false
}

func (s *Session) noopLocked() mines.Result {
	return mines.Result{Outcome: mines.Noop, Revealed: s.grid.Revealed()}
}

// settleLocked moves the state machine after an open and returns the events
// describing it. GameWon is left to the caller, which submits the time first.
func (s *Session) settleLocked(res mines.Result) []Event {
	changed := res.Changed
	var events []Event

	switch res.Outcome {
	case mines.Exploded:
		s.state = Lost
		s.stopTimerLocked()
		changed = append(changed, s.grid.DiscloseMines()...)
		at, _ := s.grid.ExplodedAt()
		events = append(events, GameLost{At: at})
		s.log.WithFields(logrus.Fields{
			"difficulty": s.difficulty,
			"elapsed":    s.elapsed,
		}).Info("game lost")
	case mines.Cleared:
		s.state = Won
		s.stopTimerLocked()
		changed = append(changed, s.grid.FlagMines()...)
		s.log.WithFields(logrus.Fields{
			"difficulty": s.difficulty,
			"elapsed":    s.elapsed,
		}).Info("game won")
	case mines.Noop:
		return nil
	}

	return append([]Event{CellsChanged{Points: changed}}, events...)
}

// submit records a win. Storage failures are logged and rank as 0.
func (s *Session) submit(d mines.Difficulty, elapsed int) int {
	if s.board == nil {
		return 0
	}
	ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
	defer cancel()

	_, rank, err := s.board.Submit(ctx, d, s.player, elapsed)
	if err != nil {
		s.log.WithError(err).Error("unable to submit time")
		return 0
	}
	return rank
}

func (s *Session) startTimerLocked() {
	gen := s.generation
	s.stopTimer = s.clock.Every(s.interval, func() { s.tick(gen) })
}

// stopTimerLocked stops the ticker and invalidates ticks already in flight.
func (s *Session) stopTimerLocked() {
	s.generation++
	if s.stopTimer != nil {
		s.stopTimer()
		s.stopTimer = nil
	}
}

func (s *Session) tick(gen uint64) {
	s.mu.Lock()
	if gen != s.generation || s.state != Playing || s.disposed {
		s.mu.Unlock()
		return
	}
	s.elapsed++
	elapsed := s.elapsed
	s.mu.Unlock()

	s.emit(Tick{Elapsed: elapsed})
}

// Subscribe registers fn for every later event. Events arrive in the order
// they were produced by a command, on the goroutine that ran it.
func (s *Session) Subscribe(fn func(Event)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return func() {}
	}
	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscriber{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

func (s *Session) emit(events ...Event) {
	if len(events) == 0 {
		return
	}
	s.mu.Lock()
	subs := s.subs
	s.mu.Unlock()

	for _, e := range events {
		for _, sub := range subs {
			sub.fn(e)
		}
	}
}

// Dispose stops the timer and drops all subscribers. Later commands are
// no-ops.
func (s *Session) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return
	}
	s.disposed = true
	s.stopTimerLocked()
	s.subs = nil
}

func (s *Session) Disposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposed
}
