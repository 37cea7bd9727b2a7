package model

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2/log"
)

type Status string

const (
	StatusNotStarted Status = "notStarted"
	StatusInProgress Status = "inProgress"
	StatusCheckmated Status = "checkmated"
	StatusStalemate  Status = "stalemate"
)

func (s Status) Over() bool {
	return s == StatusCheckmated || s == StatusStalemate
}

type EventType string

const (
	EventTurn     EventType = "turn"
	EventCheck    EventType = "check"
	EventGameOver EventType = "gameOver"
)

// Event is a signal emitted after the game state changes.
type Event struct {
	Type    EventType `json:"type"`
	GameID  string    `json:"gameId"`
	Side    Side      `json:"side"`
	InCheck bool      `json:"inCheck"`
	Status  Status    `json:"status"`
	Winner  *Side     `json:"winner,omitempty"`
}

type Listener func(Event)

// The Game serialises every call on its own mutex; the engine itself is
// strictly request/response.
type Game struct {
	ID        string
	mu        sync.Mutex
	placement Placement
	board     *Board
	players   [2]*Player
	turn      Side
	status    Status
	winner    *Side
	history   []Ply
	lastMove  *SimpleMove
	tagged    PieceID
	listeners []Listener
}

// NewGame returns a game set up with the standard arrangement, White to move.
func NewGame(id string) *Game {
	return newGame(id, standardPlacement(), White)
}

// NewGameFromPlacement returns a game that starts from an arbitrary setup.
func NewGameFromPlacement(id string, pl Placement, toMove Side) (*Game, error) {
	seen := make(map[SquareID]string, len(pl.Pieces))
	for label, spec := range pl.Pieces {
		sq, err := ParseSquare(label)
		if err != nil || sq == NoSquare {
			return nil, fmt.Errorf("%w: bad square %q", ErrInvalidPlacement, label)
		}
		if prev, dup := seen[sq]; dup {
			return nil, fmt.Errorf("%w: %q and %q name the same square", ErrInvalidPlacement, prev, label)
		}
		seen[sq] = label
		if spec.Type == NoPieceType || spec.Type > King {
			return nil, fmt.Errorf("%w: no piece type on %s", ErrInvalidPlacement, label)
		}
		if spec.Side != White && spec.Side != Black {
			return nil, fmt.Errorf("%w: bad side on %s", ErrInvalidPlacement, label)
		}
	}
	return newGame(id, pl, toMove), nil
}

func newGame(id string, pl Placement, toMove Side) *Game {
	return &Game{
		ID:        id,
		placement: pl,
		board:     newEmptyBoard(),
		players:   [2]*Player{newPlayer(White), newPlayer(Black)},
		turn:      toMove,
		status:    StatusNotStarted,
		history:   make([]Ply, 0),
		tagged:    NoPiece,
	}
}

// Subscribe registers a listener for turn, check and game-over signals.
// Listeners run after the game lock is released.
func (g *Game) Subscribe(l Listener) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listeners = append(g.listeners, l)
}

// Start places the pieces and opens the game for moves.
func (g *Game) Start() error {
	var toMove Side
	events, listeners, err := g.locked(func() ([]Event, error) {
		if g.status != StatusNotStarted {
			return nil, ErrAlreadyStarted
		}
		g.setup()
		g.status = StatusInProgress
		g.players[g.turn].HasTurn = true
		g.analyze()
		g.resolve()
		toMove = g.turn
		return g.signals(), nil
	})
	if err != nil {
		return err
	}

	log.Infow("game started", "game", g.ID, "toMove", toMove.String())
	emit(listeners, events)
	return nil
}

// locked runs fn under the game lock and hands back the listeners to notify
// once the lock is released. The lock is released even when fn panics.
func (g *Game) locked(fn func() ([]Event, error)) ([]Event, []Listener, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	events, err := fn()
	return events, g.listeners, err
}

// setup places pieces in square order so piece IDs are deterministic.
func (g *Game) setup() {
	byID := make(map[SquareID]PieceSpec, len(g.placement.Pieces))
	for label, spec := range g.placement.Pieces {
		sq, _ := ParseSquare(label)
		byID[sq] = spec
	}
	for sq := SquareID(0); sq < 64; sq++ {
		spec, ok := byID[sq]
		if !ok {
			continue
		}
		id := g.board.addPiece(spec.Type, spec.Side, sq)
		if spec.Moved {
			g.board.pieces[id].Moves = 1
		}
		g.players[spec.Side].Pieces = append(g.players[spec.Side].Pieces, id)
	}
}

func (g *Game) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status
}

func (g *Game) Turn() Side {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.turn
}

// Winner returns the winning side once the game ended in checkmate.
func (g *Game) Winner() (Side, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.winner == nil {
		return White, false
	}
	return *g.winner, true
}

func (g *Game) InCheck(side Side) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.players[side].InCheck
}

func (g *Game) Player(side Side) Player {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.players[side].clone()
}

// Analyze refreshes both players' check flags and reports whether the side
// to move is free of check.
func (g *Game) Analyze() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.analyze()
}

func (g *Game) analyze() bool {
	a := g.board.Analyze(g.turn)
	for _, side := range []Side{White, Black} {
		g.players[side].InCheck = a.InCheck[side]
	}
	return a.Legal
}

// LegalDestinations returns the destinations of a piece that keep its king
// safe and tags them on the board. It reports false when there are none.
func (g *Game) LegalDestinations(id PieceID) (CandidateSet, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.legalFor(id)
}

// LegalDestinationsAt is LegalDestinations for the piece on a labelled square.
func (g *Game) LegalDestinationsAt(label string) (CandidateSet, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	sq, ok := g.board.SquareByLabel(label)
	if !ok || sq.Empty() {
		return CandidateSet{}, false
	}
	return g.legalFor(sq.Occupant)
}

func (g *Game) legalFor(id PieceID) (CandidateSet, bool) {
	if g.status != StatusInProgress {
		return CandidateSet{}, false
	}
	p, ok := g.board.Piece(id)
	if !ok || p.Captured() {
		return CandidateSet{}, false
	}
	set := g.tag(p)
	return set, !set.Empty()
}

// tag runs a legality pass for p and marks the result on the board.
func (g *Game) tag(p *Piece) CandidateSet {
	set := g.legalDestinations(p)
	g.board.clearTags(transientTags)
	for _, sq := range set.Moves {
		g.board.squares[sq].Tags |= TagMove
	}
	for _, sq := range set.Enemies {
		g.board.squares[sq].Tags |= TagEnemy
	}
	for _, sq := range set.Castling {
		g.board.squares[sq].Tags |= TagCastling
	}
	g.tagged = p.ID
	return set
}

// Move executes a move given as square labels. A nil error means the move
// was accepted.
func (g *Game) Move(req MoveRequest) error {
	events, listeners, err := g.locked(func() ([]Event, error) {
		return g.moveFrom(req)
	})
	if err != nil {
		return err
	}
	emit(listeners, events)
	return nil
}

func (g *Game) moveFrom(req MoveRequest) ([]Event, error) {
	if err := g.checkTurn(req.Side); err != nil {
		return nil, err
	}
	from, ok := g.board.SquareByLabel(req.From)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSquare, req.From)
	}
	if from.Empty() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPiece, from.Label)
	}
	return g.move(req.Side, from.Occupant, req.To, req.Promotion)
}

// MovePiece executes a move of the piece with the given handle.
func (g *Game) MovePiece(side Side, id PieceID, to string, promotion PieceType) error {
	events, listeners, err := g.locked(func() ([]Event, error) {
		return g.move(side, id, to, promotion)
	})
	if err != nil {
		return err
	}
	emit(listeners, events)
	return nil
}

func (g *Game) checkTurn(side Side) error {
	switch {
	case g.status == StatusNotStarted:
		return ErrNotStarted
	case g.status.Over():
		return ErrGameOver
	case side != g.turn:
		return fmt.Errorf("%w: %s to move", ErrWrongTurn, g.turn)
	}
	return nil
}

func (g *Game) move(side Side, id PieceID, to string, promotion PieceType) ([]Event, error) {
	if err := g.checkTurn(side); err != nil {
		return nil, err
	}
	p, ok := g.board.Piece(id)
	if !ok || p.Captured() {
		return nil, fmt.Errorf("%w: piece %d", ErrUnknownPiece, id)
	}
	if p.Side != side {
		return nil, fmt.Errorf("%w: %s %s on %s", ErrNotOwnPiece, p.Side, p.Type, p.Square)
	}
	dest, ok := g.board.SquareByLabel(to)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSquare, to)
	}
	switch promotion {
	case NoPieceType, Queen, Rook, Bishop, Knight:
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidPromotion, promotion)
	}

	if g.tagged != id {
		g.tag(p)
	}
	if !dest.Tags.Has(transientTags) {
		return nil, fmt.Errorf("%w: %s %s to %s", ErrIllegalMove, p.Type, p.Square, dest.Label)
	}
	if promotion != NoPieceType && !(p.Type == Pawn && dest.Row == side.Opponent().backRank()) {
		return nil, fmt.Errorf("%w: %s %s to %s does not promote", ErrInvalidPromotion, p.Type, p.Square, dest.Label)
	}
	return g.commit(p, dest.ID, promotion), nil
}

func (g *Game) commit(p *Piece, to SquareID, promotion PieceType) []Event {
	ply := Ply{Piece: p.ID, Side: p.Side, Type: p.Type, From: p.Square, To: to, CapturedPiece: NoPiece}
	m := g.apply(p.ID, to, promotion)

	if m.captured != NoPiece {
		victim := &g.board.pieces[m.captured]
		g.players[p.Side].Captures = append(g.players[p.Side].Captures, victim.ID)
		g.players[victim.Side].Lost = append(g.players[victim.Side].Lost, victim.ID)
		ply.CapturedPiece = victim.ID
	}
	if m.rook != NoPiece {
		ply.CastleRookMove = &CastleRookMove{From: m.rookFrom, To: m.rookTo}
	}
	if m.promotedFrom != NoPieceType {
		ply.Promotion = p.Type
	}
	if err := g.board.Validate(); err != nil {
		panic(fmt.Sprintf("model: board inconsistent after %s-%s: %v", m.from, m.to, err))
	}

	g.board.clearTags(transientTags | TagFrom | TagTo)
	g.board.squares[m.from].Tags |= TagFrom
	g.board.squares[m.to].Tags |= TagTo
	g.tagged = NoPiece

	g.history = append(g.history, ply)
	g.lastMove = &SimpleMove{From: m.from, To: m.to}

	g.switchTurn()
	g.analyze()
	g.resolve()

	log.Debugw("move committed", "game", g.ID, "side", ply.Side.String(), "from", m.from.String(), "to", m.to.String(), "status", string(g.status))
	return g.signals()
}

func (g *Game) switchTurn() {
	g.players[g.turn].HasTurn = false
	g.turn = g.turn.Opponent()
	g.players[g.turn].HasTurn = true
}

// EvaluateCheckmate declares the opponent winner when the side to move is in
// check and no piece of that side has a legal destination.
func (g *Game) EvaluateCheckmate() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.evaluateCheckmate()
}

func (g *Game) evaluateCheckmate() bool {
	if g.status == StatusCheckmated {
		return true
	}
	if g.status != StatusInProgress || !g.players[g.turn].InCheck {
		return false
	}
	if g.hasLegalMove(g.turn) {
		return false
	}
	winner := g.turn.Opponent()
	g.winner = &winner
	g.status = StatusCheckmated
	return true
}

// resolve ends the game on checkmate or stalemate.
func (g *Game) resolve() {
	if g.evaluateCheckmate() {
		log.Infow("checkmate", "game", g.ID, "winner", g.winner.String())
		return
	}
	if g.status == StatusInProgress && !g.players[g.turn].InCheck && !g.hasLegalMove(g.turn) {
		g.status = StatusStalemate
		log.Infow("stalemate", "game", g.ID, "toMove", g.turn.String())
	}
}

func (g *Game) signals() []Event {
	events := []Event{{Type: EventTurn, GameID: g.ID, Side: g.turn, Status: g.status}}
	for _, side := range []Side{White, Black} {
		events = append(events, Event{Type: EventCheck, GameID: g.ID, Side: side, InCheck: g.players[side].InCheck, Status: g.status})
	}
	if g.status.Over() {
		events = append(events, Event{Type: EventGameOver, GameID: g.ID, Side: g.turn, Status: g.status, Winner: g.winner})
	}
	return events
}

func emit(listeners []Listener, events []Event) {
	for _, ev := range events {
		for _, l := range listeners {
			l(ev)
		}
	}
}

// PieceView is a piece as the presentation layer sees it.
type PieceView struct {
	ID       PieceID   `json:"id"`
	Type     PieceType `json:"type"`
	Side     Side      `json:"side"`
	Square   SquareID  `json:"square"`
	HasMoved bool      `json:"hasMoved"`
}

type CapturedPieces struct {
	White []PieceView `json:"white"`
	Black []PieceView `json:"black"`
}

type GameState struct {
	ID             string                 `json:"id"`
	Status         Status                 `json:"status"`
	ToMove         Side                   `json:"toMove"`
	Winner         *Side                  `json:"winner"`
	Board          map[SquareID]PieceView `json:"board"`
	Tags           map[SquareID]Tag       `json:"tags"`
	Players        [2]Player              `json:"players"`
	CapturedPieces CapturedPieces         `json:"capturedPieces"`
	IsCheck        bool                   `json:"isCheck"`
	LastMove       *SimpleMove            `json:"lastMove"`
	MoveHistory    []Ply                  `json:"moveHistory"`
}

// State returns a snapshot safe to hand to other goroutines.
func (g *Game) State() GameState {
	g.mu.Lock()
	defer g.mu.Unlock()

	st := GameState{
		ID:          g.ID,
		Status:      g.status,
		ToMove:      g.turn,
		Board:       make(map[SquareID]PieceView),
		Tags:        make(map[SquareID]Tag),
		Players:     [2]Player{g.players[White].clone(), g.players[Black].clone()},
		IsCheck:     g.players[g.turn].InCheck,
		MoveHistory: append([]Ply(nil), g.history...),
	}
	if g.winner != nil {
		w := *g.winner
		st.Winner = &w
	}
	if g.lastMove != nil {
		lm := *g.lastMove
		st.LastMove = &lm
	}
	for i := range g.board.squares {
		sq := &g.board.squares[i]
		if sq.Tags != 0 {
			st.Tags[sq.ID] = sq.Tags
		}
		if !sq.Empty() {
			st.Board[sq.ID] = g.view(sq.Occupant)
		}
	}
	st.CapturedPieces.White = g.views(g.players[White].Captures)
	st.CapturedPieces.Black = g.views(g.players[Black].Captures)
	return st
}

func (g *Game) view(id PieceID) PieceView {
	p := &g.board.pieces[id]
	return PieceView{ID: p.ID, Type: p.Type, Side: p.Side, Square: p.Square, HasMoved: p.HasMoved()}
}

func (g *Game) views(ids []PieceID) []PieceView {
	out := make([]PieceView, 0, len(ids))
	for _, id := range ids {
		out = append(out, g.view(id))
	}
	return out
}

// String draws the board with White at the bottom, for logs and tests.
func (g *Game) String() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	var sb strings.Builder
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			p := g.board.occupant(row, col)
			if p == nil {
				sb.WriteByte('.')
				continue
			}
			sb.WriteByte(p.symbol())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
