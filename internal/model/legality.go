package model

// mutation records everything apply changed so undo can put it back.
type mutation struct {
	piece    PieceID
	from, to SquareID

	captured   PieceID
	capturedAt int

	rook             PieceID
	rookFrom, rookTo SquareID

	promotedFrom PieceType
}

// apply is the only path that moves pieces. Commit keeps its result;
// testMove hands it straight to undo.
func (g *Game) apply(id PieceID, to SquareID, promotion PieceType) mutation {
	b := g.board
	p := &b.pieces[id]
	m := mutation{
		piece:      id,
		from:       p.Square,
		to:         to,
		captured:   NoPiece,
		capturedAt: -1,
		rook:       NoPiece,
		rookFrom:   NoSquare,
		rookTo:     NoSquare,
	}

	if victim, ok := b.PieceAt(to); ok {
		m.captured = victim.ID
		m.capturedAt = g.players[victim.Side].removePiece(victim.ID)
		b.lift(victim.ID)
	}

	if p.Type == King && to.Row() == m.from.Row() && abs(to.Col()-m.from.Col()) == 2 {
		corner := 0
		if to.Col() > m.from.Col() {
			corner = 7
		}
		rookTo := castlingRookTarget(m.from, to)
		rook := b.occupant(m.from.Row(), corner)
		if rook != nil && rook.Type == Rook && rook.Side == p.Side && b.squares[rookTo].Empty() {
			m.rook = rook.ID
			m.rookFrom = rook.Square
			m.rookTo = rookTo
		}
	}

	b.relocate(id, to)
	p.Moves++
	if m.rook != NoPiece {
		b.relocate(m.rook, m.rookTo)
		b.pieces[m.rook].Moves++
	}

	if p.Type == Pawn && to.Row() == p.Side.Opponent().backRank() {
		m.promotedFrom = Pawn
		if promotion == NoPieceType {
			promotion = Queen
		}
		p.Type = promotion
	}
	return m
}

func (g *Game) undo(m mutation) {
	b := g.board
	p := &b.pieces[m.piece]
	if m.promotedFrom != NoPieceType {
		p.Type = m.promotedFrom
	}
	if m.rook != NoPiece {
		b.pieces[m.rook].Moves--
		b.relocate(m.rook, m.rookFrom)
	}
	p.Moves--
	b.relocate(m.piece, m.from)
	if m.captured != NoPiece {
		b.place(m.captured, m.to)
		if m.capturedAt >= 0 {
			g.players[b.pieces[m.captured].Side].restorePiece(m.captured, m.capturedAt)
		}
	}
}

// TestMove reports whether moving the piece to dest leaves its own king
// safe. The board is unchanged when it returns.
func (g *Game) TestMove(id PieceID, dest SquareID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.testMove(id, dest)
}

func (g *Game) testMove(id PieceID, dest SquareID) bool {
	p, ok := g.board.Piece(id)
	if !ok || p.Captured() || !dest.Valid() || dest == p.Square {
		return false
	}
	m := g.apply(id, dest, NoPieceType)
	legal := g.board.Analyze(p.Side).Legal
	g.undo(m)
	return legal
}

// legalDestinations filters the raw candidates of a piece through testMove.
func (g *Game) legalDestinations(p *Piece) CandidateSet {
	raw := g.board.candidates(p, true)
	return CandidateSet{
		Moves:    g.filterLegal(p.ID, raw.Moves),
		Enemies:  g.filterLegal(p.ID, raw.Enemies),
		Castling: g.filterLegal(p.ID, raw.Castling),
	}
}

func (g *Game) filterLegal(id PieceID, squares []SquareID) []SquareID {
	legal := make([]SquareID, 0, len(squares))
	for _, sq := range squares {
		if g.testMove(id, sq) {
			legal = append(legal, sq)
		}
	}
	return legal
}

// hasLegalMove reports whether any live piece of side has a legal destination.
func (g *Game) hasLegalMove(side Side) bool {
	pieces := append([]PieceID(nil), g.players[side].Pieces...)
	for _, id := range pieces {
		p := &g.board.pieces[id]
		for _, sq := range g.board.candidates(p, true).All() {
			if g.testMove(id, sq) {
				return true
			}
		}
	}
	return false
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
