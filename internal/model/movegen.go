package model

type offset struct{ row, col int }

var (
	rookDirs   = []offset{{0, 1}, {0, -1}, {1, 0}, {-1, 0}}
	bishopDirs = []offset{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	queenDirs  = append(append([]offset{}, rookDirs...), bishopDirs...)
	knightDirs = []offset{{2, 1}, {2, -1}, {-2, 1}, {-2, -1}, {1, 2}, {1, -2}, {-1, 2}, {-1, -2}}
	kingDirs   = []offset{{0, 1}, {0, -1}, {1, 0}, {-1, 0}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

// CandidateSet groups the raw destinations of one piece. The three
// sequences are disjoint.
type CandidateSet struct {
	Moves    []SquareID `json:"moves"`
	Enemies  []SquareID `json:"enemies"`
	Castling []SquareID `json:"castling"`
}

func (c CandidateSet) Empty() bool {
	return len(c.Moves) == 0 && len(c.Enemies) == 0 && len(c.Castling) == 0
}

func (c CandidateSet) Len() int {
	return len(c.Moves) + len(c.Enemies) + len(c.Castling)
}

func (c CandidateSet) Contains(sq SquareID) bool {
	for _, list := range [][]SquareID{c.Moves, c.Enemies, c.Castling} {
		for _, s := range list {
			if s == sq {
				return true
			}
		}
	}
	return false
}

// All returns every destination, moves first, then captures, then castling.
func (c CandidateSet) All() []SquareID {
	all := make([]SquareID, 0, c.Len())
	all = append(all, c.Moves...)
	all = append(all, c.Enemies...)
	return append(all, c.Castling...)
}

// Candidates returns the raw destinations of a live piece, ignoring whether
// the move would leave its own king attacked.
func (b *Board) Candidates(id PieceID) (CandidateSet, bool) {
	p, ok := b.Piece(id)
	if !ok || p.Captured() {
		return CandidateSet{}, false
	}
	return b.candidates(p, true), true
}

func (b *Board) candidates(p *Piece, withCastling bool) CandidateSet {
	var c CandidateSet
	switch p.Type {
	case Pawn:
		b.pawnCandidates(p, &c)
	case Rook:
		b.slide(p, rookDirs, &c)
	case Bishop:
		b.slide(p, bishopDirs, &c)
	case Queen:
		b.slide(p, queenDirs, &c)
	case Knight:
		b.probe(p, knightDirs, &c)
	case King:
		b.probe(p, kingDirs, &c)
		if withCastling {
			b.castlingCandidates(p, &c)
		}
	default:
		panic("model: piece " + p.Type.String() + " has no move pattern")
	}
	return c
}

func (b *Board) pawnCandidates(p *Piece, c *CandidateSet) {
	row, col := p.Square.Row(), p.Square.Col()
	dir := p.Side.forward()

	steps := 1
	if !p.HasMoved() {
		steps = 2
	}
	for i := 1; i <= steps; i++ {
		r := row + dir*i
		if !b.IsValidPosition(r, col) || b.occupant(r, col) != nil {
			break
		}
		c.Moves = append(c.Moves, squareID(r, col))
	}

	for _, dc := range []int{-1, 1} {
		r, cc := row+dir, col+dc
		if !b.IsValidPosition(r, cc) {
			continue
		}
		if target := b.occupant(r, cc); target != nil && target.Side != p.Side {
			c.Enemies = append(c.Enemies, squareID(r, cc))
		}
	}
}

func (b *Board) slide(p *Piece, dirs []offset, c *CandidateSet) {
	row, col := p.Square.Row(), p.Square.Col()
	for _, d := range dirs {
		r, cc := row+d.row, col+d.col
		for b.IsValidPosition(r, cc) {
			target := b.occupant(r, cc)
			if target == nil {
				c.Moves = append(c.Moves, squareID(r, cc))
			} else {
				if target.Side != p.Side {
					c.Enemies = append(c.Enemies, squareID(r, cc))
				}
				break
			}
			r, cc = r+d.row, cc+d.col
		}
	}
}

func (b *Board) probe(p *Piece, dirs []offset, c *CandidateSet) {
	row, col := p.Square.Row(), p.Square.Col()
	for _, d := range dirs {
		r, cc := row+d.row, col+d.col
		if !b.IsValidPosition(r, cc) {
			continue
		}
		target := b.occupant(r, cc)
		switch {
		case target == nil:
			c.Moves = append(c.Moves, squareID(r, cc))
		case target.Side != p.Side:
			c.Enemies = append(c.Enemies, squareID(r, cc))
		}
	}
}

// castlingCandidates adds the square two columns toward each corner when the
// king and that corner's rook have never moved and nothing stands between them.
func (b *Board) castlingCandidates(king *Piece, c *CandidateSet) {
	if king.HasMoved() {
		return
	}
	row, col := king.Square.Row(), king.Square.Col()
	for _, dir := range []int{-1, 1} {
		corner := 0
		if dir > 0 {
			corner = 7
		}
		// the rook has to sit beyond the king's landing square
		if (corner-col)*dir < 3 {
			continue
		}
		rook := b.occupant(row, corner)
		if rook == nil || rook.Type != Rook || rook.Side != king.Side || rook.HasMoved() {
			continue
		}
		clear := true
		for cc := col + dir; cc != corner; cc += dir {
			if b.occupant(row, cc) != nil {
				clear = false
				break
			}
		}
		if clear {
			c.Castling = append(c.Castling, squareID(row, col+2*dir))
		}
	}
}

// castlingRookTarget is where the rook lands: the square the king crossed.
func castlingRookTarget(kingFrom, kingTo SquareID) SquareID {
	return squareID(kingFrom.Row(), (kingFrom.Col()+kingTo.Col())/2)
}
