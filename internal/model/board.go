package model

import (
	"fmt"
	"strings"
)

// Board owns the 8x8 grid and the arena of every piece created for the game.
// Squares and pieces point at each other through SquareID and PieceID handles.
type Board struct {
	squares [64]Square
	pieces  []Piece
	labels  map[string]SquareID
}

func newEmptyBoard() *Board {
	b := &Board{
		pieces: make([]Piece, 0, 32),
		labels: make(map[string]SquareID, 64),
	}
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			id := squareID(row, col)
			label := squareLabel(row, col)
			b.squares[id] = Square{ID: id, Row: row, Col: col, Label: label, Occupant: NoPiece}
			b.labels[label] = id
		}
	}
	return b
}

func (b *Board) IsValidPosition(row, col int) bool {
	return row >= 0 && row < 8 && col >= 0 && col < 8
}

func (b *Board) SquareAt(row, col int) (*Square, bool) {
	if !b.IsValidPosition(row, col) {
		return nil, false
	}
	return &b.squares[squareID(row, col)], true
}

func (b *Board) Square(id SquareID) (*Square, bool) {
	if !id.Valid() {
		return nil, false
	}
	return &b.squares[id], true
}

// SquareByLabel resolves an algebraic label such as "e4".
func (b *Board) SquareByLabel(label string) (*Square, bool) {
	id, ok := b.labels[strings.ToLower(strings.TrimSpace(label))]
	if !ok {
		return nil, false
	}
	return &b.squares[id], true
}

func (b *Board) Piece(id PieceID) (*Piece, bool) {
	if id < 0 || int(id) >= len(b.pieces) {
		return nil, false
	}
	return &b.pieces[id], true
}

func (b *Board) PieceAt(id SquareID) (*Piece, bool) {
	sq, ok := b.Square(id)
	if !ok || sq.Empty() {
		return nil, false
	}
	return &b.pieces[sq.Occupant], true
}

// occupant returns the piece on (row, col) or nil when the square is empty.
func (b *Board) occupant(row, col int) *Piece {
	occ := b.squares[squareID(row, col)].Occupant
	if occ == NoPiece {
		return nil
	}
	return &b.pieces[occ]
}

func (b *Board) addPiece(pt PieceType, side Side, at SquareID) PieceID {
	id := PieceID(len(b.pieces))
	b.pieces = append(b.pieces, Piece{ID: id, Type: pt, Side: side, Square: NoSquare})
	b.place(id, at)
	return id
}

// place puts a lifted piece onto an empty square.
func (b *Board) place(id PieceID, at SquareID) {
	sq := &b.squares[at]
	if sq.Occupant != NoPiece {
		panic(fmt.Sprintf("model: cannot place piece %d on %s, held by piece %d", id, sq.Label, sq.Occupant))
	}
	p := &b.pieces[id]
	if p.Square != NoSquare {
		panic(fmt.Sprintf("model: piece %d is still on %s", id, p.Square))
	}
	sq.Occupant = id
	p.Square = at
}

// lift takes a piece off its square and returns the square it left.
func (b *Board) lift(id PieceID) SquareID {
	p := &b.pieces[id]
	from := p.Square
	if from == NoSquare {
		panic(fmt.Sprintf("model: piece %d is not on the board", id))
	}
	if b.squares[from].Occupant != id {
		panic(fmt.Sprintf("model: square %s does not hold piece %d", from, id))
	}
	b.squares[from].Occupant = NoPiece
	p.Square = NoSquare
	return from
}

// relocate moves a piece from its square to an empty destination.
func (b *Board) relocate(id PieceID, to SquareID) SquareID {
	from := b.lift(id)
	b.place(id, to)
	return from
}

func (b *Board) kingSquare(side Side) SquareID {
	for i := range b.pieces {
		p := &b.pieces[i]
		if p.Type == King && p.Side == side && p.Square != NoSquare {
			return p.Square
		}
	}
	return NoSquare
}

func (b *Board) clearTags(mask Tag) {
	for i := range b.squares {
		b.squares[i].Tags &^= mask
	}
}

// Analysis is the check picture of one position.
type Analysis struct {
	InCheck [2]bool
	// Legal is false when the side to move has left its own king attacked.
	Legal bool
}

// Analyze computes, for both sides, whether the opponent attacks its king.
// Only the exposure of toMove decides legality of the position.
func (b *Board) Analyze(toMove Side) Analysis {
	var a Analysis
	for _, side := range []Side{White, Black} {
		king := b.kingSquare(side)
		if king == NoSquare {
			continue
		}
		attacked := b.attackedBy(side.Opponent())
		a.InCheck[side] = attacked[king]
	}
	a.Legal = !a.InCheck[toMove]
	return a
}

// attackedBy returns every square holding an enemy that side could capture.
func (b *Board) attackedBy(side Side) [64]bool {
	var attacked [64]bool
	for i := range b.pieces {
		p := &b.pieces[i]
		if p.Side != side || p.Captured() {
			continue
		}
		for _, sq := range b.candidates(p, false).Enemies {
			attacked[sq] = true
		}
	}
	return attacked
}

// Validate checks that every square and piece agree on occupancy.
func (b *Board) Validate() error {
	for i := range b.squares {
		sq := &b.squares[i]
		if sq.Occupant == NoPiece {
			continue
		}
		p, ok := b.Piece(sq.Occupant)
		if !ok {
			return fmt.Errorf("square %s holds unknown piece %d", sq.Label, sq.Occupant)
		}
		if p.Square != sq.ID {
			return fmt.Errorf("square %s holds piece %d which records %s", sq.Label, p.ID, p.Square)
		}
	}
	for i := range b.pieces {
		p := &b.pieces[i]
		if p.Square == NoSquare {
			continue
		}
		if b.squares[p.Square].Occupant != p.ID {
			return fmt.Errorf("piece %d records %s but the square holds %d", p.ID, p.Square, b.squares[p.Square].Occupant)
		}
	}
	return nil
}

var backRank = [8]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// standardPlacement is the initial arrangement, kings on the e-file.
func standardPlacement() Placement {
	pl := Placement{Pieces: make(map[string]PieceSpec, 32)}
	for col, pt := range backRank {
		pl.Pieces[squareLabel(Black.backRank(), col)] = PieceSpec{Type: pt, Side: Black}
		pl.Pieces[squareLabel(White.backRank(), col)] = PieceSpec{Type: pt, Side: White}
		pl.Pieces[squareLabel(1, col)] = PieceSpec{Type: Pawn, Side: Black}
		pl.Pieces[squareLabel(6, col)] = PieceSpec{Type: Pawn, Side: White}
	}
	return pl
}
