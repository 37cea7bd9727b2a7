package model

import "slices"

// Player is the per-side state: live pieces, the pieces the opponent took
// from it, the pieces it took, and its check and turn flags.
type Player struct {
	Side     Side      `json:"side"`
	Pieces   []PieceID `json:"pieces"`
	Lost     []PieceID `json:"lost"`
	Captures []PieceID `json:"captures"`
	InCheck  bool      `json:"inCheck"`
	HasTurn  bool      `json:"hasTurn"`
}

func newPlayer(side Side) *Player {
	return &Player{
		Side:     side,
		Pieces:   make([]PieceID, 0, 16),
		Lost:     make([]PieceID, 0),
		Captures: make([]PieceID, 0),
	}
}

// removePiece drops id from the live list and reports where it was.
func (p *Player) removePiece(id PieceID) int {
	idx := slices.Index(p.Pieces, id)
	if idx < 0 {
		return -1
	}
	p.Pieces = slices.Delete(p.Pieces, idx, idx+1)
	return idx
}

func (p *Player) restorePiece(id PieceID, idx int) {
	p.Pieces = slices.Insert(p.Pieces, idx, id)
}

func (p *Player) clone() Player {
	return Player{
		Side:     p.Side,
		Pieces:   slices.Clone(p.Pieces),
		Lost:     slices.Clone(p.Lost),
		Captures: slices.Clone(p.Captures),
		InCheck:  p.InCheck,
		HasTurn:  p.HasTurn,
	}
}
