package model

// MoveRequest is a move command expressed with square labels.
type MoveRequest struct {
	Side      Side      `json:"side"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Promotion PieceType `json:"promotion,omitempty"`
}

type CastleRookMove struct {
	From SquareID `json:"from"`
	To   SquareID `json:"to"`
}

// Ply is one committed half-move.
type Ply struct {
	Piece          PieceID         `json:"piece"`
	Side           Side            `json:"side"`
	Type           PieceType       `json:"type"`
	From           SquareID        `json:"from"`
	To             SquareID        `json:"to"`
	CapturedPiece  PieceID         `json:"capturedPiece"`
	CastleRookMove *CastleRookMove `json:"castleRookMove,omitempty"`
	Promotion      PieceType       `json:"promotion,omitempty"`
}

type SimpleMove struct {
	From SquareID `json:"from"`
	To   SquareID `json:"to"`
}
