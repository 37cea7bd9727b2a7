package model

import "errors"

var (
	ErrNotStarted       = errors.New("game not started")
	ErrAlreadyStarted   = errors.New("game already started")
	ErrGameOver         = errors.New("game is over")
	ErrUnknownSquare    = errors.New("unknown square")
	ErrUnknownPiece     = errors.New("no piece at square")
	ErrWrongTurn        = errors.New("not your turn")
	ErrNotOwnPiece      = errors.New("piece belongs to the other side")
	ErrIllegalMove      = errors.New("illegal move")
	ErrInvalidPromotion = errors.New("invalid promotion piece")
	ErrInvalidPlacement = errors.New("invalid placement")
)
