// service/game_manager.go
package service

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/benbeisheim/chessrules-backend/internal/model"
	"github.com/benbeisheim/chessrules-backend/internal/ws"
	"github.com/gofiber/fiber/v2/log"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameExists   = errors.New("game already exists")
)

// CreateOptions describes a new game. An empty FEN means the standard setup.
type CreateOptions struct {
	FEN   string `json:"fen"`
	Start bool   `json:"start"`
}

type GameManager struct {
	games map[string]*model.Game
	hub   *Hub
	mu    sync.RWMutex
}

func NewGameManager(hub *Hub) *GameManager {
	return &GameManager{
		games: make(map[string]*model.Game),
		hub:   hub,
	}
}

func (gm *GameManager) CreateGame(gameID string, opts CreateOptions) (*model.Game, error) {
	game, err := newGame(gameID, opts)
	if err != nil {
		return nil, err
	}

	gm.mu.Lock()
	if _, exists := gm.games[gameID]; exists {
		gm.mu.Unlock()
		return nil, ErrGameExists
	}
	gm.games[gameID] = game
	gm.mu.Unlock()

	game.Subscribe(gm.relay(game))
	if opts.Start {
		if err := game.Start(); err != nil {
			return nil, err
		}
	}
	log.Infow("game created", "game", gameID, "fen", opts.FEN, "started", opts.Start)
	return game, nil
}

func newGame(gameID string, opts CreateOptions) (*model.Game, error) {
	if opts.FEN == "" {
		return model.NewGame(gameID), nil
	}
	placement, toMove, err := model.ParseFEN(opts.FEN)
	if err != nil {
		return nil, err
	}
	return model.NewGameFromPlacement(gameID, placement, toMove)
}

// relay forwards game signals to the websocket observers, followed by a
// fresh snapshot once the side to move changes.
func (gm *GameManager) relay(game *model.Game) model.Listener {
	return func(ev model.Event) {
		var t ws.MessageType
		switch ev.Type {
		case model.EventTurn:
			t = ws.MessageTypeTurn
		case model.EventCheck:
			t = ws.MessageTypeCheck
		case model.EventGameOver:
			t = ws.MessageTypeGameOver
		default:
			return
		}
		msg, err := ws.NewMessage(t, ev)
		if err != nil {
			log.Errorw("failed to marshal event", "game", game.ID, "error", err)
			return
		}
		gm.hub.Broadcast(game.ID, msg)
		if ev.Type == model.EventTurn {
			gm.BroadcastState(game.ID)
		}
	}
}

func (gm *GameManager) GetGame(gameID string) (*model.Game, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	game, exists := gm.games[gameID]
	if !exists {
		return nil, ErrGameNotFound
	}
	return game, nil
}

// GameIDs lists the hosted games in sorted order.
func (gm *GameManager) GameIDs() []string {
	gm.mu.RLock()
	ids := make([]string, 0, len(gm.games))
	for id := range gm.games {
		ids = append(ids, id)
	}
	gm.mu.RUnlock()
	slices.Sort(ids)
	return ids
}

// DeleteGame forgets the game and disconnects everyone watching it.
func (gm *GameManager) DeleteGame(gameID string) error {
	gm.mu.Lock()
	if _, exists := gm.games[gameID]; !exists {
		gm.mu.Unlock()
		return ErrGameNotFound
	}
	delete(gm.games, gameID)
	gm.mu.Unlock()

	gm.hub.CloseGame(gameID, "game deleted")
	log.Infow("game deleted", "game", gameID)
	return nil
}

func (gm *GameManager) StartGame(gameID string) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.Start()
}

func (gm *GameManager) GetGameState(gameID string) (model.GameState, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return model.GameState{}, err
	}
	return game.State(), nil
}

// LegalDestinations returns the legal destinations of the piece on square.
// ok is false when that piece cannot move.
func (gm *GameManager) LegalDestinations(gameID, square string) (set model.CandidateSet, ok bool, err error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return model.CandidateSet{}, false, err
	}
	if _, err := model.ParseSquare(square); err != nil {
		return model.CandidateSet{}, false, err
	}
	set, ok = game.LegalDestinationsAt(square)
	return set, ok, nil
}

func (gm *GameManager) MakeMove(gameID string, move model.MoveRequest) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.Move(move)
}

func (gm *GameManager) BroadcastState(gameID string) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return
	}
	msg, err := ws.NewMessage(ws.MessageTypeGameState, game.State())
	if err != nil {
		log.Errorw("failed to marshal state", "game", gameID, "error", err)
		return
	}
	gm.hub.Broadcast(gameID, msg)
}

func (gm *GameManager) RegisterConnection(gameID string, clientID string, conn Conn) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	if err := gm.hub.Register(gameID, clientID, conn); err != nil {
		return err
	}

	msg, err := ws.NewMessage(ws.MessageTypeGameState, game.State())
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	return gm.hub.Send(gameID, clientID, msg)
}

func (gm *GameManager) UnregisterConnection(gameID string, clientID string) {
	gm.hub.Unregister(gameID, clientID)
}
