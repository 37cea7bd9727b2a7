package service

import (
	"fmt"

	"github.com/benbeisheim/chessrules-backend/internal/model"
	"github.com/benbeisheim/chessrules-backend/internal/ws"
	"github.com/google/uuid"
)

type GameService struct {
	gameManager *GameManager
}

func NewGameService(gameManager *GameManager) *GameService {
	return &GameService{
		gameManager: gameManager,
	}
}

func (gs *GameService) CreateGame(opts CreateOptions) (string, error) {
	gameID := uuid.New().String()

	if _, err := gs.gameManager.CreateGame(gameID, opts); err != nil {
		return "", fmt.Errorf("failed to create game: %w", err)
	}

	return gameID, nil
}

func (gs *GameService) StartGame(gameID string) (model.GameState, error) {
	if err := gs.gameManager.StartGame(gameID); err != nil {
		return model.GameState{}, fmt.Errorf("failed to start game %s: %w", gameID, err)
	}
	return gs.gameManager.GetGameState(gameID)
}

func (gs *GameService) ListGames() []string {
	return gs.gameManager.GameIDs()
}

func (gs *GameService) DeleteGame(gameID string) error {
	return gs.gameManager.DeleteGame(gameID)
}

func (gs *GameService) GetGameState(gameID string) (model.GameState, error) {
	return gs.gameManager.GetGameState(gameID)
}

func (gs *GameService) LegalDestinations(gameID, square string) (model.CandidateSet, bool, error) {
	return gs.gameManager.LegalDestinations(gameID, square)
}

func (gs *GameService) HandleMove(gameID string, move model.MoveRequest) (model.GameState, error) {
	if err := gs.gameManager.MakeMove(gameID, move); err != nil {
		return model.GameState{}, fmt.Errorf("move %s-%s rejected: %w", move.From, move.To, err)
	}

	return gs.gameManager.GetGameState(gameID)
}

func (gs *GameService) RegisterConnection(gameID string, clientID string, conn Conn) error {
	return gs.gameManager.RegisterConnection(gameID, clientID, conn)
}

func (gs *GameService) UnregisterConnection(gameID string, clientID string) {
	gs.gameManager.UnregisterConnection(gameID, clientID)
}

// Reply sends a message to a single websocket client of a game.
func (gs *GameService) Reply(gameID string, clientID string, msg ws.Message) error {
	return gs.gameManager.hub.Send(gameID, clientID, msg)
}
