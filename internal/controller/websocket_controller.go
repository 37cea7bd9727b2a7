package controller

import (
	"encoding/json"
	"fmt"

	"github.com/benbeisheim/chessrules-backend/internal/model"
	"github.com/benbeisheim/chessrules-backend/internal/service"
	"github.com/benbeisheim/chessrules-backend/internal/ws"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/websocket/v2"
)

type WebSocketController struct {
	gameService *service.GameService
}

func NewWebSocketController(gameService *service.GameService) *WebSocketController {
	return &WebSocketController{
		gameService: gameService,
	}
}

// HandleConnection is called when a new WebSocket connection is established
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	gameID, _ := c.Locals("wsGameID").(string)
	clientID, _ := c.Locals("wsClientID").(string)

	if err := wsc.gameService.RegisterConnection(gameID, clientID, c); err != nil {
		log.Warnw("failed to register connection", "game", gameID, "client", clientID, "error", err)
		c.Close()
		return
	}
	defer wsc.gameService.UnregisterConnection(gameID, clientID)

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			log.Debugw("websocket read ended", "game", gameID, "client", clientID, "error", err)
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		wsc.dispatch(gameID, clientID, message)
	}
}

// dispatch handles one raw text frame. Failures go back to the sender as an
// error message.
func (wsc *WebSocketController) dispatch(gameID, clientID string, raw []byte) {
	var msg ws.Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		wsc.sendError(gameID, clientID, fmt.Errorf("parse error: %w", err))
		return
	}
	if err := wsc.handleMessage(gameID, clientID, msg); err != nil {
		wsc.sendError(gameID, clientID, err)
	}
}

func (wsc *WebSocketController) handleMessage(gameID, clientID string, msg ws.Message) error {
	switch msg.Type {
	case ws.MessageTypeMove:
		var move model.MoveRequest
		if err := json.Unmarshal(msg.Payload, &move); err != nil {
			return err
		}
		// the new state reaches every client through the game's signals
		_, err := wsc.gameService.HandleMove(gameID, move)
		return err

	case ws.MessageTypeLegalMoves:
		var req ws.LegalMovesRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return err
		}
		set, _, err := wsc.gameService.LegalDestinations(gameID, req.Square)
		if err != nil {
			return err
		}
		reply, err := ws.NewMessage(ws.MessageTypeLegalMoves, LegalMovesResponse{
			Square:   req.Square,
			Moves:    set.Moves,
			Enemies:  set.Enemies,
			Castling: set.Castling,
		})
		if err != nil {
			return err
		}
		return wsc.gameService.Reply(gameID, clientID, reply)

	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
}

func (wsc *WebSocketController) sendError(gameID, clientID string, err error) {
	msg, merr := ws.NewMessage(ws.MessageTypeError, ws.ErrorPayload{Error: err.Error()})
	if merr != nil {
		return
	}
	if werr := wsc.gameService.Reply(gameID, clientID, msg); werr != nil {
		log.Warnw("failed to send error", "game", gameID, "client", clientID, "error", werr)
	}
}
