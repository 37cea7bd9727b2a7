package controller

import (
	"errors"

	"github.com/benbeisheim/chessrules-backend/internal/model"
	"github.com/benbeisheim/chessrules-backend/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

type GameController struct {
	gameService *service.GameService
}

func NewGameController(gameService *service.GameService) *GameController {
	return &GameController{gameService: gameService}
}

// LegalMovesResponse lists the legal destinations of one piece as labels.
type LegalMovesResponse struct {
	Square   string           `json:"square"`
	Moves    []model.SquareID `json:"moves"`
	Enemies  []model.SquareID `json:"enemies"`
	Castling []model.SquareID `json:"castling"`
}

func (gc *GameController) CreateGame(c *fiber.Ctx) error {
	var opts service.CreateOptions
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&opts); err != nil {
			return errorJSON(c, fiber.StatusBadRequest, err)
		}
	}

	gameID, err := gc.gameService.CreateGame(opts)
	if err != nil {
		return errorJSON(c, statusFor(err), err)
	}
	return c.JSON(fiber.Map{
		"message": "Game created",
		"game_id": gameID,
	})
}

func (gc *GameController) ListGames(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"games": gc.gameService.ListGames(),
	})
}

func (gc *GameController) StartGame(c *fiber.Ctx) error {
	state, err := gc.gameService.StartGame(c.Params("gameId"))
	if err != nil {
		return errorJSON(c, statusFor(err), err)
	}
	return c.JSON(state)
}

func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	gameState, err := gc.gameService.GetGameState(c.Params("gameId"))
	if err != nil {
		return errorJSON(c, statusFor(err), err)
	}
	return c.JSON(gameState)
}

func (gc *GameController) DeleteGame(c *fiber.Ctx) error {
	if err := gc.gameService.DeleteGame(c.Params("gameId")); err != nil {
		return errorJSON(c, statusFor(err), err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (gc *GameController) LegalMoves(c *fiber.Ctx) error {
	square := c.Params("square")
	set, ok, err := gc.gameService.LegalDestinations(c.Params("gameId"), square)
	if err != nil {
		return errorJSON(c, statusFor(err), err)
	}
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no legal destinations from " + square,
		})
	}
	return c.JSON(LegalMovesResponse{
		Square:   square,
		Moves:    set.Moves,
		Enemies:  set.Enemies,
		Castling: set.Castling,
	})
}

func (gc *GameController) MakeMove(c *fiber.Ctx) error {
	var move model.MoveRequest
	if err := c.BodyParser(&move); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err)
	}

	state, err := gc.gameService.HandleMove(c.Params("gameId"), move)
	if err != nil {
		log.Debugw("move rejected", "game", c.Params("gameId"), "error", err)
		return errorJSON(c, statusFor(err), err)
	}
	return c.JSON(state)
}

func errorJSON(c *fiber.Ctx, status int, err error) error {
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

// statusFor maps engine and service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrGameNotFound),
		errors.Is(err, model.ErrUnknownSquare),
		errors.Is(err, model.ErrUnknownPiece):
		return fiber.StatusNotFound
	case errors.Is(err, model.ErrIllegalMove),
		errors.Is(err, model.ErrInvalidPromotion),
		errors.Is(err, model.ErrInvalidPlacement):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, model.ErrWrongTurn),
		errors.Is(err, model.ErrNotOwnPiece),
		errors.Is(err, model.ErrNotStarted),
		errors.Is(err, model.ErrAlreadyStarted),
		errors.Is(err, model.ErrGameOver),
		errors.Is(err, service.ErrGameExists):
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}
