package main

import (
	"github.com/benbeisheim/chessrules-backend/internal/config"
	"github.com/benbeisheim/chessrules-backend/internal/controller"
	"github.com/benbeisheim/chessrules-backend/internal/middleware"
	"github.com/benbeisheim/chessrules-backend/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
)

func newApp(cfg config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "chessrules",
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Origins(),
		AllowHeaders:     "Origin, Content-Type, Accept, " + middleware.ClientIDHeader,
		AllowMethods:     "GET, POST, DELETE, OPTIONS",
		AllowCredentials: true,
	}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))

	// Initialize services
	hub := service.NewHub()
	gameManager := service.NewGameManager(hub)
	gameService := service.NewGameService(gameManager)

	// Initialize controllers
	gameController := controller.NewGameController(gameService)
	wsController := controller.NewWebSocketController(gameService)

	// Set up WebSocket routes
	app.Use("/ws/*", middleware.EnsureClientID())
	gameExists := func(gameID string) bool {
		_, err := gameManager.GetGame(gameID)
		return err == nil
	}
	app.Get("/ws/game/:gameId", middleware.WebSocketUpgrade(gameExists), websocket.New(wsController.HandleConnection, websocket.Config{
		ReadBufferSize:  cfg.WSReadBuffer,
		WriteBufferSize: cfg.WSWriteBuffer,
		Origins:         cfg.AllowOrigins,
	}))

	// Set up REST routes
	api := app.Group("/api", middleware.EnsureClientID())

	gameRoutes := api.Group("/game")
	gameRoutes.Post("/create", gameController.CreateGame)
	gameRoutes.Get("/", gameController.ListGames)
	gameRoutes.Get("/:gameId", gameController.GetGameState)
	gameRoutes.Delete("/:gameId", gameController.DeleteGame)
	gameRoutes.Post("/:gameId/start", gameController.StartGame)
	gameRoutes.Get("/:gameId/legal/:square", gameController.LegalMoves)
	gameRoutes.Post("/:gameId/move", gameController.MakeMove)

	return app
}
