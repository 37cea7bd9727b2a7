package main

import (
	"github.com/benbeisheim/chessrules-backend/internal/config"
	"github.com/gofiber/fiber/v2/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	log.SetLevel(cfg.LogLevel)

	app := newApp(cfg)

	log.Infow("listening", "addr", cfg.Addr, "origins", cfg.Origins())
	log.Fatal(app.Listen(cfg.Addr))
}
