// main.go
package main

import (
	"context"
	"os"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/gkirkpatrick/magic-notes/auth"
	"github.com/gkirkpatrick/magic-notes/config"
	httphandlers "github.com/gkirkpatrick/magic-notes/http"
	"github.com/gkirkpatrick/magic-notes/postgres"
	"github.com/gkirkpatrick/magic-notes/store"
	"github.com/gkirkpatrick/magic-notes/ws"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("NOTES_CONFIG"))
	if err != nil {
		log := newLogger("")
		log.Fatal().Err(err).Msg("load config")
	}

	log := newLogger(cfg.LogLevel)

	var st store.Store
	if cfg.DatabaseURL == "" {
		log.Warn().Msg("no DATABASE_URL set, using volatile in-memory store")
		st = store.NewMemory()
	} else {
		if err := postgres.Migrate(cfg.DatabaseURL); err != nil {
			log.Fatal().Err(err).Msg("migrate database")
		}
		pg, err := postgres.Connect(context.Background(), cfg.DatabaseURL, log)
		if err != nil {
			log.Fatal().Err(err).Msg("connect database")
		}
		defer pg.Close()
		st = pg
	}

	var hub *ws.Hub
	if cfg.EnableWS {
		hub = ws.NewHub(log)
		go hub.Run()
	}

	app := fiber.New(fiber.Config{AppName: "magic-notes"})
	app.Use(httphandlers.RequestLogger(log))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	if hub != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		app.Get("/ws", websocket.New(hub.HandleConnection))
	}

	var broadcaster httphandlers.Broadcaster
	if hub != nil {
		broadcaster = hub
	}

	server := httphandlers.NewServer(st, broadcaster, log)
	api := app.Group("/api", auth.Middleware(cfg.TokenHash))
	server.Register(api)

	log.Info().Str("addr", cfg.ListenAddr).Bool("ws", cfg.EnableWS).Msg("server starting")
	if err := app.Listen(cfg.ListenAddr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
}
