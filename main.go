package main

import (
	"github.com/filedash/filedash_server/internal"
	"github.com/filedash/filedash_server/internal/health"
	"github.com/filedash/filedash_server/internal/media"
	"github.com/filedash/filedash_server/internal/storage"
	"github.com/filedash/filedash_server/internal/user"
	"github.com/filedash/filedash_server/internal/websocket"
	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp"
)

const version = "1.0.0"

func main() {
	config, err := internal.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
		return
	}

	db, err := internal.NewDB(config.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing database")
		return
	}

	backend, err := storage.NewBackend(&config.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing storage backend")
		return
	}

	hub := websocket.NewHub()
	go hub.Run()

	mediaRepository := media.NewPostgresRepository(db)
	processor := media.NewProcessor(mediaRepository, backend, hub, config.Upload)
	mediaService := media.NewService(mediaRepository, backend, hub, processor, config.Upload)
	mediaEndpoints := media.NewEndpoints(mediaService, mediaRepository, backend)

	userRepository := user.NewPostgresUserRepository(db)
	userEndpoints := user.NewEndpoints(userRepository)
	healthEndpoints := health.NewEndpoints(version, db)
	wsHandler := websocket.NewHandler(hub, config.CORS.AllowedOrigins)

	requestHandler := internal.NewRequestHandler(config, mediaEndpoints, userEndpoints, healthEndpoints, wsHandler)

	server := &fasthttp.Server{
		Handler: requestHandler,
		// Uploads are consumed as a stream so multi-hundred-megabyte files
		// never sit in memory.
		StreamRequestBody:  true,
		MaxRequestBodySize: config.Server.MaxUploadBytes,
	}

	log.Info().Str("addr", config.Server.Addr).Msg("Server starting")
	if err := server.ListenAndServe(config.Server.Addr); err != nil {
		log.Fatal().Err(err).Msg("Error starting server")
	}
}
