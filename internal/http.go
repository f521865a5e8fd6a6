package internal

import (
	"strings"

	"github.com/filedash/filedash_server/internal/health"
	"github.com/filedash/filedash_server/internal/media"
	"github.com/filedash/filedash_server/internal/middleware"
	"github.com/filedash/filedash_server/internal/user"
	"github.com/filedash/filedash_server/internal/websocket"
	"github.com/valyala/fasthttp"
)

func NewRequestHandler(config *Config, mediaEndpoints *media.Endpoints, userEndpoints *user.Endpoints, healthEndpoints *health.HealthEndpoints, wsHandler *websocket.Handler) fasthttp.RequestHandler {
	corsMiddleware := middleware.NewCORSMiddleware(config.CORS.AllowedOrigins)

	handler := func(ctx *fasthttp.RequestCtx) {
		path := string(ctx.Path())
		method := string(ctx.Method())

		switch {
		case path == "/api/upload":
			if method == "POST" {
				mediaEndpoints.Upload(ctx)
			} else {
				ctx.Error("Method Not Allowed", fasthttp.StatusMethodNotAllowed)
			}

		case path == "/api/files":
			if method == "GET" {
				mediaEndpoints.ListFiles(ctx)
			} else {
				ctx.Error("Method Not Allowed", fasthttp.StatusMethodNotAllowed)
			}

		case strings.HasPrefix(path, "/api/download/"):
			if method == "GET" {
				ctx.SetUserValue("filename", strings.TrimPrefix(path, "/api/download/"))
				mediaEndpoints.Download(ctx)
			} else {
				ctx.Error("Method Not Allowed", fasthttp.StatusMethodNotAllowed)
			}

		case strings.HasPrefix(path, "/uploads/"):
			ctx.SetUserValue("filename", strings.TrimPrefix(path, "/uploads/"))
			mediaEndpoints.ServeOriginal(ctx)

		case strings.HasPrefix(path, "/thumbnails/"):
			ctx.SetUserValue("filename", strings.TrimPrefix(path, "/thumbnails/"))
			mediaEndpoints.ServeThumbnail(ctx)

		case strings.HasPrefix(path, "/video-thumbnails/"):
			ctx.SetUserValue("filename", strings.TrimPrefix(path, "/video-thumbnails/"))
			mediaEndpoints.ServeVideoThumbnail(ctx)

		case path == "/api/signup":
			if method == "POST" {
				userEndpoints.Signup(ctx)
			} else {
				ctx.Error("Method Not Allowed", fasthttp.StatusMethodNotAllowed)
			}

		case path == "/api/login":
			if method == "POST" {
				userEndpoints.Login(ctx)
			} else {
				ctx.Error("Method Not Allowed", fasthttp.StatusMethodNotAllowed)
			}

		case path == "/health":
			healthEndpoints.Health(ctx)

		case path == "/ws":
			wsHandler.HandleFastHTTP(ctx)

		default:
			ctx.Error("Not Found", fasthttp.StatusNotFound)
		}
	}

	return corsMiddleware.Handle(handler)
}
