package api

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/sahilchouksey/career-guidance-api/utils/response"
)

// BodyLimit leaves room for a 10MB PDF plus multipart overhead
const BodyLimit = 12 * 1024 * 1024

type APIServer struct {
	app           *fiber.App
	listenAddress string
}

func NewAPIServer(listenAddress string) *APIServer {
	return &APIServer{
		app: fiber.New(fiber.Config{
			AppName:      "career-guidance-api",
			BodyLimit:    BodyLimit,
			ErrorHandler: ErrorHandler,
		}),
		listenAddress: listenAddress,
	}
}

func (s *APIServer) GetEngine() *fiber.App {
	return s.app
}

func (s *APIServer) Run() error {
	log.Info().Str("address", s.listenAddress).Msg("starting API server")
	return s.app.Listen(s.listenAddress)
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *APIServer) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// ErrorHandler renders errors that escape handlers through the JSON envelope
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		switch fe.Code {
		case fiber.StatusNotFound:
			return response.NotFound(c, fe.Message)
		case fiber.StatusRequestEntityTooLarge:
			return response.Error(c, fe.Code, "Request body too large", "PAYLOAD_TOO_LARGE")
		case fiber.StatusMethodNotAllowed:
			return response.Error(c, fe.Code, fe.Message, "METHOD_NOT_ALLOWED")
		}
		if fe.Code < fiber.StatusInternalServerError {
			return response.Error(c, fe.Code, fe.Message, "REQUEST_ERROR")
		}
	}

	log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("unhandled error")
	return response.InternalServerError(c, "")
}
