package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	chatHandler "github.com/voxlab/charchat/internal/handler/chat"
	personaHandler "github.com/voxlab/charchat/internal/handler/persona"
	speechHandler "github.com/voxlab/charchat/internal/handler/speech"
	wsHandler "github.com/voxlab/charchat/internal/handler/ws"
	middlewarePkg "github.com/voxlab/charchat/internal/middleware"
	chatModel "github.com/voxlab/charchat/internal/model/chat"
	personaModel "github.com/voxlab/charchat/internal/model/persona"
	chatService "github.com/voxlab/charchat/internal/service/chat"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(personas personaModel.Store, turns chatModel.TurnStore, chatSvc *chatService.Service, speechSvc speechHandler.SpeechService) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Route("/api", func(api chi.Router) {
		personaHandler.New(personas).RegisterRoutes(api)
		chatHandler.New(chatSvc, turns).RegisterRoutes(api)
		wsHandler.New(chatSvc).RegisterRoutes(api)

		// Register speech routes only when a transcriber is configured
		if speechSvc != nil {
			speechHandler.New(speechSvc).RegisterRoutes(api)
		}
	})

	return r
}
