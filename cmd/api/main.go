package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/voxlab/charchat/internal/config"
	"github.com/voxlab/charchat/internal/handler"
	speechHandler "github.com/voxlab/charchat/internal/handler/speech"
	"github.com/voxlab/charchat/internal/model/persona"
	chatService "github.com/voxlab/charchat/internal/service/chat"
	"github.com/voxlab/charchat/internal/service/gemini"
	speechService "github.com/voxlab/charchat/internal/service/speech"
	"github.com/voxlab/charchat/internal/store/sqlite"
	"github.com/voxlab/charchat/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	defer logger.Sync()
	log := logger.L()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Info("no .env file loaded, using system environment", zap.Error(err))
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration", zap.Error(err))
	}

	db, err := sqlite.Open(cfg.Store.Path)
	if err != nil {
		log.Fatal("failed to open database", zap.String("path", cfg.Store.Path), zap.Error(err))
	}
	defer db.Close()

	personaStore := sqlite.NewPersonaStore(db)
	seedPersonas(ctx, personaStore)

	turnStore := sqlite.NewTurnStore(db)

	// The model gateway needs credentials; without them every exchange
	// reports the failure in its reply text.
	var generator chatService.Generator
	if cfg.Gemini.Enabled() {
		generator = gemini.NewClient(cfg.Gemini)
		log.Info("model gateway initialized")
	} else {
		generator = unavailableGenerator{}
		log.Warn("GEMINI_API_KEY not set, chat replies will report the missing gateway")
	}

	chatSvc := chatService.NewService(personaStore, turnStore, generator, cfg.Chat.RecentTurnLimit)

	var speechSvc speechHandler.SpeechService
	if cfg.Speech.Enabled {
		transcriber, err := speechService.NewGoogleTranscriber(ctx, cfg.Speech)
		if err != nil {
			log.Warn("failed to initialize speech service, continuing without it", zap.Error(err))
		} else {
			speechSvc = speechService.NewService(transcriber, cfg.Speech.FFmpegPath)
			log.Info("speech service initialized")
		}
	} else {
		log.Info("speech credentials not configured, skipping speech routes")
	}

	router := handler.NewRouter(personaStore, turnStore, chatSvc, speechSvc)

	startServer(ctx, cfg.Server, router)
}

// seedPersonas makes sure the built-in characters exist. Reruns are
// harmless; duplicates are skipped.
func seedPersonas(ctx context.Context, store persona.Store) {
	for _, p := range persona.Seed() {
		if _, err := store.Create(ctx, p.Name, p.Description, p.PromptTemplate); err != nil {
			if errors.Is(err, persona.ErrAlreadyExists) {
				continue
			}
			logger.L().Warn("failed to seed persona", zap.String("name", p.Name), zap.Error(err))
		}
	}
}

// unavailableGenerator stands in when no gateway credentials are present.
type unavailableGenerator struct{}

func (unavailableGenerator) Generate(context.Context, string) (string, error) {
	return "", errors.New("model gateway not configured: GEMINI_API_KEY is missing")
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.L().Info("charchat backend listening", zap.String("addr", serverCfg.Addr))
	if err := runServer(ctx, srv); err != nil {
		logger.L().Fatal("server error", zap.Error(err))
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
