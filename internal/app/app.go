package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/AdamLukas17/something-sweet/internal/catalog"
	"github.com/AdamLukas17/something-sweet/internal/config"
	"github.com/AdamLukas17/something-sweet/internal/directory"
	"github.com/AdamLukas17/something-sweet/internal/domain"
	"github.com/AdamLukas17/something-sweet/internal/notify"
	"github.com/AdamLukas17/something-sweet/internal/store"
	"github.com/AdamLukas17/something-sweet/internal/sweep"
	"github.com/AdamLukas17/something-sweet/internal/telegram"
)

type App struct {
	cfg     config.Config
	log     *zap.Logger
	bot     *tgbotapi.BotAPI
	httpSrv *http.Server
	repo    store.Repo
	router  *telegram.Router
	sweeper *sweep.Sweeper
}

func New(cfg config.Config, log *zap.Logger) (*App, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}
	bot.Debug = false

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}

	return &App{cfg: cfg, log: log, bot: bot, httpSrv: srv}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting something-sweet",
		zap.String("db", a.cfg.DBDriver),
		zap.Duration("sweepInterval", a.cfg.SweepInterval),
		zap.String("http", a.cfg.HTTPAddr),
	)

	repo, err := store.Open(ctx, a.cfg.DBDriver, a.cfg.DBPath, a.cfg.DatabaseURL)
	if err != nil {
		a.log.Error("open store failed", zap.Error(err))
		return err
	}
	a.repo = repo
	a.log.Info("store ready")

	cat, err := catalog.Load()
	if err != nil {
		a.log.Error("load catalog failed", zap.Error(err))
		return err
	}
	a.log.Info("catalog loaded", zap.Int("ideas", cat.Len()))

	rnd := domain.SystemRand{}

	notifier := notify.NewService(a.log)
	notifier.Register(notify.NewTelegramProvider(a.bot, a.log), true)
	notifier.Register(notify.NewWhatsAppProvider(), false)

	dir := directory.New(a.repo, rnd)
	a.router = telegram.NewRouter(a.bot, a.log, dir, cat, rnd)
	a.sweeper = sweep.New(dir, notifier, cat, rnd, a.log, a.cfg.SweepInterval)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", zap.Error(err))
		}
	}()

	go a.sweeper.Run(ctx)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updCh := a.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			a.log.Info("shutdown signal received")

			shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := a.httpSrv.Shutdown(shCtx)
			cancel()

			if err != nil {
				a.log.Warn("http server shutdown error", zap.Error(err))
			}
			if a.repo != nil {
				_ = a.repo.Close()
			}
			return nil

		case upd := <-updCh:
			a.router.HandleUpdate(ctx, upd)
		}
	}
}
