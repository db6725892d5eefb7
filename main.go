package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"setlist/internal/adapters/bridge"
	"setlist/internal/adapters/chat"
	"setlist/internal/adapters/datasource"
	"setlist/internal/adapters/storage"
	"setlist/internal/adapters/ws"
	"setlist/internal/app"
	"setlist/internal/core/domain/command"
	"setlist/internal/core/port"
	"setlist/internal/core/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// runtime holds the collaborators that are rebuilt on every boot, so
// the console loop and the stop hook always see the current set.
type runtime struct {
	mu         sync.Mutex
	catalog    *storage.Catalog
	orders     *service.OrderList
	console    *service.ConsoleRouter
	chatCancel context.CancelFunc
}

func main() {
	log.Info().Msg("starting setlist...")

	viper.AddConfigPath(".")
	viper.SetConfigType("toml")

	log.Info().Msg("reading config file...")
	err := viper.ReadInConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("could not read config file")
	}

	var logLevel zerolog.Level

	switch viper.GetString("server.log_level") {
	case "info":
		logLevel = zerolog.InfoLevel
	case "debug":
		logLevel = zerolog.DebugLevel
	default:
		logLevel = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(logLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	registry := &command.Registry{}
	controller := ws.NewController(registry)
	application := app.New(controller)
	rt := &runtime{}

	cfg := service.NewConfig()
	cfg.RegisterKey("ui", service.KeyMeta{})
	cfg.RegisterKey("keymap", service.KeyMeta{})
	cfg.RegisterKey("telegram", service.KeyMeta{RequireRestart: true})
	cfg.RegisterKey("bridge", service.KeyMeta{RequireRestart: true})

	controller.AddNewClientListener(func(clientID string) {
		controller.Dispatch(clientID, port.ClientCommand{Action: "setConfig", Args: cfg.Snapshot()})
	})
	cfg.Watch(func(key string, meta service.KeyMeta) {
		if meta.RequireRestart {
			if err := application.Restart(ctx); err != nil {
				log.Error().Err(err).Str("key", key).Msg("restart after config change failed")
			}
		}
		controller.DispatchAll(port.ClientCommand{Action: "setConfig", Args: cfg.Snapshot()})
	})
	cfg.WatchFile()

	command.RegisterConfigCommand(registry, cfg)
	command.RegisterRestartCommand(registry, application)

	application.SetHooks(
		func(ctx context.Context) error { return boot(ctx, rt, registry, controller) },
		func(ctx context.Context) error { return shutdown(rt) },
	)

	if err := application.Start(ctx); err != nil {
		// Keep serving; clients see the ERROR status and can fix the
		// config and issue a restart.
		log.Error().Err(err).Msg("boot failed, waiting for restart")
	}

	go consoleLoop(ctx, rt)

	mux := http.NewServeMux()
	mux.Handle("/ws", controller)
	if dir := viper.GetString("server.static_dir"); dir != "" {
		mux.Handle("/", http.FileServer(http.Dir(dir)))
	}

	srv := &http.Server{
		Addr:              viper.GetString("server.listen_addr"),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down...")

	if err := application.Stop(context.Background()); err != nil {
		log.Warn().Err(err).Msg("error stopping core")
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("error shutting down server")
	}
}

// boot builds the per-run collaborators and registers their commands.
func boot(ctx context.Context, rt *runtime, registry *command.Registry, controller *ws.Controller) error {
	catalog, err := storage.OpenCatalog(viper.GetString("catalog.db_path"))
	if err != nil {
		return err
	}

	var selector port.SongSelector
	var bridgeClient *bridge.Client
	if viper.GetBool("bridge.enabled") {
		bridgeClient, err = bridge.NewClient(viper.GetString("bridge.url"))
		if err != nil {
			return err
		}
		if err := bridgeClient.Connect(ctx); err != nil {
			return err
		}
		selector = bridgeClient
	}

	orderStore := storage.NewOrderFile(viper.GetString("orders.file_path"))
	orders := service.NewOrderList(catalog, controller, orderStore, selector)
	if err := orders.Init(ctx); err != nil {
		return err
	}
	command.RegisterOrderCommands(registry, orders)

	search := service.NewSearch(catalog)
	search.Load(loadAliases(viper.GetString("catalog.aliases_path")))

	parser := service.NewParser(orders, search)
	chatRouter := service.NewChatRouter(parser, registry)
	console := service.NewConsoleRouter(parser, registry)
	command.RegisterMessageCommand(registry, console)

	sources := []datasource.Source{datasource.NewOtogeDB(viper.GetString("catalog.otogedb_url"))}
	if bridgeClient != nil {
		sources = append(sources, datasource.NewBridgeSource(bridgeClient))
	}
	command.RegisterSongUpdateCommand(registry, datasource.NewUpdater(catalog, sources...))

	var chatCancel context.CancelFunc
	if viper.GetBool("telegram.enabled") {
		admins := make([]int64, 0)
		for _, id := range viper.GetIntSlice("telegram.admin_ids") {
			admins = append(admins, int64(id))
		}
		tg, err := chat.NewTelegram(viper.GetString("telegram.bot_token"), admins, chatRouter.Handle)
		if err != nil {
			return err
		}
		var chatCtx context.Context
		chatCtx, chatCancel = context.WithCancel(ctx)
		go tg.Start(chatCtx)
	}

	rt.mu.Lock()
	rt.catalog = catalog
	rt.orders = orders
	rt.console = console
	rt.chatCancel = chatCancel
	rt.mu.Unlock()

	return nil
}

func shutdown(rt *runtime) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if rt.chatCancel != nil {
		rt.chatCancel()
		rt.chatCancel = nil
	}
	if rt.orders != nil {
		rt.orders.Close()
		rt.orders = nil
	}
	rt.console = nil

	var err error
	if rt.catalog != nil {
		err = rt.catalog.Close()
		rt.catalog = nil
	}
	return err
}

// consoleLoop feeds stdin lines through the console router, so the
// operator can issue the same commands as chat.
func consoleLoop(ctx context.Context, rt *runtime) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		rt.mu.Lock()
		console := rt.console
		rt.mu.Unlock()
		if console == nil {
			continue
		}
		console.HandleLine(ctx, scanner.Text())
	}
}

func loadAliases(path string) []service.AliasEntry {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("could not read alias file")
		return nil
	}

	var aliases []service.AliasEntry
	if err := json.Unmarshal(data, &aliases); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("could not parse alias file")
		return nil
	}

	return aliases
}
