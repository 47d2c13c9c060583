package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/glabrego/pkbrowse/internal/address"
	"github.com/glabrego/pkbrowse/internal/app"
	"github.com/glabrego/pkbrowse/internal/commands"
	"github.com/glabrego/pkbrowse/internal/config"
	"github.com/glabrego/pkbrowse/internal/logger"
	"github.com/glabrego/pkbrowse/internal/perkeep"
	"github.com/glabrego/pkbrowse/internal/session"
	"github.com/glabrego/pkbrowse/internal/storage"
	"github.com/glabrego/pkbrowse/internal/tui"
)

var (
	debugMode  bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "pkbrowse [address]",
	Short: "Browse a Perkeep server from the terminal",
	Long: `pkbrowse searches a Perkeep server and shows the results as a grid of
thumbnail cells. The optional address is a web UI address such as
"/ui/?q=tag:cats" or "?p=<blobref>&newui=1" and selects the initial
search or item. Its parameters are applied under the configured UI root.`,
	Args:          cobra.MaximumNArgs(1),
	RunE:          runTUI,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "Path to the config file")
}

// env is everything a command needs to reach the server and the cache.
type env struct {
	cfg     config.Config
	repo    *storage.Repository
	client  *perkeep.Client
	service *app.Service
}

func setup(ctx context.Context) (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	logPath := cfg.LogPath
	if logPath == "" {
		logPath = logger.DefaultLogPath()
	}
	if err := logger.Init(logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v, logging disabled\n", err)
	}
	logger.SetDebug(debugMode || cfg.Debug)

	repo, err := storage.NewRepository(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}
	if err := repo.Init(ctx); err != nil {
		_ = repo.Close()
		return nil, fmt.Errorf("storage schema error: %w", err)
	}

	client := perkeep.NewClient(cfg.Server, cfg.User, cfg.Password, nil)
	return &env{
		cfg:     cfg,
		repo:    repo,
		client:  client,
		service: app.NewService(client, repo),
	}, nil
}

func (e *env) Close() {
	_ = e.repo.Close()
	logger.Close()
}

// startAddress places the parameters of the optional address argument
// under the UI root. The argument's own location is dropped. react=1 is
// added unless the argument names a detail item or already carries it.
func startAddress(uiRoot string, args []string) (address.Address, error) {
	root, err := address.Parse(uiRoot)
	if err != nil {
		return address.Address{}, err
	}
	root = root.ClearParams()

	var arg address.Address
	if len(args) > 0 {
		if arg, err = address.Parse(args[0]); err != nil {
			return address.Address{}, err
		}
	}

	a := root
	if _, detail := arg.DetailRef(); !detail && !arg.IsReactMode() {
		a = a.With(address.ParamReact, "1")
	}
	for _, k := range arg.Keys() {
		a = a.With(k, arg.Get(k))
	}
	return a, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
	defer cancel()

	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	start, err := startAddress(e.cfg.UIRoot, args)
	if err != nil {
		return err
	}

	sizeIdx, err := e.service.ThumbnailSizeIndex(ctx, commands.DefaultThumbnailSizeIndex)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not load UI preferences (%v), using defaults\n", err)
		sizeIdx = commands.DefaultThumbnailSizeIndex
	}

	uiRoot := e.cfg.UIRoot
	model := tui.NewModel(tui.Deps{
		Start:    start,
		UIRoot:   uiRoot,
		Provider: session.NewRemoteProvider(e.service, e.cfg.SearchLimit),
		Client:   e.service,
		Service:  e.service,
		Options: commands.Options{
			FanoutLimit:        e.cfg.FanoutLimit,
			ThumbnailSizeIndex: sizeIdx,
		},
		ItemURL: func(ref string) string { return e.client.ItemURL(uiRoot, ref) },
	})

	program := tea.NewProgram(model, tea.WithAltScreen())
	final, err := program.Run()
	if m, ok := final.(tui.Model); ok {
		m.Close()
	} else {
		model.Close()
	}
	if err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}
