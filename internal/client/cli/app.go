package cli

import (
	"bufio"
	"context"
	"os"
	"path/filepath"

	"github.com/caminho-app/caminho/internal/client/api"
	"github.com/caminho-app/caminho/internal/client/capture"
	"github.com/caminho-app/caminho/internal/client/config"
	"github.com/caminho-app/caminho/internal/client/content"
	"github.com/caminho-app/caminho/internal/client/intake"
	"github.com/caminho-app/caminho/internal/client/models"
	"github.com/caminho-app/caminho/internal/client/playback"
	"github.com/caminho-app/caminho/internal/client/push"
	"github.com/caminho-app/caminho/internal/client/store"
	"github.com/caminho-app/caminho/internal/client/upload"
	"github.com/caminho-app/caminho/internal/logging"
	"github.com/caminho-app/caminho/internal/metrics"

	_ "modernc.org/sqlite"
)

// App wires the controllers together and drives them from the REPL.
type App struct {
	config   *config.Config
	api      *api.Client
	store    *store.Store
	intake   *intake.Intake
	recorder *capture.Recorder
	author   *content.Controller
	push     *push.Controller
	player   *playback.Controller
	log      logging.Logger

	reader    *bufio.Reader
	userEmail string

	// episodes is the catalogue as last listed, in display order. Numeric
	// command arguments ("play 3") index into it.
	episodes []models.ContentItem
	filter   string
}

func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger, collector metrics.Collector) (*App, error) {
	a := &App{
		config: cfg,
		log:    log,
		reader: bufio.NewReader(os.Stdin),
	}

	if cfg.DBPath != "" {
		st, err := store.Open(ctx, cfg.DBPath)
		if err != nil {
			return nil, err
		}
		a.store = st
	}

	a.api = api.New(cfg.APIBaseURL, cfg.RequestsPerSecond, log)

	pipeline, err := upload.NewS3Pipeline(ctx, upload.S3Config{
		Region:        cfg.S3Region,
		Endpoint:      cfg.S3Endpoint,
		Bucket:        cfg.S3Bucket,
		AccessKey:     cfg.S3AccessKey,
		SecretKey:     cfg.S3SecretKey,
		PublicBaseURL: cfg.MediaBaseURL,
	}, log, collector)
	if err != nil {
		return nil, err
	}

	a.intake = intake.New(&intake.FFProbe{Bin: cfg.FFprobeBin}, log)

	device := capture.NewFFmpegDevice()
	device.Bin = cfg.FFmpegBin
	a.recorder = capture.NewRecorder(device, log)

	a.author = content.NewController(a.api, pipeline, log)

	platform := newFilePlatform(filepath.Join(filepath.Dir(cfg.DBPath), "push-state.json"))
	a.push = push.NewController(platform, a.api, cfg.VAPIDPublicKey, log, collector)

	var positions playback.PositionStore
	if a.store != nil {
		positions = a.store.Positions
	}
	element := playback.NewClockElement(a.durationOf)
	a.player = playback.NewController(element, positions, log, collector)

	return a, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.Close()
	a.Root(ctx)
}

func (a *App) Close() {
	if a.store != nil {
		_ = a.store.Close()
	}
}

func (a *App) isLoggedIn() bool {
	return a.api.UserID() != ""
}

// durationOf resolves a loaded audio URL back to the episode's declared
// length so the simulated element knows when the track ends.
func (a *App) durationOf(url string) float64 {
	for _, it := range a.episodes {
		if it.AudioURL == url {
			return float64(it.Duration)
		}
	}
	return 0
}
