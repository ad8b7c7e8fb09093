package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/abhisek/mnemos/internal/catalog"
	"github.com/abhisek/mnemos/internal/config"
	"github.com/abhisek/mnemos/internal/prediction"
	"github.com/abhisek/mnemos/internal/review"
	"github.com/abhisek/mnemos/internal/spacedrep"
	"github.com/abhisek/mnemos/internal/store"
)

// env is everything a command needs, opened once per invocation.
type env struct {
	cfg         *config.Config
	logger      *slog.Logger
	store       *store.Store
	catalog     *catalog.Registry
	reviews     *review.Service
	predictions *prediction.Service
	learnerID   string
	logFile     *os.File
}

// openEnv loads config, opens the store and wires the services. Logs go to
// stderr.
func openEnv(cmd *cobra.Command) (*env, error) {
	return newEnv(cmd, false)
}

// newEnv builds the environment. With logToFile set, logs are appended to
// mnemos.log next to the database so they do not draw over the TUI.
func newEnv(cmd *cobra.Command, logToFile bool) (*env, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	dbPath, err := resolveDBPath(cmd, cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}

	e := &env{cfg: cfg}
	var logw io.Writer = cmd.ErrOrStderr()
	if logToFile {
		f, err := os.OpenFile(filepath.Join(filepath.Dir(dbPath), "mnemos.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		e.logFile = f
		logw = f
	}
	e.logger = cfg.NewLogger(logw)

	if err := e.wire(cmd, dbPath); err != nil {
		e.Close()
		return nil, err
	}
	e.logger.Debug("environment ready", "db", dbPath, "learner", e.learnerID, "courses", len(e.catalog.Courses()))
	return e, nil
}

func (e *env) wire(cmd *cobra.Command, dbPath string) error {
	registry, err := catalog.Load(e.cfg.Catalog.Dir)
	if err != nil {
		return err
	}
	params, err := e.cfg.SchedulerParams()
	if err != nil {
		return fmt.Errorf("scheduler config: %w", err)
	}
	scheduler, err := spacedrep.NewScheduler(params)
	if err != nil {
		return err
	}
	engine, err := prediction.NewEngine(e.cfg.PredictionParams())
	if err != nil {
		return err
	}
	learnerID, err := resolveLearner(cmd, dbPath)
	if err != nil {
		return err
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	e.store = st

	reviews, err := review.NewService(st, scheduler, e.cfg.Scheduler.DesiredRetention, e.logger)
	if err != nil {
		return err
	}

	e.catalog = registry
	e.reviews = reviews
	e.predictions = prediction.NewService(st, engine, e.logger)
	e.learnerID = learnerID
	return nil
}

func (e *env) Close() error {
	var err error
	if e.store != nil {
		err = e.store.Close()
	}
	if e.logFile != nil {
		e.logFile.Close()
	}
	return err
}

// resolveLearner returns the --learner flag, then MNEMOS_LEARNER, then a
// generated id persisted next to the database so it survives restarts.
func resolveLearner(cmd *cobra.Command, dbPath string) (string, error) {
	if id, _ := cmd.Flags().GetString("learner"); id != "" {
		return id, nil
	}
	if id := os.Getenv("MNEMOS_LEARNER"); id != "" {
		return id, nil
	}

	idPath := filepath.Join(filepath.Dir(dbPath), "learner-id")
	data, err := os.ReadFile(idPath)
	if err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return id, nil
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("read learner id: %w", err)
	}

	id := uuid.NewString()
	if err := os.WriteFile(idPath, []byte(id+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("write learner id: %w", err)
	}
	return id, nil
}
