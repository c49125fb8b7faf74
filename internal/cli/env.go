package cli

import (
	"errors"

	"github.com/roach88/dataslice/internal/assign"
	"github.com/roach88/dataslice/internal/config"
	"github.com/roach88/dataslice/internal/dataset"
	"github.com/roach88/dataslice/internal/store"
)

// env is the state shared by commands: the effective config, the dataset it
// names and an assigner over both.
type env struct {
	cfg      *config.Config
	data     *dataset.Dataset
	assigner *assign.Assigner
}

// loadConfig returns the config named by --config, or the defaults.
// Failures are reported through f.
func loadConfig(opts *RootOptions, f *OutputFormatter) (*config.Config, error) {
	if opts.Config == "" {
		return config.Default(), nil
	}

	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeConfig, err, nil)
	}
	f.VerboseLog("Loaded config %s", opts.Config)
	return cfg, nil
}

// loadDataset reads path, or returns the embedded master when path is empty.
func loadDataset(path string, f *OutputFormatter) (*dataset.Dataset, error) {
	if path == "" {
		return dataset.Master(), nil
	}

	data, err := dataset.LoadFile(path)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeDataset, err, validationDetails(err))
	}
	f.VerboseLog("Loaded dataset %s", path)
	return data, nil
}

func loadEnv(opts *RootOptions, f *OutputFormatter) (*env, error) {
	cfg, err := loadConfig(opts, f)
	if err != nil {
		return nil, err
	}

	data, err := loadDataset(cfg.Dataset, f)
	if err != nil {
		return nil, err
	}

	a, err := assign.New(data, cfg.Bounds)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeConfig, err, nil)
	}
	f.VerboseLog("Bounds: students %s, courses %s, lecturers %s",
		cfg.Bounds.Students, cfg.Bounds.Courses, cfg.Bounds.Lecturers)

	return &env{cfg: cfg, data: data, assigner: a}, nil
}

// openStore opens the assignment store at dbPath, falling back to the
// config's db. It returns nil when neither is set.
func (e *env) openStore(dbPath string, f *OutputFormatter) (*store.Store, error) {
	if dbPath == "" {
		dbPath = e.cfg.DB
	}
	if dbPath == "" {
		return nil, nil
	}

	s, err := store.Open(dbPath)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeStore, err, nil)
	}
	f.VerboseLog("Opened store %s", dbPath)
	return s, nil
}

// validationDetails exposes dataset validation errors as response details.
func validationDetails(err error) any {
	var verrs dataset.ValidationErrors
	if errors.As(err, &verrs) {
		return verrs
	}
	return nil
}
