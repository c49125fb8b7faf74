package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/dataslice/internal/assign"
)

//go:embed schema.cue
var schemaCUE string

// Config is a decoded deployment configuration.
type Config struct {
	Bounds  assign.Config `json:"bounds"`
	Dataset string        `json:"dataset"`
	DB      string        `json:"db"`
}

// Default returns the configuration used when no file is given.
// It matches the schema defaults.
func Default() *Config {
	return &Config{Bounds: assign.DefaultConfig()}
}

// Error is a configuration problem, positioned when CUE knows where it is.
type Error struct {
	Pos     token.Pos
	Message string
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return e.Message
}

// Load reads and parses the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg, err := Parse(data, path)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	cfg.Dataset = resolve(dir, cfg.Dataset)
	cfg.DB = resolve(dir, cfg.DB)
	return cfg, nil
}

// Parse evaluates CUE source against the schema. filename is used only in
// error positions.
func Parse(data []byte, filename string) (*Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("config schema: %w", err)
	}

	user := ctx.CompileBytes(data, cue.Filename(filename))
	if err := user.Err(); err != nil {
		return nil, fromCUE(err)
	}

	v := schema.LookupPath(cue.ParsePath("#Config")).Unify(user)
	if err := v.Validate(cue.Final(), cue.Concrete(true)); err != nil {
		return nil, fromCUE(err)
	}

	var cfg Config
	if err := v.Decode(&cfg); err != nil {
		return nil, fromCUE(err)
	}

	// The schema cannot relate min and max across defaults; check here.
	if err := cfg.Bounds.Validate(); err != nil {
		return nil, &Error{Message: fmt.Sprintf("bounds: %v", err)}
	}
	return &cfg, nil
}

func resolve(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// fromCUE keeps the first CUE error, with its path and position.
func fromCUE(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &Error{Message: err.Error()}
	}

	first := errs[0]
	format, args := first.Msg()
	msg := fmt.Sprintf(format, args...)
	if path := first.Path(); len(path) > 0 {
		msg = strings.Join(path, ".") + ": " + msg
	}
	return &Error{Pos: first.Position(), Message: msg}
}
