package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/viper"

	"github.com/bibtidy/bibtidy"
	"github.com/bibtidy/bibtidy/internal/config"
	"github.com/bibtidy/bibtidy/pkg/errors"
	"github.com/bibtidy/bibtidy/pkg/gateway"
	"github.com/bibtidy/bibtidy/pkg/gateway/memory"
	"github.com/bibtidy/bibtidy/pkg/normalize"
	"github.com/bibtidy/bibtidy/pkg/records"
)

// libraryFile is a records file loaded into an in-memory gateway. Saving
// writes the current gateway contents back to the same path.
type libraryFile struct {
	path string
	lib  *memory.Library
}

// openLibrary reads the records file named by the config into memory.
// The format follows the file extension (.yaml, .yml, or .json).
func openLibrary(cfg *config.Config) (*libraryFile, error) {
	if cfg.Library == "" {
		return nil, errors.NewConfigError("cli", "no records file; pass --library or set library in config", nil)
	}

	data, err := os.ReadFile(cfg.Library)
	if err != nil {
		return nil, errors.NewConfigError("cli", "reading records file", err)
	}

	var recs []records.Record
	switch ext := strings.ToLower(filepath.Ext(cfg.Library)); ext {
	case ".json":
		err = json.Unmarshal(data, &recs)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &recs)
	default:
		return nil, errors.NewConfigError("cli", "unsupported records file extension "+ext, nil)
	}
	if err != nil {
		return nil, errors.WrapParse("records", cfg.Library, err)
	}

	// Keyless records get sequential keys so gateway operations can
	// address them.
	next := 1
	for i := range recs {
		if recs[i].Key == "" {
			recs[i].Key = fmt.Sprintf("R%06d", next)
			next++
		}
	}

	return &libraryFile{path: cfg.Library, lib: memory.NewWith(recs...)}, nil
}

// save writes the gateway contents back to the records file, preserving
// its format. The write goes through a temp file in the same directory.
func (f *libraryFile) save(ctx context.Context) error {
	recs, err := f.lib.List(ctx, gateway.Filter{})
	if err != nil {
		return err
	}

	var data []byte
	switch ext := strings.ToLower(filepath.Ext(f.path)); ext {
	case ".json":
		data, err = json.MarshalIndent(recs, "", "  ")
	default:
		data, err = yaml.Marshal(recs)
	}
	if err != nil {
		return err
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

// saveIfWritten persists the library only when a non-dry-run command
// actually wrote something.
func (f *libraryFile) saveIfWritten(ctx context.Context, dryRun bool) error {
	if dryRun {
		return nil
	}
	w := f.lib.Writes()
	if w.Updates == 0 && w.Creates == 0 && w.Deletes == 0 {
		return nil
	}
	return f.save(ctx)
}

// session bundles everything a subcommand needs to run an engine
// operation against the records file.
type session struct {
	cfg    *config.Config
	file   *libraryFile
	engine bibtidy.Engine
	dryRun bool
}

// newSession loads config, opens the records file, and builds the engine.
func newSession() (*session, error) {
	v := viper.GetViper()
	config.SetDefaults(v)

	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}

	dryRun := cfg.DryRun
	if v.GetBool("apply") {
		dryRun = false
	}

	file, err := openLibrary(cfg)
	if err != nil {
		return nil, err
	}

	opts := []bibtidy.Option{
		bibtidy.WithSimilarityThreshold(cfg.SimilarityThreshold),
		bibtidy.WithDateFormat(normalize.DateFormat(cfg.TargetDateFormat)),
		bibtidy.WithDryRun(dryRun),
		bibtidy.WithConcurrency(cfg.Concurrency),
		bibtidy.WithURLChecks(cfg.CheckURLs),
		bibtidy.WithDOIChecks(cfg.CheckDOIs),
		bibtidy.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
		bibtidy.WithMaxRetries(cfg.API.MaxRetries),
	}
	if cfg.ContactEmail != "" {
		opts = append(opts, bibtidy.WithContactEmail(cfg.ContactEmail))
	}
	if cfg.RequiredFields != nil {
		opts = append(opts, bibtidy.WithRequiredFields(cfg.RequiredFields))
	}

	engine, err := bibtidy.New(file.lib, opts...)
	if err != nil {
		return nil, err
	}

	return &session{cfg: cfg, file: file, engine: engine, dryRun: dryRun}, nil
}

// finish persists any writes and reminds the user when a dry run made
// no changes on disk.
func (s *session) finish(ctx context.Context) error {
	if err := s.file.saveIfWritten(ctx, s.dryRun); err != nil {
		return err
	}
	if s.dryRun {
		fmt.Fprintln(os.Stderr, "dry run: no changes written (pass --apply to persist)")
	}
	return nil
}
