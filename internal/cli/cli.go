// Package cli implements the ecad command-line interface.
//
// Every command works on database archives on disk. The archive format is
// taken from the file extension (.xml is XML, anything else BIN) unless
// --format overrides it.
//
// # Commands
//
//   - info: summarize a database
//   - convert: rewrite an archive in another format
//   - flatten: flatten a cell hierarchy
//   - hierarchy: export the cell hierarchy as DOT or SVG
//   - metal-fraction: map conductor density over a grid
//   - merge-polygons: union the shapes of each layer and net
//   - connectivity: report islands, shorts and floating conductors
//   - browse: walk the cell hierarchy interactively
//   - serve: expose databases over HTTP
//   - autosave: list or clear databases saved by serve --autosave
//
// All commands accept --verbose (-v) for debug logging and --config to
// select the TOML configuration file.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Draaaaaaven/ecad/pkg/archive"
	"github.com/Draaaaaaven/ecad/pkg/buildinfo"
	"github.com/Draaaaaaven/ecad/pkg/config"
	"github.com/Draaaaaaven/ecad/pkg/ecad"
	"github.com/Draaaaaaven/ecad/pkg/errors"
	"github.com/Draaaaaaven/ecad/pkg/manager"
	"github.com/Draaaaaaven/ecad/pkg/store"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	out        io.Writer
	status     io.Writer
	configPath string
	format     string
}

// New creates a CLI that logs to w at the given level and prints results to
// stdout.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), out: os.Stdout, status: os.Stderr}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// SetOutput redirects command results and progress animations.
func (c *CLI) SetOutput(out, status io.Writer) {
	c.out, c.status = out, status
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "ecad",
		Short:        "ecad inspects and transforms hierarchical layout databases",
		Long:         `ecad reads IC and PCB layout databases (cells, stackups, nets, padstacks and shapes), flattens cell hierarchies, extracts connectivity and maps metal density.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "configuration file (default: search XDG config paths)")
	root.PersistentFlags().StringVar(&c.format, "format", "", "archive format of input files: bin or xml (default: from extension)")

	root.AddCommand(c.infoCommand())
	root.AddCommand(c.convertCommand())
	root.AddCommand(c.flattenCommand())
	root.AddCommand(c.hierarchyCommand())
	root.AddCommand(c.metalFractionCommand())
	root.AddCommand(c.mergePolygonsCommand())
	root.AddCommand(c.connectivityCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.autosaveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration and databases
// =============================================================================

func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return cfg, err
	}
	if lvl, err := log.ParseLevel(cfg.Log.Level); err == nil && c.Logger.GetLevel() > lvl {
		c.Logger.SetLevel(lvl)
	}
	return cfg, nil
}

// newManager builds a manager over a root-less file store, so archive keys
// are plain paths.
func (c *CLI) newManager() (*manager.Manager, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	st, err := store.NewFileStore("")
	if err != nil {
		return nil, err
	}
	return manager.New(cfg, st, c.Logger), nil
}

// inputFormat resolves the format of path from --format or its extension.
func (c *CLI) inputFormat(path string) (archive.Format, error) {
	if c.format != "" {
		return archive.ParseFormat(c.format)
	}
	return archive.FormatFromPath(path), nil
}

// openDatabase registers a database named after path's base name and loads
// the archive into it.
func (c *CLI) openDatabase(ctx context.Context, mgr *manager.Manager, path string) (*ecad.Database, error) {
	f, err := c.inputFormat(path)
	if err != nil {
		return nil, err
	}
	db, err := mgr.CreateDatabase(databaseName(path))
	if err != nil {
		return nil, err
	}
	prog := newProgress(c.Logger)
	if err := mgr.LoadDatabase(ctx, db, path, f); err != nil {
		mgr.RemoveDatabase(db.Name())
		return nil, err
	}
	prog.done("Loaded " + path)
	return db, nil
}

// loadOne is the common prologue of single-file commands.
func (c *CLI) loadOne(ctx context.Context, path string) (*manager.Manager, *ecad.Database, error) {
	mgr, err := c.newManager()
	if err != nil {
		return nil, nil, err
	}
	db, err := c.openDatabase(ctx, mgr, path)
	if err != nil {
		return nil, nil, err
	}
	return mgr, db, nil
}

// pickCell returns the named cell, or the only top cell when name is empty.
func pickCell(db *ecad.Database, name string) (*ecad.Cell, error) {
	if name != "" {
		if cell := db.FindCellByName(name); cell != nil {
			return cell, nil
		}
		return nil, errors.New(errors.ErrCodeNotFound, "cell %q not found in %s", name, db.Name())
	}
	tops := db.TopCells()
	switch len(tops) {
	case 0:
		return nil, errors.New(errors.ErrCodeNotFound, "%s has no cells", db.Name())
	case 1:
		return tops[0], nil
	}
	names := make([]string, len(tops))
	for i, t := range tops {
		names[i] = t.Name()
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "%s has several top cells (%s); choose one with --cell", db.Name(), strings.Join(names, ", "))
}

// databaseName derives a valid database name from a file path.
func databaseName(path string) string {
	base := filepath.Base(path)
	if name := strings.TrimSuffix(base, filepath.Ext(base)); name != "" && name != "." {
		return name
	}
	return "db"
}

// =============================================================================
// Paths
// =============================================================================

// configDir returns the configuration directory using the XDG standard
// (~/.config/ecad/).
func configDir() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, config.AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", config.AppName), nil
}
