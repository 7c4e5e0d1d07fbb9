package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Draaaaaaven/ecad/pkg/archive"
	"github.com/Draaaaaaven/ecad/pkg/config"
	"github.com/Draaaaaaven/ecad/pkg/errors"
)

// autosaveCommand manages the archives written by "serve --autosave".
func (c *CLI) autosaveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "autosave",
		Short: "Manage databases saved on server shutdown",
	}

	cmd.AddCommand(c.autosaveListCommand())
	cmd.AddCommand(c.autosaveClearCommand())
	cmd.AddCommand(c.autosavePathCommand())

	return cmd
}

func (c *CLI) autosaveListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List autosaved databases",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.resolveAutosaveDir()
			if err != nil {
				return err
			}
			files, err := autosaveFiles(dir)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				c.printInfo("No autosaved databases")
				return nil
			}
			rows := make([][]string, 0, len(files))
			for _, f := range files {
				rows = append(rows, []string{
					databaseName(f.Name()),
					string(archive.FormatFromPath(f.Name())),
					strconv.FormatInt(f.size, 10),
					f.modified,
				})
			}
			c.printTable([]string{"Database", "Format", "Bytes", "Saved"}, rows)
			return nil
		},
	}
}

func (c *CLI) autosaveClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all autosaved databases",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.resolveAutosaveDir()
			if err != nil {
				return err
			}
			files, err := autosaveFiles(dir)
			if err != nil {
				return err
			}
			count := 0
			for _, f := range files {
				if err := os.Remove(filepath.Join(dir, f.Name())); err == nil {
					count++
				}
			}
			c.printSuccess("Cleared %d autosaved databases", count)
			c.printDetail("Directory: %s", dir)
			return nil
		},
	}
}

func (c *CLI) autosavePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the autosave directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.resolveAutosaveDir()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(c.out, dir)
			return err
		},
	}
}

func (c *CLI) resolveAutosaveDir() (string, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return "", err
	}
	return autosaveDir(cfg)
}

// autosaveDir returns cfg.AutosaveDir, or <config dir>/autosave when unset.
func autosaveDir(cfg config.Config) (string, error) {
	if cfg.AutosaveDir != "" {
		return cfg.AutosaveDir, nil
	}
	dir, err := configDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeIO, err, "resolve autosave dir")
	}
	return filepath.Join(dir, "autosave"), nil
}

type autosaveFile struct {
	os.DirEntry
	size     int64
	modified string
}

// autosaveFiles lists the regular files in dir. A missing dir has none.
func autosaveFiles(dir string) ([]autosaveFile, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read %s", dir)
	}
	var files []autosaveFile
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, autosaveFile{
			DirEntry: e,
			size:     info.Size(),
			modified: info.ModTime().Format("2006-01-02 15:04"),
		})
	}
	return files, nil
}
