package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/julianstephens/concise/internal/config"
	"github.com/julianstephens/concise/internal/database"
	apperrors "github.com/julianstephens/concise/internal/errors"
	"github.com/julianstephens/concise/internal/goals"
)

type Context struct {
	ConfigPath string
	Config     config.Config
	DB         *database.Manager
	Goals      *goals.Registry
	Out        io.Writer
}

// NewContext returns a context for the config file at configPath
func NewContext(configPath string) *Context {
	db := database.NewManager()
	return &Context{
		ConfigPath: configPath,
		Config:     config.Default(),
		DB:         db,
		Goals:      goals.New(db),
		Out:        os.Stdout,
	}
}

// LoadConfig reads the config file into ctx.Config
func (c *Context) LoadConfig() error {
	cfg, err := config.Load(c.ConfigPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	return nil
}

// SaveConfig writes ctx.Config back to the config file
func (c *Context) SaveConfig() error {
	return config.Save(c.Config, c.ConfigPath)
}

// Connect loads the config and opens the configured database
func (c *Context) Connect(ctx context.Context) error {
	if err := c.LoadConfig(); err != nil {
		return err
	}
	if _, err := c.DB.ApplyConfig(ctx, c.Config); err != nil {
		return err
	}
	if c.DB.Current() == nil {
		return fmt.Errorf("%w (set one with 'concise config set --url <url>')", apperrors.ErrStoreUnavailable)
	}
	return nil
}

// ConfigDir is the directory holding the config file
func (c *Context) ConfigDir() string {
	dir, err := filepath.Abs(filepath.Dir(c.ConfigPath))
	if err != nil {
		return filepath.Dir(c.ConfigPath)
	}
	return dir
}

// Close releases the database connection
func (c *Context) Close() error {
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}

func (c *Context) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.Out, format, args...)
}

func (c *Context) Println(args ...interface{}) {
	fmt.Fprintln(c.Out, args...)
}

// IsConfigMissing reports whether err means the config file does not exist yet
func IsConfigMissing(err error) bool {
	return errors.Is(err, apperrors.ErrConfigRead) && errors.Is(err, os.ErrNotExist)
}
