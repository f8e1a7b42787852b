package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/concise/internal/cli"
	"github.com/julianstephens/concise/internal/cli/system"
	"github.com/julianstephens/concise/internal/constants"
	apperrors "github.com/julianstephens/concise/internal/errors"
	"github.com/julianstephens/concise/internal/logger"
)

// chdirToExecutable makes config.toml resolve next to the binary
func chdirToExecutable() error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return os.Chdir(filepath.Dir(exe))
}

func main() {
	if err := chdirToExecutable(); err != nil {
		apperrors.Fatal(fmt.Errorf("failed to change to executable directory: %w", err))
	}

	if err := logger.Init(logger.Config{Dir: "."}); err != nil {
		fmt.Fprintf(os.Stderr, "warning: logging disabled: %v\n", err)
	}

	ctx := cli.NewContext(constants.DefaultConfigPath)
	err := (&system.DailyCmd{}).Run(ctx)
	ctx.Close()
	if err != nil {
		apperrors.Fatal(err)
	}
}
