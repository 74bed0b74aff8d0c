package deploy

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
)

// Installer resolves manifest requirements into a target directory by
// invoking an external installer command once per requirement, in manifest
// order. The command is run as
//
//	<command...> --target <dir> <name>==<version>
//
// which matches the pip calling convention without depending on pip.
type Installer struct {
	Command []string
	Logger  *slog.Logger
}

// NewInstaller creates an Installer around the given command. A nil logger
// falls back to the default.
func NewInstaller(command []string, logger *slog.Logger) *Installer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Installer{Command: command, Logger: logger}
}

// Install installs every requirement into targetDir. The first failure
// aborts; the caller discards the target directory so a partial install is
// never used.
func (installer *Installer) Install(ctx context.Context, requirements []Requirement, targetDir string) error {
	if len(installer.Command) == 0 {
		return fmt.Errorf("installer command is empty")
	}

	for _, requirement := range requirements {
		installer.Logger.Info("installing requirement", "name", requirement.Name, "version", requirement.Version)

		args := append([]string{}, installer.Command[1:]...)
		args = append(args, "--target", targetDir, requirement.String())

		cmd := exec.CommandContext(ctx, installer.Command[0], args...)
		output, err := cmd.CombinedOutput()
		if err != nil {
			return fmt.Errorf("installing %s : %w : %s", requirement, err, output)
		}
	}

	return nil
}
