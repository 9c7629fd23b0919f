package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Environment variables holding the global settings. fxv reads them as
// defaults and passes the resolved values to extensions.
const (
	EnvProfile    = "FXV_PROFILE"
	EnvTolerances = "FXV_TOLERANCES"
	EnvNow        = "FXV_NOW"
	EnvLogLevel   = "FXV_LOG_LEVEL"
)

// IsCommand reports whether name is a built-in subcommand.
func IsCommand(name string) bool {
	switch name {
	case "help", "flags", "commands":
		return true
	}
	for _, c := range Commands {
		if c.Name() == name {
			return true
		}
	}
	return false
}

// extensionEnv returns the environment of an extension: the current one plus
// the resolved global settings.
func extensionEnv() []string {
	env := os.Environ()
	env = append(env, EnvProfile+"="+setting(*profileName, EnvProfile, "default"))
	env = append(env, EnvTolerances+"="+setting(*tolerancesFile, EnvTolerances, ""))
	env = append(env, EnvNow+"="+setting(*nowFlag, EnvNow, ""))
	env = append(env, EnvLogLevel+"="+setting(*logLevel, EnvLogLevel, "warn"))
	return env
}

// RunExtension attempts to find and execute an external fxv-<subcommand> binary.
// It returns (true, exitCode) if an extension was found and executed,
// and (false, 0) if no extension was found.
func RunExtension(subcommand string, args []string) (bool, int) {
	if subcommand == "" || strings.ContainsAny(subcommand, `/\`) {
		return false, 0
	}
	name := "fxv-" + subcommand
	lp, err := exec.LookPath(name)
	if err != nil {
		return false, 0
	}

	cmd := exec.Command(lp, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = extensionEnv()

	if err := cmd.Run(); err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			return true, exitError.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "Error executing external command %q: %v\n", name, err)
		return true, 1
	}
	return true, 0
}
