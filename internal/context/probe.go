package context

import (
	"os"
	"os/exec"
	"strings"
)

// Prober collects shell and environment facts. Tests substitute a fixed
// implementation so no probes hit the real system.
type Prober interface {
	ShellInfo() ShellInfo
	EnvironmentInfo() EnvironmentInfo
}

// systemProber reads the real environment.
type systemProber struct{}

func (systemProber) ShellInfo() ShellInfo {
	info := ShellInfo{
		Shell:    envOr("SHELL", "unknown"),
		Terminal: envOr("TERM", "unknown"),
		User:     envOr("USER", "unknown"),
	}
	if host, err := os.Hostname(); err == nil {
		info.Hostname = host
	} else {
		info.Hostname = "unknown"
	}
	return info
}

func (systemProber) EnvironmentInfo() EnvironmentInfo {
	env := EnvironmentInfo{}
	if cwd, err := os.Getwd(); err == nil {
		env.CWD = cwd
	}
	if home, err := os.UserHomeDir(); err == nil {
		env.Home = home
	}
	env.Git = gitInfo(env.CWD)
	return env
}

// gitInfo probes the repository at dir. Every subcommand is guarded on its
// own so a broken git setup only blanks the affected field.
func gitInfo(dir string) GitInfo {
	var info GitInfo

	if _, err := gitOutput(dir, "rev-parse", "--is-inside-work-tree"); err != nil {
		return info
	}
	info.IsRepo = true

	if out, err := gitOutput(dir, "branch", "--show-current"); err == nil {
		info.Branch = out
	}
	if out, err := gitOutput(dir, "status", "--porcelain"); err == nil {
		info.Status = out
	}
	if out, err := gitOutput(dir, "remote", "-v"); err == nil {
		info.Remote = out
	}
	return info
}

func gitOutput(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	if dir != "" {
		cmd.Dir = dir
	}
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
