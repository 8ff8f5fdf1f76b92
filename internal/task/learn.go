package task

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/runger/cmdlearn/internal/normalize"
)

// keyProjectFiles are the marker files LearnFromFiles looks for at the top
// of a directory.
var keyProjectFiles = []string{
	"package.json", "requirements.txt", "setup.py", "Makefile",
	"CMakeLists.txt", "pom.xml", "build.gradle", "Dockerfile",
	"docker-compose.yml", "pyproject.toml", "Cargo.toml", "go.mod",
}

// LearnFromCommands adds the base tokens of commands to the named task
// pattern, creating the pattern if needed. Already-known commands are
// skipped, so repeated learning is a no-op.
func (d *Detector) LearnFromCommands(commands []string, taskName string) error {
	if len(commands) == 0 || taskName == "" {
		return fmt.Errorf("learn commands: need commands and a task name")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	pattern := d.ensurePatternLocked(taskName)

	changed := false
	for _, cmd := range commands {
		base := normalize.BaseToken(cmd)
		if base == "" || contains(pattern.Commands, base) {
			continue
		}
		pattern.Commands = append(pattern.Commands, base)
		changed = true
	}

	if !changed {
		return nil
	}
	return d.savePatterns()
}

// LearnFromFiles inspects directory for marker files, top-level
// subdirectories, and common extensions, and adds them to the named task
// pattern. Idempotent like LearnFromCommands.
func (d *Detector) LearnFromFiles(directory, taskName string) error {
	if directory == "" || taskName == "" {
		return fmt.Errorf("learn files: need a directory and a task name")
	}

	keyFiles := collectKeyFiles(directory)

	d.mu.Lock()
	defer d.mu.Unlock()

	pattern := d.ensurePatternLocked(taskName)

	changed := false
	for _, file := range keyFiles {
		if file == "" || contains(pattern.Files, file) {
			continue
		}
		pattern.Files = append(pattern.Files, file)
		changed = true
	}

	if !changed {
		return nil
	}
	return d.savePatterns()
}

// ensurePatternLocked finds or creates the command pattern for taskName and
// returns a pointer into the table. The caller holds d.mu.
func (d *Detector) ensurePatternLocked(taskName string) *Pattern {
	for i := range d.db.CommandPatterns {
		if d.db.CommandPatterns[i].Name == taskName {
			return &d.db.CommandPatterns[i]
		}
	}
	d.db.CommandPatterns = append(d.db.CommandPatterns, Pattern{
		Name:        taskName,
		Description: fmt.Sprintf("User-defined task: %s", taskName),
	})
	return &d.db.CommandPatterns[len(d.db.CommandPatterns)-1]
}

// collectKeyFiles gathers the signals worth learning from a directory:
// known marker files, visible top-level subdirectories (as "name/"
// patterns), and up to three of the shortest file extensions near the top.
func collectKeyFiles(directory string) []string {
	var keyFiles []string

	for _, file := range keyProjectFiles {
		if _, err := os.Stat(filepath.Join(directory, file)); err == nil {
			keyFiles = append(keyFiles, file)
		}
	}

	entries, err := os.ReadDir(directory)
	if err != nil {
		return keyFiles
	}

	extensions := make(map[string]bool)
	for _, entry := range entries {
		name := entry.Name()
		if name[0] == '.' {
			continue
		}
		if entry.IsDir() {
			keyFiles = append(keyFiles, name+"/")
			continue
		}
		if ext := filepath.Ext(name); ext != "" {
			extensions[ext] = true
		}
	}

	exts := make([]string, 0, len(extensions))
	for ext := range extensions {
		exts = append(exts, ext)
	}
	sort.Slice(exts, func(i, j int) bool {
		if len(exts[i]) != len(exts[j]) {
			return len(exts[i]) < len(exts[j])
		}
		return exts[i] < exts[j]
	})
	if len(exts) > 3 {
		exts = exts[:3]
	}
	return append(keyFiles, exts...)
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
