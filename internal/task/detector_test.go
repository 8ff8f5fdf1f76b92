package task

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runger/cmdlearn/internal/logging"
	"github.com/runger/cmdlearn/internal/store"
)

func newTestDetector(t *testing.T, opts Options) *Detector {
	t.Helper()

	docs, err := store.Open(t.TempDir(), store.Options{Logger: logging.Discard()})
	require.NoError(t, err)
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	return New(docs, opts)
}

// writeFiles lays out a directory tree from relative paths.
func writeFiles(t *testing.T, dir string, paths ...string) {
	t.Helper()
	for _, p := range paths {
		full := filepath.Join(dir, filepath.FromSlash(p))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte("x"), 0o644))
	}
}

func TestDetectProjectType_Python(t *testing.T) {
	t.Parallel()

	d := newTestDetector(t, Options{})
	dir := t.TempDir()
	writeFiles(t, dir, "setup.py", "requirements.txt", "app.py", "lib/util.py")

	projectType, name, confidence := d.DetectProjectType(dir)
	assert.Equal(t, "python_project", projectType)
	assert.Equal(t, filepath.Base(dir), name)
	assert.InDelta(t, 0.8, confidence, 1e-9)
}

func TestDetectProjectType_KnownProfileShortCircuits(t *testing.T) {
	t.Parallel()

	d := newTestDetector(t, Options{})
	dir := t.TempDir()
	writeFiles(t, dir, "go.mod", "main.go")

	first, _, firstConf := d.DetectProjectType(dir)
	require.Equal(t, "go_project", first)
	require.Less(t, firstConf, 1.0)

	// Second sight returns the stored profile at full confidence even if
	// the tree changed.
	writeFiles(t, dir, "package.json")
	second, _, secondConf := d.DetectProjectType(dir)
	assert.Equal(t, "go_project", second)
	assert.Equal(t, 1.0, secondConf)
}

func TestDetectProjectType_ConfidenceCapped(t *testing.T) {
	t.Parallel()

	d := newTestDetector(t, Options{})
	dir := t.TempDir()
	var paths []string
	for i := 0; i < 10; i++ {
		paths = append(paths, filepath.Join("src", string(rune('a'+i))+".go"))
	}
	writeFiles(t, dir, paths...)

	_, _, confidence := d.DetectProjectType(dir)
	assert.Equal(t, 0.95, confidence)
}

func TestDetectProjectType_SkipsHiddenAndDependencyDirs(t *testing.T) {
	t.Parallel()

	d := newTestDetector(t, Options{})
	dir := t.TempDir()
	writeFiles(t, dir,
		"node_modules/react/index.js",
		".git/config",
		"venv/lib/site.py",
	)

	projectType, _, confidence := d.DetectProjectType(dir)
	assert.Empty(t, projectType)
	assert.Zero(t, confidence)
}

func TestDetectTaskFromCommands(t *testing.T) {
	t.Parallel()

	d := newTestDetector(t, Options{})

	task, confidence := d.DetectTaskFromCommands([]string{
		"git add -A", "git commit -m wip", "git push origin main",
	})
	assert.Equal(t, "git_commit", task)
	assert.Equal(t, 0.9, confidence)

	task, confidence = d.DetectTaskFromCommands([]string{"docker build -t app ."})
	assert.Equal(t, "docker", task)
	assert.InDelta(t, 0.25, confidence, 1e-9)

	task, confidence = d.DetectTaskFromCommands([]string{"cowsay moo"})
	assert.Empty(t, task)
	assert.Zero(t, confidence)

	task, confidence = d.DetectTaskFromCommands(nil)
	assert.Empty(t, task)
	assert.Zero(t, confidence)
}

func TestDetectTaskFromCommands_WholeWordPrefix(t *testing.T) {
	t.Parallel()

	d := newTestDetector(t, Options{})

	// "ip" must not match "ipython".
	task, _ := d.DetectTaskFromCommands([]string{"ipython notebook.py"})
	assert.NotEqual(t, "network_admin", task)
}

func TestDetectTaskFromFiles(t *testing.T) {
	t.Parallel()

	d := newTestDetector(t, Options{})
	dir := t.TempDir()
	writeFiles(t, dir, "Dockerfile", "docker-compose.yml")

	task, confidence := d.DetectTaskFromFiles(dir)
	assert.Equal(t, "docker", task)
	assert.Equal(t, 0.8, confidence)
}

func TestDetectTaskFromFiles_DepthLimited(t *testing.T) {
	t.Parallel()

	d := newTestDetector(t, Options{})
	dir := t.TempDir()
	writeFiles(t, dir, "a/b/c/Dockerfile")

	task, confidence := d.DetectTaskFromFiles(dir)
	assert.Empty(t, task)
	assert.Zero(t, confidence)
}

type recordingSink struct {
	tasks []string
}

func (r *recordingSink) SetCurrentTask(task string) error {
	r.tasks = append(r.tasks, task)
	return nil
}

func TestDetectCurrentTask_CommandSignalWins(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	d := newTestDetector(t, Options{Sink: sink})
	dir := t.TempDir()
	writeFiles(t, dir, "requirements.txt", "setup.py")

	task, confidence, _ := d.DetectCurrentTask(dir, []string{
		"git add .", "git commit -m fix", "git push",
	})
	assert.Equal(t, "git_commit", task)
	assert.Equal(t, 0.9, confidence)
	assert.Equal(t, []string{"git_commit"}, sink.tasks)
}

func TestDetectCurrentTask_HistoryOnChangeOnly(t *testing.T) {
	t.Parallel()

	d := newTestDetector(t, Options{})
	dir := t.TempDir()

	commands := []string{"git add .", "git commit -m fix", "git push"}
	d.DetectCurrentTask(dir, commands)
	d.DetectCurrentTask(dir, commands)

	history := d.History(10)
	require.Len(t, history, 1)
	assert.Equal(t, "git_commit", history[0].Task)
}

func TestLearnFromCommands_Idempotent(t *testing.T) {
	t.Parallel()

	d := newTestDetector(t, Options{})

	require.NoError(t, d.LearnFromCommands([]string{"terraform plan", "terraform apply"}, "infra"))
	require.NoError(t, d.LearnFromCommands([]string{"terraform plan"}, "infra"))

	pattern, ok := d.TaskData("infra")
	require.True(t, ok)
	assert.Equal(t, []string{"terraform"}, pattern.Commands)
	assert.Equal(t, "User-defined task: infra", pattern.Description)
}

func TestLearnFromCommands_PersistsAcrossReload(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	docs, err := store.Open(dir, store.Options{Logger: logging.Discard()})
	require.NoError(t, err)

	d := New(docs, Options{Logger: logging.Discard()})
	require.NoError(t, d.LearnFromCommands([]string{"cargo build"}, "rust_dev"))

	docs2, err := store.Open(dir, store.Options{Logger: logging.Discard()})
	require.NoError(t, err)
	reloaded := New(docs2, Options{Logger: logging.Discard()})

	pattern, ok := reloaded.TaskData("rust_dev")
	require.True(t, ok)
	assert.Equal(t, []string{"cargo"}, pattern.Commands)
}

func TestLearnFromFiles(t *testing.T) {
	t.Parallel()

	d := newTestDetector(t, Options{})
	dir := t.TempDir()
	writeFiles(t, dir, "Cargo.toml", "src/main.rs")

	require.NoError(t, d.LearnFromFiles(dir, "rust_dev"))

	pattern, ok := d.TaskData("rust_dev")
	require.True(t, ok)
	assert.Contains(t, pattern.Files, "Cargo.toml")
	assert.Contains(t, pattern.Files, "src/")

	// Learning the same directory again adds nothing.
	before := len(pattern.Files)
	require.NoError(t, d.LearnFromFiles(dir, "rust_dev"))
	pattern, _ = d.TaskData("rust_dev")
	assert.Len(t, pattern.Files, before)
}

func TestSuggestions_RecentHistory(t *testing.T) {
	t.Parallel()

	d := newTestDetector(t, Options{})
	dir := t.TempDir()

	d.DetectCurrentTask(dir, []string{"git add .", "git commit -m x", "git push"})

	suggestions := d.Suggestions(dir)
	require.NotEmpty(t, suggestions)
	found := false
	for _, s := range suggestions {
		if s.Task == "git_commit" {
			found = true
			assert.Equal(t, 0.5, s.Confidence)
			assert.Equal(t, "Recently performed task", s.Reason)
		}
	}
	assert.True(t, found)
}
