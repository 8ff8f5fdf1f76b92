package task

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/runger/cmdlearn/internal/event"
	"github.com/runger/cmdlearn/internal/store"
)

// Document names under the data directory.
const (
	patternsDoc = "task_patterns.json"
	projectsDoc = "projects.json"
	historyDoc  = "task_history.json"
)

// maxTaskHistory caps the task change log.
const maxTaskHistory = 100

// walk tuning shared by the scanners.
var skipDirs = map[string]bool{"node_modules": true, "venv": true}

// HistoryEntry records one task change.
type HistoryEntry struct {
	Task       string  `json:"task"`
	Project    string  `json:"project,omitempty"`
	Confidence float64 `json:"confidence"`
	Timestamp  float64 `json:"timestamp"`
}

// historyDB is the persisted task change log.
type historyDB struct {
	History     []HistoryEntry `json:"history"`
	LastUpdated float64        `json:"last_updated"`
}

// Sink receives the detected task. The context store satisfies it.
type Sink interface {
	SetCurrentTask(task string) error
}

// Detector scores command and file signals against the pattern database.
type Detector struct {
	docs   *store.Store
	logger *slog.Logger
	sink   Sink

	mu       sync.Mutex
	db       patternDB
	projects projectDB
	history  historyDB

	currentTask       string
	currentConfidence float64
	currentProject    string
}

// Options configures a Detector.
type Options struct {
	Logger *slog.Logger

	// Sink, when set, is told the task after every detection that finds
	// one.
	Sink Sink
}

// New loads the pattern, project, and history documents and returns a
// Detector. A missing pattern document starts from the built-in defaults.
func New(docs *store.Store, opts Options) *Detector {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	d := &Detector{docs: docs, logger: logger, sink: opts.Sink}

	if !docs.Load(patternsDoc, &d.db) || len(d.db.CommandPatterns) == 0 {
		d.db = defaultPatternDB()
	}
	docs.Load(projectsDoc, &d.projects)
	docs.Load(historyDoc, &d.history)
	if d.projects.Projects == nil {
		d.projects.Projects = make(map[string]ProjectProfile)
	}

	return d
}

// DetectProjectType identifies the project at directory. A directory seen
// before returns its stored profile at confidence 1.0; otherwise the tree
// is scanned against the file rules and the best match is profiled for next
// time. Confidence for a fresh scan is min(matches/5, 0.95).
func (d *Detector) DetectProjectType(directory string) (projectType, name string, confidence float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.detectProjectLocked(directory)
}

func (d *Detector) detectProjectLocked(directory string) (string, string, float64) {
	key := hashPath(directory)

	if profile, ok := d.projects.Projects[key]; ok {
		profile.LastAccessed = event.Now()
		d.projects.Projects[key] = profile
		d.saveProjects()
		return profile.Type, profile.Name, 1.0
	}

	counts := d.scanProjectFiles(directory)
	name := filepath.Base(directory)
	if len(counts) == 0 {
		return "", name, 0.0
	}

	best, bestCount := "", 0
	for _, rule := range d.db.FilePatterns {
		if c := counts[rule.Name]; c > bestCount {
			best, bestCount = rule.Name, c
		}
	}

	confidence := float64(bestCount) / 5.0
	if confidence > 0.95 {
		confidence = 0.95
	}

	now := event.Now()
	d.projects.Projects[key] = ProjectProfile{
		Type:         best,
		Name:         name,
		Path:         directory,
		FirstSeen:    now,
		LastAccessed: now,
		FileMatches:  counts,
	}
	d.saveProjects()

	return best, name, confidence
}

// scanProjectFiles walks directory counting file-rule matches, skipping
// hidden and dependency directories.
func (d *Detector) scanProjectFiles(directory string) map[string]int {
	counts := make(map[string]int)

	filepath.WalkDir(directory, func(path string, entry fs.DirEntry, err error) error { //nolint:errcheck
		if err != nil {
			return fs.SkipDir
		}
		if entry.IsDir() {
			name := entry.Name()
			if path != directory && (name[0] == '.' || skipDirs[name]) {
				return fs.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(directory, path)
		if err != nil {
			return nil
		}
		for _, rule := range d.db.FilePatterns {
			for _, pattern := range rule.Files {
				if matchFilePattern(rel, pattern) {
					counts[rule.Name]++
					break
				}
			}
		}
		return nil
	})

	if len(counts) == 0 {
		return nil
	}
	return counts
}

// DetectTaskFromCommands scores each task pattern by the share of its
// commands observed in the recent command list. Confidence is capped at
// 0.9. No pattern hit means ("", 0).
func (d *Detector) DetectTaskFromCommands(commands []string) (string, float64) {
	if len(commands) == 0 {
		return "", 0.0
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	best, bestScore := "", 0.0
	for _, pattern := range d.db.CommandPatterns {
		if len(pattern.Commands) == 0 {
			continue
		}
		matches := 0
		for _, cmd := range commands {
			for _, pcmd := range pattern.Commands {
				if matchCommand(cmd, pcmd) {
					matches++
					break
				}
			}
		}
		if matches == 0 {
			continue
		}
		score := float64(matches) / float64(len(pattern.Commands))
		if score > bestScore {
			best, bestScore = pattern.Name, score
		}
	}

	if best == "" {
		return "", 0.0
	}
	if bestScore > 0.9 {
		bestScore = 0.9
	}
	return best, bestScore
}

// DetectTaskFromFiles scores task patterns against the files near the top
// of directory (depth at most 2). File signals are weaker than live command
// signals, so confidence is scaled by 0.8 and capped at 0.8.
func (d *Detector) DetectTaskFromFiles(directory string) (string, float64) {
	files := listShallowFiles(directory, 2)
	if len(files) == 0 {
		return "", 0.0
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	best, bestScore := "", 0.0
	for _, pattern := range d.db.CommandPatterns {
		if len(pattern.Files) == 0 {
			continue
		}
		matches := 0
		for _, file := range files {
			for _, fp := range pattern.Files {
				if matchFilePattern(file, fp) {
					matches++
					break
				}
			}
		}
		if matches == 0 {
			continue
		}
		score := float64(matches) / float64(len(files))
		if score > bestScore {
			best, bestScore = pattern.Name, score
		}
	}

	if best == "" {
		return "", 0.0
	}
	confidence := bestScore * 0.8
	if confidence > 0.8 {
		confidence = 0.8
	}
	return best, confidence
}

// listShallowFiles collects relative file paths under directory down to
// maxDepth, skipping hidden files and dependency directories.
func listShallowFiles(directory string, maxDepth int) []string {
	var files []string

	filepath.WalkDir(directory, func(path string, entry fs.DirEntry, err error) error { //nolint:errcheck
		if err != nil {
			return fs.SkipDir
		}
		rel, relErr := filepath.Rel(directory, path)
		if relErr != nil {
			return nil
		}
		if entry.IsDir() {
			name := entry.Name()
			if path != directory && (name[0] == '.' || skipDirs[name]) {
				return fs.SkipDir
			}
			if rel != "." && pathDepth(rel) >= maxDepth {
				return fs.SkipDir
			}
			return nil
		}
		if entry.Name()[0] == '.' {
			return nil
		}
		files = append(files, rel)
		return nil
	})

	return files
}

// pathDepth counts how many directory levels down a relative path sits.
func pathDepth(rel string) int {
	if rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}

// DetectCurrentTask combines project, command, and file signals. Command
// confidence above 0.7 wins outright; otherwise file confidence above 0.6;
// otherwise the numerically larger of the two. A task change is appended to
// the bounded history log and pushed to the sink.
func (d *Detector) DetectCurrentTask(directory string, commands []string) (task string, confidence float64, project string) {
	_, projectName, projectConfidence := d.DetectProjectType(directory)
	if projectConfidence > 0.5 {
		project = projectName
	}

	commandTask, commandConfidence := d.DetectTaskFromCommands(commands)
	fileTask, fileConfidence := d.DetectTaskFromFiles(directory)

	switch {
	case commandConfidence > 0.7:
		task, confidence = commandTask, commandConfidence
	case fileConfidence > 0.6:
		task, confidence = fileTask, fileConfidence
	case commandConfidence >= fileConfidence:
		task, confidence = commandTask, commandConfidence
	default:
		task, confidence = fileTask, fileConfidence
	}

	d.mu.Lock()
	changed := task != "" && task != d.currentTask
	d.currentTask = task
	d.currentConfidence = confidence
	d.currentProject = project

	if changed {
		d.history.History = append(d.history.History, HistoryEntry{
			Task:       task,
			Project:    project,
			Confidence: confidence,
			Timestamp:  event.Now(),
		})
		if len(d.history.History) > maxTaskHistory {
			d.history.History = d.history.History[len(d.history.History)-maxTaskHistory:]
		}
		d.history.LastUpdated = event.Now()
		if err := d.docs.Save(historyDoc, &d.history); err != nil {
			d.logger.Warn("persist task history failed", "error", err)
		}
	}
	d.mu.Unlock()

	if changed && d.sink != nil {
		if err := d.sink.SetCurrentTask(task); err != nil {
			d.logger.Warn("update task profile failed", "error", err)
		}
	}

	return task, confidence, project
}

// CurrentTask returns the last detected task with its confidence.
func (d *Detector) CurrentTask() (string, float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.currentTask, d.currentConfidence
}

// History returns the most recent task changes, oldest first.
func (d *Detector) History(limit int) []HistoryEntry {
	d.mu.Lock()
	defer d.mu.Unlock()

	history := d.history.History
	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}
	out := make([]HistoryEntry, len(history))
	copy(out, history)
	return out
}

// TaskData returns the pattern for a task name, when known.
func (d *Detector) TaskData(name string) (Pattern, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, p := range d.db.CommandPatterns {
		if p.Name == name {
			return p, true
		}
	}
	return Pattern{}, false
}

func (d *Detector) saveProjects() {
	d.projects.LastUpdated = event.Now()
	if err := d.docs.Save(projectsDoc, &d.projects); err != nil {
		d.logger.Warn("persist project profiles failed", "error", err)
	}
}

func (d *Detector) savePatterns() error {
	d.db.LastUpdated = event.Now()
	if err := d.docs.Save(patternsDoc, &d.db); err != nil {
		return fmt.Errorf("persist task patterns: %w", err)
	}
	return nil
}

// sortSuggestions orders task suggestions by confidence descending,
// keeping insertion order for ties.
func sortSuggestions(s []Suggestion) {
	sort.SliceStable(s, func(i, j int) bool {
		return s[i].Confidence > s[j].Confidence
	})
}
