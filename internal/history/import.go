package history

import (
	"bufio"
	"os"
	"strconv"
	"strings"
	"time"
)

// MaxImportEntries caps how many entries a single import reads from a
// history file.
const MaxImportEntries = 25000

// ImportEntry is one parsed history line. Timestamp is zero when the file
// carries none.
type ImportEntry struct {
	Timestamp time.Time
	Command   string
}

// ImportBashHistory parses a bash history file: one command per line, with
// optional #<unix_ts> timestamp markers when HISTTIMEFORMAT is set. A
// missing file is not an error.
func ImportBashHistory(path string) ([]ImportEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	var entries []ImportEntry
	var pending time.Time

	scanner := newHistoryScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "#") && len(line) > 1 {
			if ts, err := strconv.ParseInt(line[1:], 10, 64); err == nil {
				pending = time.Unix(ts, 0)
				continue
			}
		}

		entries = append(entries, ImportEntry{Command: line, Timestamp: pending})
		pending = time.Time{}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return trimToLimit(entries), nil
}

// ImportZshHistory parses a zsh history file, including the extended
// format `: <timestamp>:<duration>;<command>` and backslash-continued
// multiline commands. A missing file is not an error.
func ImportZshHistory(path string) ([]ImportEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	var p zshParser
	scanner := newHistoryScanner(file)
	for scanner.Scan() {
		p.processLine(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	p.flush()

	return trimToLimit(p.entries), nil
}

func newHistoryScanner(file *os.File) *bufio.Scanner {
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return scanner
}

// zshParser accumulates zsh history entries across multiline commands.
type zshParser struct {
	multiline strings.Builder
	pending   time.Time
	entries   []ImportEntry
}

func (p *zshParser) processLine(line string) {
	if p.multiline.Len() > 0 {
		p.continueMultiline(line)
		return
	}

	// Extended format carries metadata up to the first semicolon.
	if strings.HasPrefix(line, ": ") {
		if idx := strings.Index(line, ";"); idx != -1 {
			meta := line[2:idx]
			if colon := strings.Index(meta, ":"); colon != -1 {
				if ts, err := strconv.ParseInt(meta[:colon], 10, 64); err == nil {
					p.pending = time.Unix(ts, 0)
				}
			}
			p.addCommand(line[idx+1:])
			return
		}
	}
	p.addCommand(line)
}

func (p *zshParser) continueMultiline(line string) {
	if hasTrailingBackslash(line) {
		p.multiline.WriteString(line[:len(line)-1])
		p.multiline.WriteString("\n")
		return
	}
	p.multiline.WriteString(line)
	p.entries = append(p.entries, ImportEntry{Command: p.multiline.String(), Timestamp: p.pending})
	p.multiline.Reset()
	p.pending = time.Time{}
}

func (p *zshParser) addCommand(cmd string) {
	if hasTrailingBackslash(cmd) {
		p.multiline.WriteString(cmd[:len(cmd)-1])
		p.multiline.WriteString("\n")
		return
	}
	if cmd != "" {
		p.entries = append(p.entries, ImportEntry{Command: cmd, Timestamp: p.pending})
		p.pending = time.Time{}
	}
}

// flush emits an unterminated multiline command at end of file.
func (p *zshParser) flush() {
	if p.multiline.Len() == 0 {
		return
	}
	p.entries = append(p.entries, ImportEntry{
		Command:   strings.TrimSuffix(p.multiline.String(), "\n"),
		Timestamp: p.pending,
	})
	p.multiline.Reset()
}

// hasTrailingBackslash reports whether a line ends with an unescaped
// backslash, continuing the command on the next line.
func hasTrailingBackslash(line string) bool {
	n := 0
	for i := len(line) - 1; i >= 0 && line[i] == '\\'; i-- {
		n++
	}
	return n%2 == 1
}

func trimToLimit(entries []ImportEntry) []ImportEntry {
	if len(entries) > MaxImportEntries {
		return entries[len(entries)-MaxImportEntries:]
	}
	return entries
}

// DefaultHistoryFile guesses the user's shell history file from SHELL,
// falling back to bash. The second return is true when the file uses zsh
// format.
func DefaultHistoryFile() (path string, zsh bool) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", false
	}
	shell := os.Getenv("SHELL")
	if strings.Contains(shell, "zsh") {
		return home + "/.zsh_history", true
	}
	return home + "/.bash_history", false
}
