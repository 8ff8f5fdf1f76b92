// Package task detects what the user is working on from command and file
// signals, tracks project profiles per directory, and learns new patterns
// from user feedback.
package task

import (
	"path/filepath"
	"strings"
)

// Pattern describes one task: the commands and files that signal it.
type Pattern struct {
	Name        string   `json:"name"`
	Commands    []string `json:"commands"`
	Files       []string `json:"files"`
	Description string   `json:"description"`
}

// ProjectRule describes one project type by its characteristic files.
type ProjectRule struct {
	Name        string   `json:"name"`
	Files       []string `json:"files"`
	Description string   `json:"description"`
}

// patternDB is the persisted rule set. Both tables are ordered slices so
// that tie-breaks during scoring are deterministic.
type patternDB struct {
	CommandPatterns []Pattern     `json:"command_patterns"`
	FilePatterns    []ProjectRule `json:"file_patterns"`
	LastUpdated     float64       `json:"last_updated"`
}

// defaultPatternDB seeds the rule set with common development tasks.
func defaultPatternDB() patternDB {
	return patternDB{
		CommandPatterns: []Pattern{
			{Name: "git_commit", Commands: []string{"git add", "git commit", "git push"}, Files: []string{".git/"}, Description: "Git commit workflow"},
			{Name: "git_merge", Commands: []string{"git merge", "git pull", "git checkout"}, Files: []string{".git/"}, Description: "Git branch merging"},
			{Name: "web_dev", Commands: []string{"npm", "yarn", "webpack", "gulp", "grunt"}, Files: []string{"package.json", "webpack.config.js", "node_modules/"}, Description: "Web development"},
			{Name: "react_dev", Commands: []string{"npm start", "npm run build", "npm test"}, Files: []string{"react", "jsx", "tsx", "node_modules/", "package.json"}, Description: "React development"},
			{Name: "python_dev", Commands: []string{"python", "pip", "pytest", "flask", "django"}, Files: []string{"requirements.txt", "setup.py", "pyproject.toml", ".py"}, Description: "Python development"},
			{Name: "data_science", Commands: []string{"jupyter", "pandas", "numpy", "sklearn", "matplotlib"}, Files: []string{".ipynb", "csv", "numpy", "pandas"}, Description: "Data science work"},
			{Name: "docker", Commands: []string{"docker", "docker-compose", "container", "image"}, Files: []string{"Dockerfile", "docker-compose.yml"}, Description: "Docker container work"},
			{Name: "kubernetes", Commands: []string{"kubectl", "k8s", "helm", "minikube"}, Files: []string{".yaml", "kubeconfig", "deployment.yaml"}, Description: "Kubernetes management"},
			{Name: "sysadmin", Commands: []string{"systemctl", "service", "apt", "yum", "dnf", "pacman"}, Files: []string{"/etc/", "/var/log/", "syslog"}, Description: "System administration"},
			{Name: "network_admin", Commands: []string{"ip", "ifconfig", "ssh", "nmap", "ping", "traceroute"}, Files: []string{"/etc/network/", "hosts", "resolv.conf"}, Description: "Network administration"},
			{Name: "security", Commands: []string{"ssh-keygen", "gpg", "openssl", "crypt", "hash"}, Files: []string{".key", ".pem", "cert", "ssl"}, Description: "Security operations"},
			{Name: "database", Commands: []string{"mysql", "psql", "sqlite", "mongo", "redis"}, Files: []string{".sql", ".db", "database", "schema"}, Description: "Database management"},
		},
		FilePatterns: []ProjectRule{
			{Name: "python_project", Files: []string{"setup.py", "requirements.txt", "pyproject.toml", ".py"}, Description: "Python project"},
			{Name: "node_project", Files: []string{"package.json", "node_modules/", ".js", ".ts"}, Description: "Node.js project"},
			{Name: "go_project", Files: []string{"go.mod", "go.sum", ".go"}, Description: "Go project"},
			{Name: "c_cpp_project", Files: []string{"Makefile", "CMakeLists.txt", ".c", ".cpp", ".h", ".hpp"}, Description: "C/C++ project"},
			{Name: "java_project", Files: []string{"pom.xml", "build.gradle", ".java", "mvnw"}, Description: "Java project"},
			{Name: "docker_project", Files: []string{"Dockerfile", "docker-compose.yml"}, Description: "Docker project"},
		},
	}
}

// matchFilePattern reports whether a relative file path matches a pattern.
// A "."-prefixed pattern is an extension suffix, a "/"-suffixed pattern is a
// path segment, anything else is a substring.
func matchFilePattern(path, pattern string) bool {
	switch {
	case strings.HasPrefix(pattern, "."):
		return strings.HasSuffix(path, pattern)
	case strings.HasSuffix(pattern, "/"):
		segment := strings.TrimSuffix(pattern, "/")
		for _, part := range strings.Split(path, string(filepath.Separator)) {
			if part == segment {
				return true
			}
		}
		return false
	default:
		return strings.Contains(path, pattern)
	}
}

// matchCommand reports whether a recorded command matches a pattern command.
// The pattern must be a whole-word prefix, so "git add" matches
// "git add -A" but "ip" does not match "ipython".
func matchCommand(cmd, pattern string) bool {
	if cmd == pattern {
		return true
	}
	return strings.HasPrefix(cmd, pattern+" ")
}
