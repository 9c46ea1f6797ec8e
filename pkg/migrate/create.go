package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const versionLayout = "20060102150405"

var nameSanitizeRe = regexp.MustCompile(`[^a-z0-9_]+`)

// CreateSQLMigration writes an empty goose migration into dir and returns its
// path. The version is the current UTC time, bumped past the newest existing
// migration so files authored on a skewed clock still sort last.
func CreateSQLMigration(dir, name string, now time.Time) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("dir is required")
	}
	safe := sanitizeName(name)
	if safe == "" {
		return "", fmt.Errorf("name %q results in empty sanitized filename", name)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}

	version, err := nextVersion(dir, now.UTC())
	if err != nil {
		return "", err
	}
	fullpath := filepath.Join(dir, fmt.Sprintf("%s_%s.sql", version, safe))
	if _, err := os.Stat(fullpath); err == nil {
		return "", fmt.Errorf("migration already exists: %s", fullpath)
	}

	body := strings.Join([]string{
		upMarker,
		stmtBeginMarker,
		"-- " + safe,
		stmtEndMarker,
		"",
		downMarker,
		stmtBeginMarker,
		"-- rollback " + safe,
		stmtEndMarker,
		"",
	}, "\n")
	if err := os.WriteFile(fullpath, []byte(body), 0o644); err != nil {
		return "", fmt.Errorf("write migration %q: %w", fullpath, err)
	}
	return fullpath, nil
}

func sanitizeName(name string) string {
	safe := strings.ToLower(strings.TrimSpace(name))
	safe = nameSanitizeRe.ReplaceAllString(safe, "_")
	return strings.Trim(safe, "_")
}

func nextVersion(dir string, now time.Time) (string, error) {
	names, err := migrationFiles(os.DirFS(dir))
	if err != nil {
		return "", err
	}
	candidate := now
	for i := len(names) - 1; i >= 0; i-- {
		m := sqlFileRe.FindStringSubmatch(names[i])
		if m == nil {
			continue
		}
		latest, err := time.Parse(versionLayout, m[1])
		if err != nil {
			return "", fmt.Errorf("parse version of %q: %w", names[i], err)
		}
		if !candidate.After(latest) {
			candidate = latest.Add(time.Second)
		}
		break
	}
	return candidate.Format(versionLayout), nil
}

// LatestVersion reports the newest embedded migration version.
func LatestVersion() (int64, error) {
	names, err := migrationFiles(embeddedMigrations())
	if err != nil {
		return 0, err
	}
	if len(names) == 0 {
		return 0, fmt.Errorf("no embedded migrations")
	}
	m := sqlFileRe.FindStringSubmatch(names[len(names)-1])
	if m == nil {
		return 0, fmt.Errorf("invalid migration filename %q", names[len(names)-1])
	}
	return strconv.ParseInt(m[1], 10, 64)
}
