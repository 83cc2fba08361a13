// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package version resolves output version numbers for project directories.
// Versions follow the {project_name}_v{N} naming convention and are
// discovered by scanning sibling directories, not kept in an index.
package version

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Auto requests the next free version number.
const Auto = "auto"

// Lister enumerates existing version numbers for a project. Isolating the
// directory scan behind an interface keeps Resolve testable against a
// synthetic listing.
type Lister interface {
	// ListVersions returns the version numbers of existing
	// {name}_v{N} directories, sorted ascending.
	ListVersions(name string) ([]int, error)
}

// DirLister lists versions by scanning a parent directory.
type DirLister struct {
	// Root is the directory holding the version directories.
	Root string
}

// versionSuffix matches the _v{N} tail of a version directory name.
var versionSuffix = regexp.MustCompile(`^_v(\d+)$`)

// ListVersions scans Root for directories named {name}_v{N} and returns
// the sorted version numbers. A missing Root yields an empty list.
func (l DirLister) ListVersions(name string) ([]int, error) {
	entries, err := os.ReadDir(l.Root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", l.Root, err)
	}

	var versions []int
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		rest, ok := strings.CutPrefix(e.Name(), name)
		if !ok {
			continue
		}
		m := versionSuffix.FindStringSubmatch(rest)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 {
			continue
		}
		versions = append(versions, n)
	}
	sort.Ints(versions)
	return versions, nil
}

// leadingInt matches an explicit version token: an integer with an
// optional "v" prefix, ignoring anything after the digits.
var leadingInt = regexp.MustCompile(`^v?(\d+)`)

// Resolve computes the version number for a project. spec is either Auto
// or an explicit token ("3", "v2"). Auto returns max(existing)+1, or 1
// with no existing versions. An explicit token is returned verbatim even
// when it leaves a gap or collides with an existing directory; a
// collision is reported through warning, not as an error. An unparseable
// token falls back to Auto with a warning.
//
// Resolve's only side effect is the directory listing; for a fixed
// listing it is deterministic.
func Resolve(lister Lister, name, spec string) (n int, warning string, err error) {
	existing, err := lister.ListVersions(name)
	if err != nil {
		return 0, "", err
	}

	next := 1
	if len(existing) > 0 {
		next = existing[len(existing)-1] + 1
	}

	spec = strings.TrimSpace(spec)
	if spec == "" || spec == Auto {
		return next, "", nil
	}

	m := leadingInt.FindStringSubmatch(spec)
	if m == nil {
		return next, fmt.Sprintf("version spec %q is not a number, using auto (v%d)", spec, next), nil
	}

	explicit, err := strconv.Atoi(m[1])
	if err != nil || explicit < 1 {
		return next, fmt.Sprintf("version spec %q is not a positive integer, using auto (v%d)", spec, next), nil
	}

	for _, v := range existing {
		if v == explicit {
			return explicit, fmt.Sprintf("version %d already exists as %s", explicit, DirName(name, explicit)), nil
		}
	}
	return explicit, "", nil
}

// DirName returns the version directory name for a project and version.
func DirName(name string, n int) string {
	return fmt.Sprintf("%s_v%d", name, n)
}

// unsafeChars matches characters replaced during name normalization.
var unsafeChars = regexp.MustCompile(`[\s/\\:*?"<>|]+`)

// runsOfSeparators collapses repeated underscores and hyphens.
var runsOfSeparators = regexp.MustCompile(`[_-]+`)

// NormalizeProjectName converts a repository URL or local path into a
// directory-safe project name. GitHub URLs reduce to the repository name
// with any .git suffix removed; local paths reduce to the base directory
// name. The result is lowercased with unsafe characters collapsed to
// underscores.
func NormalizeProjectName(input string) string {
	name := input

	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		if u, err := url.Parse(input); err == nil {
			name = filepath.Base(strings.TrimSuffix(u.Path, "/"))
		}
	} else {
		name = filepath.Base(filepath.Clean(input))
	}

	name = strings.TrimSuffix(name, ".git")
	name = strings.ToLower(name)
	name = unsafeChars.ReplaceAllString(name, "_")
	name = runsOfSeparators.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_-")

	if name == "" || name == "." {
		return "unknown_repo"
	}
	return name
}
