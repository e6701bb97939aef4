package track

import (
	"fmt"
	"regexp"
	"strconv"
)

var numberSuffix = regexp.MustCompile(`^(.+) (\d+)$`)

// UniqueProjectName returns baseName if no existing project uses it,
// otherwise the first free numbered variant: "Name", "Name 1", "Name 2", …
// A base that already ends in a number increments that number instead of
// stacking a second suffix.
func UniqueProjectName(baseName string, existing []Project) string {
	if baseName == "" {
		baseName = "New Project"
	}
	if !nameTaken(baseName, existing) {
		return baseName
	}

	prefix := baseName
	num := 0
	if m := numberSuffix.FindStringSubmatch(baseName); m != nil {
		prefix = m[1]
		num, _ = strconv.Atoi(m[2])
	}

	for {
		num++
		candidate := fmt.Sprintf("%s %d", prefix, num)
		if !nameTaken(candidate, existing) {
			return candidate
		}
	}
}

func nameTaken(name string, projects []Project) bool {
	for _, p := range projects {
		if p.Name == name {
			return true
		}
	}
	return false
}
