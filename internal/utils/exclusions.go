package utils

import (
	"bufio"
	"os"
	"strings"

	"github.com/agnivade/levenshtein"
)

// maxTitleDistance tolerates minor punctuation and spacing differences when
// matching protected titles.
const maxTitleDistance = 2

// Exclusions holds titles that must never be selected for deletion
type Exclusions struct {
	titles []string
}

// LoadExclusions loads the protected-titles file (one title per line, # comments)
func LoadExclusions(path string) (*Exclusions, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Exclusions{}, nil
		}
		return nil, err
	}
	defer file.Close()

	var titles []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		titles = append(titles, normalizeTitle(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return &Exclusions{titles: titles}, nil
}

// IsProtected reports whether a title matches the exclusion list, allowing a
// small edit distance so "Dont Look Up" still protects "Don't Look Up".
func (e *Exclusions) IsProtected(title string) bool {
	normalized := normalizeTitle(title)
	for _, protected := range e.titles {
		if normalized == protected {
			return true
		}
		if levenshtein.ComputeDistance(normalized, protected) <= maxTitleDistance {
			return true
		}
	}
	return false
}

// Count returns the number of protected titles loaded
func (e *Exclusions) Count() int {
	return len(e.titles)
}

func normalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}
