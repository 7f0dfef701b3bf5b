package stoplist

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Manager holds the stopword set used by the cleaner
type Manager struct {
	stops map[string]struct{}
}

// NewManager creates a new stoplist manager
func NewManager(initialStops []string) *Manager {
	stops := make(map[string]struct{}, len(initialStops))
	for _, s := range initialStops {
		stops[strings.ToLower(s)] = struct{}{}
	}
	return &Manager{stops: stops}
}

// IsStop checks if a token is a stopword
func (m *Manager) IsStop(token string) bool {
	_, ok := m.stops[token]
	return ok
}

// Add adds a token to the stoplist
func (m *Manager) Add(token string) {
	m.stops[strings.ToLower(token)] = struct{}{}
}

// Remove removes a token from the stoplist
func (m *Manager) Remove(token string) {
	delete(m.stops, strings.ToLower(token))
}

// Len returns the number of stopwords
func (m *Manager) Len() int {
	return len(m.stops)
}

// All returns all stopwords, sorted
func (m *Manager) All() []string {
	result := make([]string, 0, len(m.stops))
	for s := range m.stops {
		result = append(result, s)
	}
	sort.Strings(result)
	return result
}

// File is the YAML layout of a stoplist file.
//
//	terms: [remote, hybrid]   # added to the set
//	keep:  [it]               # removed from the set
type File struct {
	Terms []string `yaml:"terms"`
	Keep  []string `yaml:"keep"`
}

// LoadFile reads a stoplist YAML file
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse stoplist %s: %w", path, err)
	}
	return &f, nil
}

// Apply adds the file's terms and removes its keep list.
func (m *Manager) Apply(f *File) {
	if f == nil {
		return
	}
	for _, t := range f.Terms {
		m.Add(t)
	}
	for _, t := range f.Keep {
		m.Remove(t)
	}
}
