// Package classify maps free-text grade and subject labels onto the canonical
// school levels and subject keys used by the curriculum table and generators.
//
// The token and synonym tables are data, not code: the defaults are embedded
// from tables.yaml and carry a version number.
package classify

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/text/width"
	"gopkg.in/yaml.v3"
)

//go:embed tables.yaml
var defaultTables []byte

// SchoolLevel is a coarse grouping of grades.
type SchoolLevel string

const (
	Elementary   SchoolLevel = "elementary"
	JuniorHigh   SchoolLevel = "junior-high"
	HighSchool   SchoolLevel = "high-school"
	SpecialNeeds SchoolLevel = "special-needs"
)

// SchoolLevels lists every level in matching order.
var SchoolLevels = []SchoolLevel{Elementary, JuniorHigh, HighSchool, SpecialNeeds}

// ParseSchoolLevel accepts the canonical spelling of a level.
func ParseSchoolLevel(s string) (SchoolLevel, bool) {
	for _, l := range SchoolLevels {
		if string(l) == strings.TrimSpace(s) {
			return l, true
		}
	}
	return "", false
}

// Subject is a normalized subject key such as "math".
type Subject string

const (
	Math          Subject = "math"
	Science       Subject = "science"
	Japanese      Subject = "japanese"
	English       Subject = "english"
	Social        Subject = "social"
	Moral         Subject = "moral"
	Information   Subject = "information"
	Technology    Subject = "technology"
	Art           Subject = "art"
	Music         Subject = "music"
	PE            Subject = "pe"
	HomeEconomics Subject = "home-economics"
)

// LevelTokens lists the substrings that identify one school level.
type LevelTokens struct {
	Level  SchoolLevel `yaml:"level"`
	Tokens []string    `yaml:"tokens"`
}

// Tables is the versioned configuration behind a Classifier.
type Tables struct {
	Version            int                `yaml:"version"`
	SchoolLevels       []LevelTokens      `yaml:"school_levels"`
	DefaultSchoolLevel SchoolLevel        `yaml:"default_school_level"`
	Subjects           map[string]Subject `yaml:"subjects"`
}

// Classifier derives school levels and subject keys from raw labels.
type Classifier struct {
	tables Tables
}

// New validates the tables and returns a classifier over them.
func New(t Tables) (*Classifier, error) {
	if t.Version <= 0 {
		return nil, fmt.Errorf("classifier tables: version must be positive, got %d", t.Version)
	}
	if len(t.SchoolLevels) == 0 {
		return nil, fmt.Errorf("classifier tables: no school levels")
	}
	if _, ok := ParseSchoolLevel(string(t.DefaultSchoolLevel)); !ok {
		return nil, fmt.Errorf("classifier tables: unknown default school level %q", t.DefaultSchoolLevel)
	}
	for _, lt := range t.SchoolLevels {
		if _, ok := ParseSchoolLevel(string(lt.Level)); !ok {
			return nil, fmt.Errorf("classifier tables: unknown school level %q", lt.Level)
		}
	}
	if t.Subjects == nil {
		t.Subjects = map[string]Subject{}
	}
	return &Classifier{tables: t}, nil
}

// Parse builds a classifier from YAML table data.
func Parse(data []byte) (*Classifier, error) {
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing classifier tables: %w", err)
	}
	return New(t)
}

var (
	defaultOnce       sync.Once
	defaultClassifier *Classifier
)

// Default returns the classifier built from the embedded tables.
func Default() *Classifier {
	defaultOnce.Do(func() {
		c, err := Parse(defaultTables)
		if err != nil {
			panic(fmt.Sprintf("embedded classifier tables: %v", err))
		}
		defaultClassifier = c
	})
	return defaultClassifier
}

// Version reports the table version the classifier was built from.
func (c *Classifier) Version() int {
	return c.tables.Version
}

// SchoolLevel returns the first level whose token occurs in grade, or the
// table default when nothing matches.
func (c *Classifier) SchoolLevel(grade string) SchoolLevel {
	text := strings.ToLower(fold(grade))
	for _, lt := range c.tables.SchoolLevels {
		for _, tok := range lt.Tokens {
			if tok != "" && strings.Contains(text, strings.ToLower(tok)) {
				return lt.Level
			}
		}
	}
	return c.tables.DefaultSchoolLevel
}

// Subject looks the raw label up in the synonym table. Unknown labels are
// lower-cased and returned as-is.
func (c *Classifier) Subject(raw string) Subject {
	label := fold(raw)
	if s, ok := c.tables.Subjects[label]; ok {
		return s
	}
	return Subject(strings.ToLower(label))
}

// SchoolLevelOf classifies grade with the default tables.
func SchoolLevelOf(grade string) SchoolLevel {
	return Default().SchoolLevel(grade)
}

// NormalizeSubject normalizes subject with the default tables.
func NormalizeSubject(subject string) Subject {
	return Default().Subject(subject)
}

// fold trims and narrows full-width ASCII so "ｈｉｇｈ－ｓｃｈｏｏｌ" matches "high-school".
func fold(s string) string {
	return strings.TrimSpace(width.Fold.String(s))
}
