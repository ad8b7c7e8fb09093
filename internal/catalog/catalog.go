// Package catalog holds the immutable course registry: exam metadata,
// passing thresholds and the weighted topic tree every card maps into.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrUnknownCourse = errors.New("unknown course")
	ErrUnknownTopic  = errors.New("unknown topic")
	ErrInvalidCourse = errors.New("invalid course definition")
)

// Course is one exam definition.
type Course struct {
	Code         string     `yaml:"code" json:"code"`
	Name         string     `yaml:"name" json:"name"`
	Version      string     `yaml:"version" json:"version"`
	Description  string     `yaml:"description,omitempty" json:"description,omitempty"`
	PassingScore float64    `yaml:"passing_score" json:"passing_score"`
	Exam         ExamConfig `yaml:"exam" json:"exam"`
	Topics       []Topic    `yaml:"topics" json:"topics"`

	leaves  []WeightedTopic
	byTopic map[string]WeightedTopic
}

// ExamConfig describes the exam format.
type ExamConfig struct {
	TotalQuestions  int    `yaml:"total_questions" json:"total_questions"`
	DurationMinutes int    `yaml:"duration_minutes" json:"duration_minutes"`
	Notes           string `yaml:"notes,omitempty" json:"notes,omitempty"`
}

// Topic is a syllabus node. Child weights are percentages of the parent.
type Topic struct {
	ID        string   `yaml:"id" json:"id"`
	Name      string   `yaml:"name" json:"name"`
	WeightPct float64  `yaml:"weight_pct" json:"weight_pct"`
	Keywords  []string `yaml:"keywords,omitempty" json:"keywords,omitempty"`
	Children  []Topic  `yaml:"children,omitempty" json:"children,omitempty"`
}

// WeightedTopic is a leaf topic with its weight expressed as a share of
// the whole exam.
type WeightedTopic struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Section   string   `json:"section"`
	WeightPct float64  `json:"weight_pct"`
	Keywords  []string `json:"keywords,omitempty"`
}

// Leaves returns the scoring topics in syllabus order.
func (c *Course) Leaves() []WeightedTopic {
	out := make([]WeightedTopic, len(c.leaves))
	copy(out, c.leaves)
	return out
}

// Topic looks up a leaf topic by id.
func (c *Course) Topic(id string) (WeightedTopic, error) {
	t, ok := c.byTopic[id]
	if !ok {
		return WeightedTopic{}, fmt.Errorf("%w: %s in %s", ErrUnknownTopic, id, c.Code)
	}
	return t, nil
}

// prepare normalises the course and flattens the topic tree.
func (c *Course) prepare() error {
	c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
	if c.Code == "" {
		return fmt.Errorf("%w: empty code", ErrInvalidCourse)
	}
	if c.PassingScore <= 0 || c.PassingScore > 1 {
		return fmt.Errorf("%w: %s passing score %.2f out of (0,1]", ErrInvalidCourse, c.Code, c.PassingScore)
	}
	c.leaves = nil
	c.byTopic = make(map[string]WeightedTopic)
	seen := make(map[string]bool)
	var walk func(ts []Topic, section string, scale float64) error
	walk = func(ts []Topic, section string, scale float64) error {
		for _, t := range ts {
			if seen[t.ID] {
				return fmt.Errorf("%w: %s duplicate topic id %q", ErrInvalidCourse, c.Code, t.ID)
			}
			seen[t.ID] = true
			weight := t.WeightPct * scale
			if len(t.Children) > 0 {
				sec := section
				if sec == "" {
					sec = t.Name
				}
				if err := walk(t.Children, sec, weight/100); err != nil {
					return err
				}
				continue
			}
			sec := section
			if sec == "" {
				sec = t.Name
			}
			wt := WeightedTopic{ID: t.ID, Name: t.Name, Section: sec, WeightPct: weight, Keywords: t.Keywords}
			c.leaves = append(c.leaves, wt)
			c.byTopic[t.ID] = wt
		}
		return nil
	}
	if err := walk(c.Topics, "", 1); err != nil {
		return err
	}
	if len(c.leaves) == 0 {
		return fmt.Errorf("%w: %s has no topics", ErrInvalidCourse, c.Code)
	}
	return nil
}

// Registry is a read-only set of courses, built once at startup.
type Registry struct {
	courses map[string]*Course
	topics  map[string]string // topic id -> course code
}

// NewRegistry builds a registry. Later duplicates of a course code replace
// earlier ones only when their version is higher.
func NewRegistry(courses ...*Course) (*Registry, error) {
	r := &Registry{
		courses: make(map[string]*Course),
		topics:  make(map[string]string),
	}
	for _, c := range courses {
		if err := c.prepare(); err != nil {
			return nil, err
		}
		if prev, ok := r.courses[c.Code]; ok && !newerVersion(c.Version, prev.Version) {
			continue
		}
		r.courses[c.Code] = c
	}
	for code, c := range r.courses {
		for _, t := range c.leaves {
			if other, ok := r.topics[t.ID]; ok && other != code {
				return nil, fmt.Errorf("%w: topic %q in both %s and %s", ErrInvalidCourse, t.ID, other, code)
			}
			r.topics[t.ID] = code
		}
	}
	return r, nil
}

// Course returns the course for a code, case-insensitively.
func (r *Registry) Course(code string) (*Course, error) {
	c, ok := r.courses[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCourse, code)
	}
	return c, nil
}

// Courses returns all courses sorted by code.
func (r *Registry) Courses() []*Course {
	out := make([]*Course, 0, len(r.courses))
	for _, c := range r.courses {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// CourseForTopic returns the course that owns a leaf topic.
func (r *Registry) CourseForTopic(topicID string) (*Course, error) {
	code, ok := r.topics[topicID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTopic, topicID)
	}
	return r.courses[code], nil
}
