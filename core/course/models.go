package course

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultPassingScore applies when a course does not set its own.
const DefaultPassingScore = 80.0

var ErrNotFound = errors.New("course not found")

type (
	Course struct {
		ID           string  `json:"id" db:"id"`
		Title        string  `json:"title" db:"title"`
		Description  string  `json:"description" db:"description"`
		EntryPoint   string  `json:"entry_point" db:"entry_point"`
		PassingScore float64 `json:"passing_score" db:"passing_score"`
		IsActive     bool    `json:"is_active" db:"is_active"`
	}

	// Registry is the read-only course lookup used by the runtime.
	Registry interface {
		GetCourse(ctx context.Context, id string) (Course, error)
		ListCourses(ctx context.Context) ([]Course, error)
	}

	// Repository adds the writes needed to import a catalog.
	Repository interface {
		Registry
		UpsertCourse(ctx context.Context, c Course) (Course, error)
	}

	catalog struct {
		Courses []catalogCourse `yaml:"courses"`
	}

	catalogCourse struct {
		ID           string   `yaml:"id"`
		Title        string   `yaml:"title"`
		Description  string   `yaml:"description"`
		EntryPoint   string   `yaml:"entry_point"`
		PassingScore *float64 `yaml:"passing_score"`
		IsActive     *bool    `yaml:"is_active"`
	}
)

// LoadCatalog reads a YAML course catalog:
//
//	courses:
//	  - id: moe-safety-101
//	    title: Lab Safety
//	    entry_point: index_lms.html
//	    passing_score: 70
//
// Courses are active unless `is_active: false` is given; passing_score defaults to DefaultPassingScore.
func LoadCatalog(r io.Reader) ([]Course, error) {
	var cat catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cat); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(err, "decoding catalog")
	}

	courses := make([]Course, 0, len(cat.Courses))
	seen := make(map[string]bool, len(cat.Courses))
	for i, cc := range cat.Courses {
		c := Course{
			ID:           strings.TrimSpace(cc.ID),
			Title:        strings.TrimSpace(cc.Title),
			Description:  cc.Description,
			EntryPoint:   strings.TrimSpace(cc.EntryPoint),
			PassingScore: DefaultPassingScore,
			IsActive:     true,
		}
		if cc.PassingScore != nil {
			c.PassingScore = *cc.PassingScore
		}
		if cc.IsActive != nil {
			c.IsActive = *cc.IsActive
		}
		if c.ID == "" {
			return nil, pkgerrors.Errorf("course #%d: id is required", i+1)
		}
		if seen[c.ID] {
			return nil, pkgerrors.Errorf("course %q: duplicate id", c.ID)
		}
		seen[c.ID] = true
		if c.Title == "" {
			c.Title = c.ID
		}
		if c.PassingScore < 0 || c.PassingScore > 100 {
			return nil, pkgerrors.Errorf("course %q: passing_score must be within 0..100", c.ID)
		}
		courses = append(courses, c)
	}
	return courses, nil
}

// LoadCatalogFile is LoadCatalog on a file path.
func LoadCatalogFile(path string) ([]Course, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "opening catalog")
	}
	defer func() { _ = f.Close() }()
	return LoadCatalog(f)
}
