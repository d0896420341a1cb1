// Package portfolio holds the read-only portfolio dataset and its accessors.
// The dataset is supplied at startup (YAML file or the embedded default) and
// is only ever swapped wholesale on reload, never mutated in place.
package portfolio

import (
	"sort"
	"strings"
	"sync"

	"github.com/darkclone9/portfolio-server/pkg/models"
)

// Dataset is one immutable snapshot of portfolio content.
type Dataset struct {
	Contact  models.ContactInfo `yaml:"contact"`
	Skills   []models.Skill     `yaml:"skills"`
	Projects []models.Project   `yaml:"projects"`
}

// isEmpty reports whether the snapshot carries no content at all.
func (ds *Dataset) isEmpty() bool {
	return len(ds.Skills) == 0 && len(ds.Projects) == 0 &&
		ds.Contact.Name == "" && ds.Contact.Email == ""
}

// Store serves reads over the current dataset snapshot. Reads take the lock
// only long enough to grab the snapshot pointer.
type Store struct {
	ds *Dataset
	mu sync.RWMutex
}

// NewStore creates a store serving the given dataset.
func NewStore(ds *Dataset) *Store {
	if ds == nil {
		ds = &Dataset{}
	}
	return &Store{ds: ds}
}

// Replace swaps in a new dataset snapshot.
func (s *Store) Replace(ds *Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ds = ds
}

func (s *Store) snapshot() *Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ds
}

// Skills returns a copy of all skills.
func (s *Store) Skills() []models.Skill {
	ds := s.snapshot()
	return append([]models.Skill(nil), ds.Skills...)
}

// SkillByID returns the skill with the given ID, if present.
func (s *Store) SkillByID(id string) (models.Skill, bool) {
	for _, skill := range s.snapshot().Skills {
		if skill.ID == id {
			return skill, true
		}
	}
	return models.Skill{}, false
}

// SkillFilter narrows a skill listing. Zero values mean "no constraint".
type SkillFilter struct {
	Category string
	Search   string
	MinLevel int
	MaxLevel int
}

// FilterSkills returns skills matching every set constraint.
func (s *Store) FilterSkills(f SkillFilter) []models.Skill {
	out := make([]models.Skill, 0)
	for _, skill := range s.snapshot().Skills {
		if f.Category != "" && !strings.EqualFold(skill.Category, f.Category) {
			continue
		}
		if f.MinLevel > 0 && skill.Level < f.MinLevel {
			continue
		}
		if f.MaxLevel > 0 && skill.Level > f.MaxLevel {
			continue
		}
		if f.Search != "" && !skillMatches(skill, f.Search) {
			continue
		}
		out = append(out, skill)
	}
	return out
}

// FeaturedSkills returns the skills marked featured.
func (s *Store) FeaturedSkills() []models.Skill {
	out := make([]models.Skill, 0)
	for _, skill := range s.snapshot().Skills {
		if skill.Featured {
			out = append(out, skill)
		}
	}
	return out
}

// SkillsByCategory groups all skills by category, with categories and
// members in stable sorted order.
func (s *Store) SkillsByCategory() map[string][]models.Skill {
	grouped := make(map[string][]models.Skill)
	for _, skill := range s.snapshot().Skills {
		grouped[skill.Category] = append(grouped[skill.Category], skill)
	}
	for category := range grouped {
		members := grouped[category]
		sort.Slice(members, func(i, j int) bool { return members[i].Name < members[j].Name })
		grouped[category] = members
	}
	return grouped
}

// Projects returns a copy of all projects.
func (s *Store) Projects() []models.Project {
	ds := s.snapshot()
	return append([]models.Project(nil), ds.Projects...)
}

// ProjectByID returns the project with the given ID, if present.
func (s *Store) ProjectByID(id string) (models.Project, bool) {
	for _, project := range s.snapshot().Projects {
		if project.ID == id {
			return project, true
		}
	}
	return models.Project{}, false
}

// ProjectFilter narrows a project listing. Zero values mean "no constraint".
type ProjectFilter struct {
	Category string
	Status   string
	Search   string
	YearFrom int
	YearTo   int
}

// FilterProjects returns projects matching every set constraint.
func (s *Store) FilterProjects(f ProjectFilter) []models.Project {
	out := make([]models.Project, 0)
	for _, project := range s.snapshot().Projects {
		if f.Category != "" && !strings.EqualFold(project.Category, f.Category) {
			continue
		}
		if f.Status != "" && !strings.EqualFold(string(project.Status), f.Status) {
			continue
		}
		if f.YearFrom > 0 && project.Year < f.YearFrom {
			continue
		}
		if f.YearTo > 0 && project.Year > f.YearTo {
			continue
		}
		if f.Search != "" && !projectMatches(project, f.Search) {
			continue
		}
		out = append(out, project)
	}
	return out
}

// FeaturedProjects returns the projects marked featured.
func (s *Store) FeaturedProjects() []models.Project {
	out := make([]models.Project, 0)
	for _, project := range s.snapshot().Projects {
		if project.Featured {
			out = append(out, project)
		}
	}
	return out
}

// ProjectsByCategory groups all projects by category in stable order.
func (s *Store) ProjectsByCategory() map[string][]models.Project {
	grouped := make(map[string][]models.Project)
	for _, project := range s.snapshot().Projects {
		grouped[project.Category] = append(grouped[project.Category], project)
	}
	for category := range grouped {
		members := grouped[category]
		sort.Slice(members, func(i, j int) bool { return members[i].Title < members[j].Title })
		grouped[category] = members
	}
	return grouped
}

// Contact returns the contact info snapshot.
func (s *Store) Contact() models.ContactInfo {
	return s.snapshot().Contact
}

func skillMatches(skill models.Skill, search string) bool {
	needle := strings.ToLower(search)
	if strings.Contains(strings.ToLower(skill.Name), needle) ||
		strings.Contains(strings.ToLower(skill.Description), needle) {
		return true
	}
	for _, tag := range skill.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

func projectMatches(project models.Project, search string) bool {
	needle := strings.ToLower(search)
	if strings.Contains(strings.ToLower(project.Title), needle) ||
		strings.Contains(strings.ToLower(project.Description), needle) {
		return true
	}
	for _, tech := range project.Technologies {
		if strings.Contains(strings.ToLower(tech), needle) {
			return true
		}
	}
	return false
}
