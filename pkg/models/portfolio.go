// Package models defines the shared data types for the portfolio server.
package models

// Skill represents a single skill entry in the portfolio dataset.
type Skill struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Category    string   `json:"category" yaml:"category"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Level       int      `json:"level" yaml:"level"`
	Years       float64  `json:"years,omitempty" yaml:"years,omitempty"`
	Featured    bool     `json:"featured" yaml:"featured"`
}

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

// Project statuses.
const (
	ProjectCompleted  ProjectStatus = "completed"
	ProjectInProgress ProjectStatus = "in-progress"
	ProjectPlanned    ProjectStatus = "planned"
)

// Project represents a portfolio project entry.
type Project struct {
	ID           string        `json:"id" yaml:"id"`
	Title        string        `json:"title" yaml:"title"`
	Category     string        `json:"category" yaml:"category"`
	Description  string        `json:"description,omitempty" yaml:"description,omitempty"`
	Status       ProjectStatus `json:"status" yaml:"status"`
	Technologies []string      `json:"technologies,omitempty" yaml:"technologies,omitempty"`
	URL          string        `json:"url,omitempty" yaml:"url,omitempty"`
	RepoURL      string        `json:"repo_url,omitempty" yaml:"repo_url,omitempty"`
	Year         int           `json:"year,omitempty" yaml:"year,omitempty"`
	Views        int64         `json:"views" yaml:"views,omitempty"`
	Likes        int64         `json:"likes" yaml:"likes,omitempty"`
	Featured     bool          `json:"featured" yaml:"featured"`
}

// ContactInfo holds the portfolio owner's contact details.
type ContactInfo struct {
	Name      string            `json:"name" yaml:"name"`
	Title     string            `json:"title,omitempty" yaml:"title,omitempty"`
	Email     string            `json:"email" yaml:"email"`
	Location  string            `json:"location,omitempty" yaml:"location,omitempty"`
	Socials   map[string]string `json:"socials,omitempty" yaml:"socials,omitempty"`
	Available bool              `json:"available_for_work" yaml:"available_for_work"`
}
