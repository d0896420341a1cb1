package tools

import (
	"context"
	"fmt"

	"github.com/darkclone9/portfolio-server/internal/analytics"
	"github.com/darkclone9/portfolio-server/internal/apperr"
	"github.com/darkclone9/portfolio-server/internal/export"
	"github.com/darkclone9/portfolio-server/internal/portfolio"
	"github.com/darkclone9/portfolio-server/internal/schema"
	"github.com/darkclone9/portfolio-server/pkg/models"
)

func ptr[T any](v T) *T { return &v }

// RegisterPortfolioTools registers every portfolio operation on the registry.
func RegisterPortfolioTools(reg *Registry, store *portfolio.Store, tracker *analytics.Tracker) error {
	h := &handlers{store: store, tracker: tracker}

	descriptors := []*Descriptor{
		{
			Name:        "list_skills",
			Description: "List all skills, optionally narrowed by category or featured flag.",
			Schema: &schema.ObjectSchema{
				Properties: map[string]schema.Schema{
					"category": &schema.StringSchema{Description: "Filter by skill category"},
					"featured": &schema.BooleanSchema{Description: "Only featured skills"},
				},
			},
			Handler: h.listSkills,
		},
		{
			Name:        "get_skill",
			Description: "Fetch a single skill by its ID.",
			Schema: &schema.ObjectSchema{
				Required: []string{"id"},
				Properties: map[string]schema.Schema{
					"id": &schema.StringSchema{Description: "Skill ID", MinLength: ptr(1)},
				},
			},
			Handler: h.getSkill,
		},
		{
			Name:        "filter_skills",
			Description: "Filter skills by category, search substring, and level range.",
			Schema: &schema.ObjectSchema{
				Properties: map[string]schema.Schema{
					"category":  &schema.StringSchema{Description: "Skill category"},
					"search":    &schema.StringSchema{Description: "Substring match on name, description, tags"},
					"min_level": &schema.NumberSchema{Integer: true, Minimum: ptr(0.0), Maximum: ptr(100.0)},
					"max_level": &schema.NumberSchema{Integer: true, Minimum: ptr(0.0), Maximum: ptr(100.0)},
				},
			},
			Handler: h.filterSkills,
		},
		{
			Name:        "featured_skills",
			Description: "List the skills marked as featured.",
			Handler:     h.featuredSkills,
		},
		{
			Name:        "skills_by_category",
			Description: "Group all skills by category.",
			Handler:     h.skillsByCategory,
		},
		{
			Name:        "list_projects",
			Description: "List all projects, optionally narrowed by status.",
			Schema: &schema.ObjectSchema{
				Properties: map[string]schema.Schema{
					"status": &schema.StringSchema{
						Description: "Project status",
						Enum:        []string{"completed", "in-progress", "planned"},
					},
					"limit": &schema.NumberSchema{
						Integer: true, Minimum: ptr(1.0), Maximum: ptr(100.0),
						Description: "Maximum number of projects to return",
					},
				},
			},
			Handler: h.listProjects,
		},
		{
			Name:        "get_project",
			Description: "Fetch a single project by its ID.",
			Schema: &schema.ObjectSchema{
				Required: []string{"id"},
				Properties: map[string]schema.Schema{
					"id": &schema.StringSchema{Description: "Project ID", MinLength: ptr(1)},
				},
			},
			Handler: h.getProject,
		},
		{
			Name:        "filter_projects",
			Description: "Filter projects by category, status, search substring, and year range.",
			Schema: &schema.ObjectSchema{
				Properties: map[string]schema.Schema{
					"category": &schema.StringSchema{Description: "Project category"},
					"status": &schema.StringSchema{
						Enum: []string{"completed", "in-progress", "planned"},
					},
					"search":    &schema.StringSchema{Description: "Substring match on title, description, technologies"},
					"year_from": &schema.NumberSchema{Integer: true, Minimum: ptr(2000.0)},
					"year_to":   &schema.NumberSchema{Integer: true, Minimum: ptr(2000.0)},
				},
			},
			Handler: h.filterProjects,
		},
		{
			Name:        "featured_projects",
			Description: "List the projects marked as featured.",
			Handler:     h.featuredProjects,
		},
		{
			Name:        "projects_by_category",
			Description: "Group all projects by category.",
			Handler:     h.projectsByCategory,
		},
		{
			Name:        "get_contact_info",
			Description: "Return the portfolio owner's contact details.",
			Handler:     h.getContactInfo,
		},
		{
			Name:        "track_event",
			Description: "Record an interaction event (view, click, download, contact, share).",
			Schema: &schema.ObjectSchema{
				Required: []string{"type", "resource"},
				Properties: map[string]schema.Schema{
					"type": &schema.StringSchema{
						Description: "Interaction type",
						Enum:        []string{"view", "click", "download", "contact", "share"},
					},
					"resource":    &schema.StringSchema{Description: "Resource kind, e.g. project or skill", MinLength: ptr(1)},
					"resource_id": &schema.StringSchema{Description: "Identifier of the specific resource"},
					"referrer":    &schema.StringSchema{Description: "Referrer URL"},
				},
			},
			Handler: h.trackEvent,
		},
		{
			Name:        "get_analytics",
			Description: "Aggregate interaction statistics over a trailing time range.",
			Schema: &schema.ObjectSchema{
				Properties: map[string]schema.Schema{
					"range": &schema.StringSchema{
						Description: "Trailing range keyword",
						Enum:        []string{"day", "week", "month", "year", "all"},
						Default:     ptr("week"),
					},
					"type": &schema.StringSchema{
						Description: "Only count events of this type",
						Enum:        []string{"view", "click", "download", "contact", "share"},
					},
				},
			},
			Handler: h.getAnalytics,
		},
		{
			Name:        "get_popular_content",
			Description: "Rank projects or skills by interaction count.",
			Schema: &schema.ObjectSchema{
				Properties: map[string]schema.Schema{
					"content_type": &schema.StringSchema{
						Enum:    []string{"projects", "skills"},
						Default: ptr("projects"),
					},
					"limit": &schema.NumberSchema{
						Integer: true, Minimum: ptr(1.0), Maximum: ptr(50.0),
						Default: ptr(10.0),
					},
					"range": &schema.StringSchema{
						Enum:    []string{"day", "week", "month", "year", "all"},
						Default: ptr("all"),
					},
				},
			},
			Handler: h.getPopularContent,
		},
		{
			Name:        "export_portfolio",
			Description: "Export portfolio data as JSON, CSV, Markdown, or XML.",
			Schema: &schema.ObjectSchema{
				Required: []string{"format"},
				Properties: map[string]schema.Schema{
					"format": &schema.StringSchema{
						Enum: []string{"json", "csv", "markdown", "xml"},
					},
					"section": &schema.StringSchema{
						Enum:    []string{"all", "skills", "projects", "contact"},
						Default: ptr("all"),
					},
					"pretty": &schema.BooleanSchema{Default: ptr(true)},
				},
			},
			Handler: h.exportPortfolio,
		},
	}

	for _, d := range descriptors {
		if err := reg.Register(d); err != nil {
			return fmt.Errorf("register %s: %w", d.Name, err)
		}
	}
	return nil
}

type handlers struct {
	store   *portfolio.Store
	tracker *analytics.Tracker
}

func (h *handlers) listSkills(_ context.Context, args map[string]any) (any, error) {
	category, _ := args["category"].(string)
	skills := h.store.FilterSkills(portfolio.SkillFilter{Category: category})
	if featured, ok := args["featured"].(bool); ok && featured {
		out := skills[:0]
		for _, skill := range skills {
			if skill.Featured {
				out = append(out, skill)
			}
		}
		skills = out
	}
	return map[string]any{"skills": skills, "count": len(skills)}, nil
}

func (h *handlers) getSkill(ctx context.Context, args map[string]any) (any, error) {
	id, _ := args["id"].(string)
	skill, ok := h.store.SkillByID(id)
	if !ok {
		return nil, apperr.NotFound("skill", id)
	}
	h.recordView(ctx, "skill", id)
	return skill, nil
}

func (h *handlers) filterSkills(_ context.Context, args map[string]any) (any, error) {
	filter := portfolio.SkillFilter{}
	filter.Category, _ = args["category"].(string)
	filter.Search, _ = args["search"].(string)
	filter.MinLevel = intArg(args, "min_level")
	filter.MaxLevel = intArg(args, "max_level")
	skills := h.store.FilterSkills(filter)
	return map[string]any{"skills": skills, "count": len(skills)}, nil
}

func (h *handlers) featuredSkills(_ context.Context, _ map[string]any) (any, error) {
	skills := h.store.FeaturedSkills()
	return map[string]any{"skills": skills, "count": len(skills)}, nil
}

func (h *handlers) skillsByCategory(_ context.Context, _ map[string]any) (any, error) {
	return h.store.SkillsByCategory(), nil
}

func (h *handlers) listProjects(_ context.Context, args map[string]any) (any, error) {
	status, _ := args["status"].(string)
	projects := h.store.FilterProjects(portfolio.ProjectFilter{Status: status})
	if limit := intArg(args, "limit"); limit > 0 && len(projects) > limit {
		projects = projects[:limit]
	}
	return map[string]any{"projects": projects, "count": len(projects)}, nil
}

func (h *handlers) getProject(ctx context.Context, args map[string]any) (any, error) {
	id, _ := args["id"].(string)
	project, ok := h.store.ProjectByID(id)
	if !ok {
		return nil, apperr.NotFound("project", id)
	}
	h.recordView(ctx, "project", id)
	return project, nil
}

func (h *handlers) filterProjects(_ context.Context, args map[string]any) (any, error) {
	filter := portfolio.ProjectFilter{}
	filter.Category, _ = args["category"].(string)
	filter.Status, _ = args["status"].(string)
	filter.Search, _ = args["search"].(string)
	filter.YearFrom = intArg(args, "year_from")
	filter.YearTo = intArg(args, "year_to")
	projects := h.store.FilterProjects(filter)
	return map[string]any{"projects": projects, "count": len(projects)}, nil
}

func (h *handlers) featuredProjects(_ context.Context, _ map[string]any) (any, error) {
	projects := h.store.FeaturedProjects()
	return map[string]any{"projects": projects, "count": len(projects)}, nil
}

func (h *handlers) projectsByCategory(_ context.Context, _ map[string]any) (any, error) {
	return h.store.ProjectsByCategory(), nil
}

func (h *handlers) getContactInfo(_ context.Context, _ map[string]any) (any, error) {
	return h.store.Contact(), nil
}

func (h *handlers) trackEvent(ctx context.Context, args map[string]any) (any, error) {
	eventType, _ := args["type"].(string)
	resource, _ := args["resource"].(string)
	resourceID, _ := args["resource_id"].(string)
	referrer, _ := args["referrer"].(string)

	caller := CallerFromContext(ctx)
	event, err := h.tracker.Track(models.AnalyticsEvent{
		Type:           models.EventType(eventType),
		Resource:       resource,
		ResourceID:     resourceID,
		Referrer:       referrer,
		AnonymizedAddr: caller.IP,
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{"tracked": true, "event_id": event.ID}, nil
}

func (h *handlers) getAnalytics(_ context.Context, args map[string]any) (any, error) {
	timeRange, _ := args["range"].(string)
	typeFilter, _ := args["type"].(string)
	return h.tracker.Stats(timeRange, models.EventType(typeFilter))
}

func (h *handlers) getPopularContent(_ context.Context, args map[string]any) (any, error) {
	contentType, _ := args["content_type"].(string)
	timeRange, _ := args["range"].(string)
	limit := intArg(args, "limit")

	ranked, err := h.tracker.Popular(contentType, limit, timeRange)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"content_type": contentType,
		"range":        timeRange,
		"items":        ranked,
	}, nil
}

func (h *handlers) exportPortfolio(_ context.Context, args map[string]any) (any, error) {
	format, _ := args["format"].(string)
	section, _ := args["section"].(string)
	pretty, _ := args["pretty"].(bool)

	return export.Render(h.store, export.Options{
		Format:  format,
		Section: section,
		Pretty:  pretty,
	})
}

// recordView logs a passive view event for read tools. Tracking failures
// never fail the read itself.
func (h *handlers) recordView(ctx context.Context, resource, id string) {
	caller := CallerFromContext(ctx)
	_, _ = h.tracker.Track(models.AnalyticsEvent{
		Type:           models.EventView,
		Resource:       resource,
		ResourceID:     id,
		AnonymizedAddr: caller.IP,
	})
}

// intArg reads an integer argument that may arrive as float64 (JSON) or int
// (applied defaults).
func intArg(args map[string]any, name string) int {
	switch v := args[name].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}
