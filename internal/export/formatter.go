// Package export renders the portfolio dataset into downloadable documents.
// Every formatter is a pure read: it never touches view/like counters and is
// total over empty collections.
package export

import (
	"encoding/xml"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/darkclone9/portfolio-server/internal/apperr"
	"github.com/darkclone9/portfolio-server/internal/portfolio"
	"github.com/darkclone9/portfolio-server/pkg/models"
)

// Supported export formats.
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatXML      = "xml"
)

// Sections selectable for export.
const (
	SectionAll      = "all"
	SectionSkills   = "skills"
	SectionProjects = "projects"
	SectionContact  = "contact"
)

var mimeTypes = map[string]string{
	FormatJSON:     "application/json",
	FormatCSV:      "text/csv",
	FormatMarkdown: "text/markdown",
	FormatXML:      "application/xml",
}

var extensions = map[string]string{
	FormatJSON:     "json",
	FormatCSV:      "csv",
	FormatMarkdown: "md",
	FormatXML:      "xml",
}

// Options selects what to export and how to render it.
type Options struct {
	Format  string
	Section string
	Pretty  bool
}

// document is the exportable view of the dataset.
type document struct {
	Contact  *models.ContactInfo `json:"contact,omitempty"`
	Skills   []models.Skill      `json:"skills,omitempty"`
	Projects []models.Project    `json:"projects,omitempty"`
}

// Render serializes the selected dataset section into the requested format
// and labels the result for download.
func Render(store *portfolio.Store, opts Options) (*models.ExportPayload, error) {
	if opts.Section == "" {
		opts.Section = SectionAll
	}

	doc, err := buildDocument(store, opts.Section)
	if err != nil {
		return nil, apperr.Export(opts.Format, err)
	}

	var content string
	switch opts.Format {
	case FormatJSON:
		content, err = renderJSON(doc, opts.Pretty)
	case FormatCSV:
		content = renderCSV(doc)
	case FormatMarkdown:
		content = renderMarkdown(doc)
	case FormatXML:
		content, err = renderXML(doc)
	default:
		return nil, apperr.Export(opts.Format, fmt.Errorf("unsupported format"))
	}
	if err != nil {
		return nil, apperr.Export(opts.Format, err)
	}

	filename := fmt.Sprintf("portfolio-%s-%s.%s",
		opts.Section, time.Now().Format("20060102-150405"), extensions[opts.Format])

	return &models.ExportPayload{
		Content:  content,
		Format:   opts.Format,
		MimeType: mimeTypes[opts.Format],
		Filename: filename,
		Size:     len(content),
	}, nil
}

func buildDocument(store *portfolio.Store, section string) (*document, error) {
	doc := &document{}
	switch section {
	case SectionAll:
		contact := store.Contact()
		doc.Contact = &contact
		doc.Skills = store.Skills()
		doc.Projects = store.Projects()
	case SectionSkills:
		doc.Skills = store.Skills()
	case SectionProjects:
		doc.Projects = store.Projects()
	case SectionContact:
		contact := store.Contact()
		doc.Contact = &contact
	default:
		return nil, fmt.Errorf("unsupported section: %s", section)
	}
	return doc, nil
}

func renderJSON(doc *document, pretty bool) (string, error) {
	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(doc, "", "  ")
	} else {
		data, err = json.Marshal(doc)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// renderCSV emits one row per entity with a leading kind column so skills
// and projects share a single table.
func renderCSV(doc *document) string {
	var b strings.Builder
	b.WriteString("kind,id,name,category,status,featured,description,tags\n")

	for _, skill := range doc.Skills {
		writeCSVRow(&b,
			"skill", skill.ID, skill.Name, skill.Category,
			fmt.Sprintf("level-%d", skill.Level),
			fmt.Sprintf("%t", skill.Featured),
			skill.Description,
			strings.Join(skill.Tags, ";"),
		)
	}
	for _, project := range doc.Projects {
		writeCSVRow(&b,
			"project", project.ID, project.Title, project.Category,
			string(project.Status),
			fmt.Sprintf("%t", project.Featured),
			project.Description,
			strings.Join(project.Technologies, ";"),
		)
	}
	if doc.Contact != nil {
		writeCSVRow(&b,
			"contact", "", doc.Contact.Name, "", "",
			fmt.Sprintf("%t", doc.Contact.Available),
			doc.Contact.Email, doc.Contact.Location,
		)
	}
	return b.String()
}

func writeCSVRow(b *strings.Builder, fields ...string) {
	for i, field := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(escapeCSVField(field))
	}
	b.WriteByte('\n')
}

// escapeCSVField wraps fields containing delimiters or quotes in double
// quotes, doubling embedded quotes.
func escapeCSVField(s string) string {
	if strings.ContainsAny(s, ",\"\n\r") {
		s = strings.ReplaceAll(s, "\"", "\"\"")
		return "\"" + s + "\""
	}
	return s
}

func renderMarkdown(doc *document) string {
	var b strings.Builder
	b.WriteString("# Portfolio\n")

	if doc.Contact != nil {
		b.WriteString("\n## Contact\n\n")
		fmt.Fprintf(&b, "- **Name**: %s\n", doc.Contact.Name)
		if doc.Contact.Title != "" {
			fmt.Fprintf(&b, "- **Title**: %s\n", doc.Contact.Title)
		}
		fmt.Fprintf(&b, "- **Email**: %s\n", doc.Contact.Email)
		if doc.Contact.Location != "" {
			fmt.Fprintf(&b, "- **Location**: %s\n", doc.Contact.Location)
		}
		fmt.Fprintf(&b, "- **Available for work**: %t\n", doc.Contact.Available)

		socials := make([]string, 0, len(doc.Contact.Socials))
		for name := range doc.Contact.Socials {
			socials = append(socials, name)
		}
		sort.Strings(socials)
		for _, name := range socials {
			fmt.Fprintf(&b, "- **%s**: %s\n", name, doc.Contact.Socials[name])
		}
	}

	if doc.Skills != nil {
		b.WriteString("\n## Skills\n")
		byCategory := make(map[string][]models.Skill)
		for _, skill := range doc.Skills {
			byCategory[skill.Category] = append(byCategory[skill.Category], skill)
		}
		categories := make([]string, 0, len(byCategory))
		for category := range byCategory {
			categories = append(categories, category)
		}
		sort.Strings(categories)
		for _, category := range categories {
			fmt.Fprintf(&b, "\n### %s\n\n", category)
			for _, skill := range byCategory[category] {
				fmt.Fprintf(&b, "- **%s** (level %d)", skill.Name, skill.Level)
				if skill.Description != "" {
					fmt.Fprintf(&b, " — %s", skill.Description)
				}
				b.WriteByte('\n')
			}
		}
	}

	if doc.Projects != nil {
		b.WriteString("\n## Projects\n")
		for _, project := range doc.Projects {
			fmt.Fprintf(&b, "\n### %s\n\n", project.Title)
			if project.Description != "" {
				fmt.Fprintf(&b, "%s\n\n", project.Description)
			}
			fmt.Fprintf(&b, "- Status: %s\n", project.Status)
			if project.Year > 0 {
				fmt.Fprintf(&b, "- Year: %d\n", project.Year)
			}
			if len(project.Technologies) > 0 {
				fmt.Fprintf(&b, "- Technologies: %s\n", strings.Join(project.Technologies, ", "))
			}
			if project.URL != "" {
				fmt.Fprintf(&b, "- URL: %s\n", project.URL)
			}
			if project.RepoURL != "" {
				fmt.Fprintf(&b, "- Repository: %s\n", project.RepoURL)
			}
		}
	}

	return b.String()
}

// XML mirror types keep xml tags out of the shared models.
type xmlPortfolio struct {
	XMLName  xml.Name     `xml:"portfolio"`
	Contact  *xmlContact  `xml:"contact,omitempty"`
	Skills   *xmlSkills   `xml:"skills,omitempty"`
	Projects *xmlProjects `xml:"projects,omitempty"`
}

type xmlContact struct {
	Name      string `xml:"name"`
	Title     string `xml:"title,omitempty"`
	Email     string `xml:"email"`
	Location  string `xml:"location,omitempty"`
	Available bool   `xml:"availableForWork"`
}

type xmlSkills struct {
	Skills []xmlSkill `xml:"skill"`
}

type xmlSkill struct {
	ID          string   `xml:"id,attr"`
	Name        string   `xml:"name"`
	Category    string   `xml:"category"`
	Level       int      `xml:"level"`
	Description string   `xml:"description,omitempty"`
	Tags        []string `xml:"tags>tag,omitempty"`
	Featured    bool     `xml:"featured"`
}

type xmlProjects struct {
	Projects []xmlProject `xml:"project"`
}

type xmlProject struct {
	ID           string   `xml:"id,attr"`
	Title        string   `xml:"title"`
	Category     string   `xml:"category"`
	Status       string   `xml:"status"`
	Description  string   `xml:"description,omitempty"`
	Technologies []string `xml:"technologies>technology,omitempty"`
	URL          string   `xml:"url,omitempty"`
	RepoURL      string   `xml:"repoUrl,omitempty"`
	Year         int      `xml:"year,omitempty"`
	Featured     bool     `xml:"featured"`
}

func renderXML(doc *document) (string, error) {
	out := xmlPortfolio{}
	if doc.Contact != nil {
		out.Contact = &xmlContact{
			Name:      doc.Contact.Name,
			Title:     doc.Contact.Title,
			Email:     doc.Contact.Email,
			Location:  doc.Contact.Location,
			Available: doc.Contact.Available,
		}
	}
	if doc.Skills != nil {
		skills := &xmlSkills{Skills: make([]xmlSkill, 0, len(doc.Skills))}
		for _, skill := range doc.Skills {
			skills.Skills = append(skills.Skills, xmlSkill{
				ID:          skill.ID,
				Name:        skill.Name,
				Category:    skill.Category,
				Level:       skill.Level,
				Description: skill.Description,
				Tags:        skill.Tags,
				Featured:    skill.Featured,
			})
		}
		out.Skills = skills
	}
	if doc.Projects != nil {
		projects := &xmlProjects{Projects: make([]xmlProject, 0, len(doc.Projects))}
		for _, project := range doc.Projects {
			projects.Projects = append(projects.Projects, xmlProject{
				ID:           project.ID,
				Title:        project.Title,
				Category:     project.Category,
				Status:       string(project.Status),
				Description:  project.Description,
				Technologies: project.Technologies,
				URL:          project.URL,
				RepoURL:      project.RepoURL,
				Year:         project.Year,
				Featured:     project.Featured,
			})
		}
		out.Projects = projects
	}

	data, err := xml.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return xml.Header + string(data) + "\n", nil
}
