package export

import (
	"encoding/xml"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkclone9/portfolio-server/internal/portfolio"
	"github.com/darkclone9/portfolio-server/pkg/models"
)

func testStore() *portfolio.Store {
	return portfolio.NewStore(&portfolio.Dataset{
		Contact: models.ContactInfo{
			Name:  "Test Person",
			Email: "test@example.com",
		},
		Skills: []models.Skill{
			{ID: "go", Name: "Go", Category: "backend", Level: 80},
			{ID: "css", Name: "CSS, \"the hard parts\"", Category: "frontend", Level: 60},
		},
		Projects: []models.Project{
			{ID: "p1", Title: "Project One", Category: "web", Status: models.ProjectCompleted, Views: 7},
			{ID: "p2", Title: "Project,Two", Category: "web", Status: models.ProjectPlanned},
		},
	})
}

func emptyStore() *portfolio.Store {
	return portfolio.NewStore(&portfolio.Dataset{})
}

func TestRender_JSONRoundTrip(t *testing.T) {
	payload, err := Render(testStore(), Options{Format: FormatJSON, Section: SectionAll, Pretty: true})
	require.NoError(t, err)
	assert.Equal(t, "application/json", payload.MimeType)
	assert.Equal(t, len(payload.Content), payload.Size)
	assert.True(t, strings.HasSuffix(payload.Filename, ".json"))

	var parsed struct {
		Skills   []models.Skill   `json:"skills"`
		Projects []models.Project `json:"projects"`
	}
	require.NoError(t, json.Unmarshal([]byte(payload.Content), &parsed))
	assert.Len(t, parsed.Skills, 2)
	assert.Len(t, parsed.Projects, 2)
}

func TestRender_JSONCompact(t *testing.T) {
	pretty, err := Render(testStore(), Options{Format: FormatJSON, Pretty: true})
	require.NoError(t, err)
	compact, err := Render(testStore(), Options{Format: FormatJSON, Pretty: false})
	require.NoError(t, err)
	assert.Less(t, compact.Size, pretty.Size)
}

func TestRender_EmptyCollections(t *testing.T) {
	for _, format := range []string{FormatJSON, FormatCSV, FormatMarkdown, FormatXML} {
		t.Run(format, func(t *testing.T) {
			payload, err := Render(emptyStore(), Options{Format: format, Section: SectionAll})
			require.NoError(t, err)
			assert.NotEmpty(t, payload.Content)
		})
	}
}

func TestRender_CSVEscaping(t *testing.T) {
	payload, err := Render(testStore(), Options{Format: FormatCSV, Section: SectionAll})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(payload.Content, "\n"), "\n")
	// Header + 2 skills + 2 projects + contact.
	require.Len(t, lines, 6)
	assert.Equal(t, "kind,id,name,category,status,featured,description,tags", lines[0])
	assert.Contains(t, payload.Content, `"CSS, ""the hard parts"""`)
	assert.Contains(t, payload.Content, `"Project,Two"`)
}

func TestRender_Markdown(t *testing.T) {
	payload, err := Render(testStore(), Options{Format: FormatMarkdown, Section: SectionAll})
	require.NoError(t, err)
	assert.Contains(t, payload.Content, "# Portfolio")
	assert.Contains(t, payload.Content, "## Skills")
	assert.Contains(t, payload.Content, "## Projects")
	assert.Contains(t, payload.Content, "### Project One")
	assert.Equal(t, "text/markdown", payload.MimeType)
}

func TestRender_XMLParses(t *testing.T) {
	payload, err := Render(testStore(), Options{Format: FormatXML, Section: SectionAll})
	require.NoError(t, err)

	var parsed struct {
		XMLName xml.Name `xml:"portfolio"`
		Skills  []struct {
			ID string `xml:"id,attr"`
		} `xml:"skills>skill"`
		Projects []struct {
			ID string `xml:"id,attr"`
		} `xml:"projects>project"`
	}
	require.NoError(t, xml.Unmarshal([]byte(payload.Content), &parsed))
	assert.Len(t, parsed.Skills, 2)
	assert.Len(t, parsed.Projects, 2)
}

func TestRender_Sections(t *testing.T) {
	payload, err := Render(testStore(), Options{Format: FormatJSON, Section: SectionSkills})
	require.NoError(t, err)
	assert.Contains(t, payload.Content, `"skills"`)
	assert.NotContains(t, payload.Content, `"projects"`)

	payload, err = Render(testStore(), Options{Format: FormatJSON, Section: SectionContact})
	require.NoError(t, err)
	assert.Contains(t, payload.Content, "test@example.com")
}

func TestRender_DoesNotMutateCounters(t *testing.T) {
	store := testStore()
	before, _ := store.ProjectByID("p1")

	_, err := Render(store, Options{Format: FormatJSON, Section: SectionAll})
	require.NoError(t, err)

	after, _ := store.ProjectByID("p1")
	assert.Equal(t, before.Views, after.Views)
	assert.Equal(t, before.Likes, after.Likes)
}

func TestRender_UnsupportedFormat(t *testing.T) {
	_, err := Render(testStore(), Options{Format: "pdf"})
	require.Error(t, err)
}
