package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	regtap "github.com/openvo/go-regtap"
)

const (
	ivoidColWidth    = 40
	servicesColWidth = 16
	defaultWidth     = 100
	defaultHeight    = 24
)

// Browser is the interactive view over one search result. The list
// view is a navigable table of resources; enter opens the selected
// record's detail view, esc returns to the list.
type Browser struct {
	table     table.Model
	resources []regtap.Resource
	endpoint  string
	overflow  bool

	// detail is the record being inspected; nil means list view.
	detail *regtap.Resource

	width  int
	height int
	styles Styles
}

// NewBrowser builds the browser over a search result.
func NewBrowser(result *regtap.SearchResult) Browser {
	b := Browser{
		resources: result.Resources,
		endpoint:  result.Endpoint,
		overflow:  result.Overflow,
		width:     defaultWidth,
		height:    defaultHeight,
		styles:    DefaultStyles(),
	}

	t := table.New(
		table.WithColumns(b.columns()),
		table.WithRows(b.rows()),
		table.WithFocused(true),
		table.WithHeight(b.tableHeight()),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	b.table = t
	return b
}

// Init implements tea.Model.
func (b Browser) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (b Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width = msg.Width
		b.height = msg.Height
		b.table.SetColumns(b.columns())
		b.table.SetWidth(msg.Width)
		b.table.SetHeight(b.tableHeight())
		return b, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return b, tea.Quit

		case "q", "esc":
			if b.detail != nil {
				b.detail = nil
				return b, nil
			}
			return b, tea.Quit

		case "enter":
			if b.detail == nil && len(b.resources) > 0 {
				cursor := b.table.Cursor()
				if cursor >= 0 && cursor < len(b.resources) {
					b.detail = &b.resources[cursor]
				}
				return b, nil
			}
		}
	}

	if b.detail == nil {
		var cmd tea.Cmd
		b.table, cmd = b.table.Update(msg)
		return b, cmd
	}
	return b, nil
}

// View implements tea.Model.
func (b Browser) View() string {
	if b.detail != nil {
		return b.detailView()
	}
	return b.listView()
}

// Selected returns the record currently under the cursor.
func (b Browser) Selected() (*regtap.Resource, bool) {
	cursor := b.table.Cursor()
	if cursor < 0 || cursor >= len(b.resources) {
		return nil, false
	}
	return &b.resources[cursor], true
}

func (b Browser) listView() string {
	header := fmt.Sprintf(" %d resources (via %s) ", len(b.resources), b.endpoint)
	if b.overflow {
		header += "⚠️ truncated "
	}

	var sb strings.Builder
	sb.WriteString(b.styles.Header.Render(header))
	sb.WriteString("\n\n")
	sb.WriteString(b.table.View())
	sb.WriteString("\n")
	sb.WriteString(b.styles.Footer.Render("↑/↓ navigate · enter details · q quit"))
	return sb.String()
}

func (b Browser) detailView() string {
	res := b.detail

	var sb strings.Builder
	sb.WriteString(b.styles.Header.Render(" " + res.IVOID + " "))
	sb.WriteString("\n\n")
	sb.WriteString(b.styles.Title.Render(res.Title))
	sb.WriteString("\n\n")

	field := func(label, value string) {
		if value == "" {
			return
		}
		sb.WriteString(b.styles.Label.Render(label))
		sb.WriteString(value)
		sb.WriteString("\n")
	}
	field("short name", res.ShortName)
	field("type", res.Type)
	field("wavebands", strings.Join(res.Wavebands, ", "))
	field("reference", res.ReferenceURL)
	if !res.Updated.IsZero() {
		field("updated", res.Updated.Format("2006-01-02"))
	}

	if res.Description != "" {
		sb.WriteString("\n")
		sb.WriteString(b.styles.Detail.Render(wrap(res.Description, b.wrapWidth())))
		sb.WriteString("\n")
	}

	if len(res.Capabilities) > 0 {
		sb.WriteString("\n")
		sb.WriteString(b.styles.Title.Render("Capabilities"))
		sb.WriteString("\n")
		for _, capability := range res.Capabilities {
			sb.WriteString(fmt.Sprintf("  [%d] %s\n", capability.Index, capability.StandardID))
			for _, intf := range capability.Interfaces {
				marker := b.styles.Muted.Render("·")
				if intf.IsStandard() {
					marker = b.styles.Standard.Render("*")
				}
				sb.WriteString(fmt.Sprintf("    %s %s\n", marker, intf.AccessURL))
			}
		}
	}

	if len(res.Subjects) > 0 {
		sb.WriteString("\n")
		sb.WriteString(b.styles.Label.Render("subjects"))
		sb.WriteString(strings.Join(res.Subjects, ", "))
		sb.WriteString("\n")
	}

	if len(res.Relationships) > 0 {
		sb.WriteString("\n")
		sb.WriteString(b.styles.Title.Render("Related"))
		sb.WriteString("\n")
		for _, rel := range res.Relationships {
			sb.WriteString(fmt.Sprintf("  %-14s %s\n", rel.Type, rel.RelatedIVOID))
		}
	}

	sb.WriteString("\n")
	sb.WriteString(b.styles.Footer.Render("esc back · q back · ctrl+c quit"))
	return sb.String()
}

func (b Browser) columns() []table.Column {
	titleWidth := b.width - ivoidColWidth - servicesColWidth - 6
	if titleWidth < 20 {
		titleWidth = 20
	}
	return []table.Column{
		{Title: "IVOID", Width: ivoidColWidth},
		{Title: "Title", Width: titleWidth},
		{Title: "Services", Width: servicesColWidth},
	}
}

func (b Browser) rows() []table.Row {
	rows := make([]table.Row, 0, len(b.resources))
	for _, res := range b.resources {
		rows = append(rows, table.Row{
			res.IVOID,
			res.Title,
			capabilitySummary(res),
		})
	}
	return rows
}

// tableHeight leaves room for the header and footer chrome.
func (b Browser) tableHeight() int {
	h := b.height - 6
	if h < 3 {
		h = 3
	}
	return h
}

func (b Browser) wrapWidth() int {
	w := b.width - 8
	if w > 76 {
		w = 76
	}
	if w < 20 {
		w = 20
	}
	return w
}

// capabilitySummary collapses a record's capabilities to the standard
// names they implement: "tap conesearch". Standards outside the
// ivo://ivoa.net/std/ tree keep their full identifier.
func capabilitySummary(res regtap.Resource) string {
	seen := make(map[string]struct{})
	var names []string
	for _, capability := range res.Capabilities {
		name := standardName(capability.StandardID)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return strings.Join(names, " ")
}

func standardName(standardID string) string {
	id := strings.ToLower(strings.TrimSpace(standardID))
	if id == "" {
		return ""
	}
	if i := strings.IndexByte(id, '#'); i >= 0 {
		id = id[:i]
	}
	const std = "ivo://ivoa.net/std/"
	if rest, ok := strings.CutPrefix(id, std); ok {
		return rest
	}
	return id
}

// wrap folds s at word boundaries into lines of at most width runes.
func wrap(s string, width int) string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}

	var sb strings.Builder
	lineLen := 0
	for i, word := range words {
		switch {
		case i == 0:
			lineLen = len(word)
		case lineLen+1+len(word) > width:
			sb.WriteString("\n")
			lineLen = len(word)
		default:
			sb.WriteString(" ")
			lineLen += 1 + len(word)
		}
		sb.WriteString(word)
	}
	return sb.String()
}
