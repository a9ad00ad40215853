package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bit-badger/BitBadger.Documents-sub001/internal/jsonview"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))
)

// View implements tea.Model
func (a *App) View() string {
	var body string
	switch a.screen {
	case screenProfiles:
		body = a.viewProfiles()
	case screenProfileForm:
		body = a.viewProfileForm()
	case screenTable:
		body = a.viewTable()
	case screenList:
		body = a.viewList()
	case screenDetail:
		body = a.viewDetail()
	}

	footer := ""
	if a.lastErr != "" {
		footer = errorStyle.Render("Error: " + a.lastErr)
	} else if a.status != "" {
		footer = statusStyle.Render(a.status)
	} else if a.loading {
		footer = dimStyle.Render("Loading...")
	}

	if footer != "" {
		return body + "\n" + footer
	}
	return body
}

func (a *App) viewProfiles() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("docbrowse - connection profiles"))
	b.WriteString("\n\n")

	if len(a.profileList) == 0 {
		b.WriteString(dimStyle.Render("No profiles yet. Press n to create one."))
		b.WriteString("\n")
	}

	for i, profile := range a.profileList {
		if i == a.selected {
			b.WriteString(selectedStyle.Render(fmt.Sprintf("> %s  %s  %s", profile.Name, profile.Driver, profile.DSN)))
		} else {
			b.WriteString(fmt.Sprintf("  %s  %s  %s", profile.Name, dimStyle.Render(profile.Driver), dimStyle.Render(profile.DSN)))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("enter: connect  n: new  d: delete  q: quit"))
	return b.String()
}

func (a *App) viewProfileForm() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("New profile"))
	b.WriteString("\n\n")

	labels := []string{"Name", "Driver", "DSN", "User", "Password"}
	for i, input := range a.formInputs {
		marker := "  "
		if i == a.formFocus {
			marker = "> "
		}
		b.WriteString(fmt.Sprintf("%s%-9s %s\n", marker, labels[i], input.View()))
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("tab: next field  enter: save  esc: cancel"))
	return b.String()
}

func (a *App) viewTable() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Connected: %s (%s)", a.profile.Name, a.profile.Driver)))
	b.WriteString("\n\n")
	b.WriteString("Document table: ")
	b.WriteString(a.tableInput.View())
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("enter: browse  esc: disconnect"))
	return b.String()
}

func (a *App) viewList() string {
	var b strings.Builder
	pageStart := a.offset + 1
	pageEnd := a.offset + len(a.docs)
	if len(a.docs) == 0 {
		pageStart = 0
	}
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s - %d-%d of %d", a.table, pageStart, pageEnd, a.total)))
	b.WriteString("\n\n")

	if len(a.docs) == 0 {
		b.WriteString(dimStyle.Render("No documents."))
		b.WriteString("\n")
	}

	width := a.width - 4
	if width < 20 {
		width = 76
	}
	for i, doc := range a.docs {
		row := doc
		if compact, err := jsonview.Compact(doc); err == nil {
			row = compact
		}
		row = jsonview.Truncate(row, width)
		if i == a.docCursor {
			b.WriteString(selectedStyle.Render("> " + row))
		} else {
			b.WriteString("  " + row)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("enter: view  h/l: page  r: reload  esc: back  q: quit"))
	return b.String()
}

func (a *App) viewDetail() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s - document %d", a.table, a.offset+a.docCursor+1)))
	b.WriteString("\n")
	b.WriteString(a.detail.View())
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("c: copy JSON  esc: back"))
	return b.String()
}
