// Package app implements the docbrowse terminal UI: pick a connection
// profile, enter a document table, page through its documents, and inspect
// one document at a time.
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/bit-badger/BitBadger.Documents-sub001/internal/config"
	"github.com/bit-badger/BitBadger.Documents-sub001/internal/jsonview"
	"github.com/bit-badger/BitBadger.Documents-sub001/internal/profiles"
)

// screen identifies which view the app is showing
type screen int

const (
	screenProfiles screen = iota
	screenProfileForm
	screenTable
	screenList
	screenDetail
)

// form field indexes for the profile form
const (
	formName = iota
	formDriver
	formDSN
	formUser
	formPassword
	formFieldCount
)

// connectedMsg is sent when a connection attempt finishes
type connectedMsg struct {
	store docStore
	err   error
}

// pageLoadedMsg is sent when a page of documents is loaded
type pageLoadedMsg struct {
	docs   []string
	total  int64
	offset int
	err    error
}

// statusClearMsg clears the transient status line
type statusClearMsg struct{}

// App is the main application model
type App struct {
	config   *config.Config
	log      zerolog.Logger
	profiles *profiles.Manager

	screen screen
	width  int
	height int

	// Profile picker
	profileList []profiles.Profile
	selected    int

	// Profile form
	formInputs []textinput.Model
	formFocus  int

	// Connection
	store   docStore
	profile profiles.Profile

	// Table entry
	tableInput textinput.Model

	// Document list
	table     string
	docs      []string
	docCursor int
	offset    int
	total     int64
	loading   bool

	// Document detail
	detail viewport.Model

	status  string
	lastErr string
}

// New creates the application model
func New(cfg *config.Config, manager *profiles.Manager, log zerolog.Logger) *App {
	tableInput := textinput.New()
	tableInput.Placeholder = "table name (e.g. customers)"
	tableInput.CharLimit = 128

	a := &App{
		config:     cfg,
		log:        log,
		profiles:   manager,
		screen:     screenProfiles,
		tableInput: tableInput,
		detail:     viewport.New(80, 24),
	}
	a.reloadProfiles()
	return a
}

func (a *App) reloadProfiles() {
	a.profileList = a.profiles.All()
	if a.selected >= len(a.profileList) {
		a.selected = 0
	}
}

func (a *App) newFormInputs() []textinput.Model {
	inputs := make([]textinput.Model, formFieldCount)
	labels := []string{"name", "postgres or sqlite", "connection string or file path", "user (optional)", "password (optional)"}
	for i := range inputs {
		ti := textinput.New()
		ti.Placeholder = labels[i]
		ti.CharLimit = 256
		inputs[i] = ti
	}
	inputs[formPassword].EchoMode = textinput.EchoPassword
	inputs[formName].Focus()
	return inputs
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.detail.Width = msg.Width - 4
		a.detail.Height = msg.Height - 6
		return a, nil

	case connectedMsg:
		a.loading = false
		if msg.err != nil {
			a.lastErr = msg.err.Error()
			a.log.Error().Err(msg.err).Str("profile", a.profile.Name).Msg("connection failed")
			return a, nil
		}
		a.store = msg.store
		a.lastErr = ""
		a.log.Info().Str("profile", a.profile.Name).Str("driver", a.profile.Driver).Msg("connected")
		if err := a.profiles.Touch(a.profile.Name); err != nil {
			a.log.Warn().Err(err).Msg("failed to record profile use")
		}
		a.screen = screenTable
		a.tableInput.SetValue("")
		return a, a.tableInput.Focus()

	case pageLoadedMsg:
		a.loading = false
		if msg.err != nil {
			a.lastErr = msg.err.Error()
			a.log.Error().Err(msg.err).Str("table", a.table).Msg("page load failed")
			return a, nil
		}
		a.docs = msg.docs
		a.total = msg.total
		a.offset = msg.offset
		a.docCursor = 0
		a.lastErr = ""
		a.screen = screenList
		return a, nil

	case statusClearMsg:
		a.status = ""
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a.quit()
	}

	switch a.screen {
	case screenProfiles:
		return a.updateProfiles(msg)
	case screenProfileForm:
		return a.updateProfileForm(msg)
	case screenTable:
		return a.updateTable(msg)
	case screenList:
		return a.updateList(msg)
	case screenDetail:
		return a.updateDetail(msg)
	}
	return a, nil
}

func (a *App) quit() (tea.Model, tea.Cmd) {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("error closing store")
		}
	}
	return a, tea.Quit
}

func (a *App) updateProfiles(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return a.quit()
	case "up", "k":
		if a.selected > 0 {
			a.selected--
		}
	case "down", "j":
		if a.selected < len(a.profileList)-1 {
			a.selected++
		}
	case "n":
		a.formInputs = a.newFormInputs()
		a.formFocus = 0
		a.screen = screenProfileForm
		return a, textinput.Blink
	case "d":
		if len(a.profileList) > 0 {
			name := a.profileList[a.selected].Name
			if err := a.profiles.Delete(name); err != nil {
				a.lastErr = err.Error()
			} else {
				a.log.Info().Str("profile", name).Msg("profile deleted")
				a.reloadProfiles()
			}
		}
	case "enter":
		if len(a.profileList) > 0 {
			a.profile = a.profileList[a.selected]
			a.loading = true
			a.lastErr = ""
			return a, a.connectCmd(a.profile)
		}
	}
	return a, nil
}

func (a *App) updateProfileForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.screen = screenProfiles
		return a, nil
	case "tab", "down":
		a.formInputs[a.formFocus].Blur()
		a.formFocus = (a.formFocus + 1) % formFieldCount
		return a, a.formInputs[a.formFocus].Focus()
	case "shift+tab", "up":
		a.formInputs[a.formFocus].Blur()
		a.formFocus = (a.formFocus + formFieldCount - 1) % formFieldCount
		return a, a.formInputs[a.formFocus].Focus()
	case "enter":
		profile := profiles.Profile{
			Name:    strings.TrimSpace(a.formInputs[formName].Value()),
			Driver:  strings.TrimSpace(a.formInputs[formDriver].Value()),
			DSN:     strings.TrimSpace(a.formInputs[formDSN].Value()),
			User:    strings.TrimSpace(a.formInputs[formUser].Value()),
			IDField: a.config.Store.IDField,
		}
		if profile.Name == "" || profile.Driver == "" || profile.DSN == "" {
			a.lastErr = "name, driver, and connection string are required"
			return a, nil
		}
		if profile.Driver != "postgres" && profile.Driver != "sqlite" {
			a.lastErr = "driver must be postgres or sqlite"
			return a, nil
		}
		if _, err := a.profiles.Add(profile, a.formInputs[formPassword].Value()); err != nil {
			a.lastErr = err.Error()
			return a, nil
		}
		a.log.Info().Str("profile", profile.Name).Msg("profile saved")
		a.lastErr = ""
		a.reloadProfiles()
		a.screen = screenProfiles
		return a, nil
	}

	var cmd tea.Cmd
	a.formInputs[a.formFocus], cmd = a.formInputs[a.formFocus].Update(msg)
	return a, cmd
}

func (a *App) updateTable(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.disconnect()
		a.screen = screenProfiles
		return a, nil
	case "enter":
		table := strings.TrimSpace(a.tableInput.Value())
		if table == "" {
			return a, nil
		}
		a.table = table
		a.loading = true
		return a, a.loadPageCmd(0)
	}

	var cmd tea.Cmd
	a.tableInput, cmd = a.tableInput.Update(msg)
	return a, cmd
}

func (a *App) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	limit := a.pageSize()
	switch msg.String() {
	case "esc":
		a.screen = screenTable
		return a, a.tableInput.Focus()
	case "q":
		return a.quit()
	case "up", "k":
		if a.docCursor > 0 {
			a.docCursor--
		}
	case "down", "j":
		if a.docCursor < len(a.docs)-1 {
			a.docCursor++
		}
	case "left", "h":
		if a.offset > 0 {
			a.loading = true
			next := a.offset - limit
			if next < 0 {
				next = 0
			}
			return a, a.loadPageCmd(next)
		}
	case "right", "l":
		if int64(a.offset+limit) < a.total {
			a.loading = true
			return a, a.loadPageCmd(a.offset + limit)
		}
	case "r":
		a.loading = true
		return a, a.loadPageCmd(a.offset)
	case "enter":
		if len(a.docs) > 0 {
			return a, a.openDetail(a.docs[a.docCursor])
		}
	}
	return a, nil
}

func (a *App) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		a.screen = screenList
		return a, nil
	case "c":
		if len(a.docs) > 0 {
			if err := clipboard.WriteAll(a.docs[a.docCursor]); err != nil {
				a.lastErr = fmt.Sprintf("copy failed: %v", err)
				return a, nil
			}
			return a, a.flashStatus("copied to clipboard")
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.detail, cmd = a.detail.Update(msg)
	return a, cmd
}

func (a *App) openDetail(doc string) tea.Cmd {
	content := doc
	if a.config.UI.FormatDocuments {
		if formatted, err := jsonview.Format(doc); err == nil {
			content = formatted
		}
	}
	a.detail.SetContent(content)
	a.detail.GotoTop()
	a.screen = screenDetail
	return nil
}

func (a *App) disconnect() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("error closing store")
		}
		a.store = nil
	}
}

func (a *App) pageSize() int {
	if a.config.General.DefaultLimit > 0 {
		return a.config.General.DefaultLimit
	}
	return 100
}

func (a *App) queryTimeout() time.Duration {
	if a.config.Store.QueryTimeout > 0 {
		return time.Duration(a.config.Store.QueryTimeout) * time.Millisecond
	}
	return 30 * time.Second
}

// connectCmd opens the store for a profile off the UI goroutine
func (a *App) connectCmd(profile profiles.Profile) tea.Cmd {
	timeout := time.Duration(a.config.Store.ConnectTimeout) * time.Millisecond
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		store, err := OpenStore(ctx, profile.Driver, profile.DSN, profile.IDField)
		if err != nil {
			return connectedMsg{err: err}
		}
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return connectedMsg{err: err}
		}
		return connectedMsg{store: store}
	}
}

// loadPageCmd fetches one page of documents and the table total
func (a *App) loadPageCmd(offset int) tea.Cmd {
	store, table, limit, timeout := a.store, a.table, a.pageSize(), a.queryTimeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		total, err := store.Count(ctx, table)
		if err != nil {
			return pageLoadedMsg{err: err}
		}
		docs, err := store.List(ctx, table, limit, offset)
		if err != nil {
			return pageLoadedMsg{err: err}
		}
		return pageLoadedMsg{docs: docs, total: total, offset: offset}
	}
}

func (a *App) flashStatus(text string) tea.Cmd {
	a.status = text
	return tea.Tick(2*time.Second, func(time.Time) tea.Msg {
		return statusClearMsg{}
	})
}
