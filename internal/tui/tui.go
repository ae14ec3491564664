// Package tui provides a Bubble Tea terminal user interface for rlmaps-downloader.
package tui

import (
	"context"
	"fmt"
	"image"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/openrl/rlmaps-downloader/internal/config"
	internalhttp "github.com/openrl/rlmaps-downloader/internal/http"
	"github.com/openrl/rlmaps-downloader/internal/install"
	ioutils "github.com/openrl/rlmaps-downloader/internal/io"
	"github.com/openrl/rlmaps-downloader/internal/model"
	"github.com/openrl/rlmaps-downloader/internal/preview"
	"github.com/openrl/rlmaps-downloader/internal/rlmaps"
	"github.com/openrl/rlmaps-downloader/internal/workshop"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	mapStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F8B500"))

	detailStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#6C757D")).
			Padding(0, 1)
)

const (
	// visibleResults is the number of result rows shown at once.
	visibleResults = 10

	// Thumbnail bounds in pixels. One terminal row renders two pixel
	// rows, so 28x28 pixels fit in a 28x14 cell block.
	thumbWidth  = 28
	thumbHeight = 28
)

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateBrowsing
	StateDownloading
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   model.ProgressLevel
}

// eventBuffer collects progress events from background goroutines so
// the update loop can drain them on its own tick.
type eventBuffer struct {
	mu     sync.Mutex
	events []model.ProgressEvent
}

func newEventBuffer() *eventBuffer {
	return &eventBuffer{}
}

func (b *eventBuffer) Add(event model.ProgressEvent) {
	b.mu.Lock()
	b.events = append(b.events, event)
	b.mu.Unlock()
}

func (b *eventBuffer) Drain() []model.ProgressEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	events := b.events
	b.events = nil
	return events
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	logs      []LogEntry
	err       error

	// Search pipeline
	browser *workshop.Browser
	store   *model.Store
	events  *eventBuffer

	// Install pipeline
	installer *install.Installer
	job       *install.Job

	// Thumbnail rendering
	images    *ioutils.ImageService
	thumb     string
	thumbPath string

	// Rendered snapshot of the store
	results      []model.MapResult
	storeVersion uint64

	keyword      string
	page         int
	selected     int
	releaseIndex int

	// Download context
	ctx    context.Context
	cancel context.CancelFunc

	verbose bool

	width  int
	height int
}

// NewModel creates a new TUI model wired to the given settings.
func NewModel(settings *config.Settings) Model {
	ti := textinput.New()
	ti.Placeholder = "flip reset"
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 40

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	events := newEventBuffer()
	httpClient := internalhttp.NewClient(settings.RequestTimeout(), settings.CatalogRequestsPerSecond)
	catalog := rlmaps.NewClient(httpClient, settings.CatalogBaseURL)
	store := model.NewStore()
	previews := preview.NewCache(httpClient, store, settings.PreviewCachePath, events.Add)
	browser := workshop.NewBrowser(catalog, previews, store, events.Add)
	installer := install.NewInstaller(httpClient, install.CommandExtractor{}, install.SystemClock(), settings.PollAttempts(), events.Add)

	return Model{
		state:     StateInput,
		textInput: ti,
		spinner:   sp,
		progress:  prog,
		settings:  settings,
		logs:      make([]LogEntry, 0),
		browser:   browser,
		store:     store,
		events:    events,
		installer: installer,
		images:    ioutils.NewImageService(),
		page:      1,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// DownloadDoneMsg is sent when the install pipeline finishes.
	DownloadDoneMsg struct {
		Err error
	}

	// ThumbnailMsg carries a rendered preview thumbnail.
	ThumbnailMsg struct {
		Path string
		View string
	}

	// TickMsg drives store polling and progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 20
		if m.progress.Width > 80 {
			m.progress.Width = 80
		}
		if m.progress.Width < 20 {
			m.progress.Width = 20
		}
		return m, nil

	case tea.KeyMsg:
		next, cmd, handled := m.handleKey(msg)
		if handled {
			return next, cmd
		}
		m = next

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case TickMsg:
		cmds = append(cmds, m.onTick()...)

	case DownloadDoneMsg:
		if m.ctx.Err() != nil {
			m.state = StateError
			m.err = fmt.Errorf("cancelled by user")
		} else if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
		} else {
			m.state = StateComplete
		}

	case ThumbnailMsg:
		// Drop renders for a preview the selection has moved past.
		if msg.Path == m.thumbPath {
			m.thumb = msg.View
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	// Update text input
	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// handleKey processes one key press. The third return value reports
// whether the key was consumed; unconsumed keys fall through to the
// text input.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c":
		m.browser.StopSearch()
		m.cancel()
		return m, tea.Quit, true

	case "esc":
		switch m.state {
		case StateInput:
			return m, tea.Quit, true
		case StateBrowsing:
			if m.browser.Searching() {
				m.browser.StopSearch()
				m.results = nil
				m.storeVersion = m.store.Version()
			} else {
				m.state = StateInput
				m.textInput.Focus()
			}
			return m, nil, true
		case StateDownloading:
			m.cancel()
			return m, nil, true
		}
		return m, nil, true

	case "enter":
		if m.state == StateInput && m.textInput.Value() != "" {
			m.keyword = m.textInput.Value()
			m.page = 1
			return m.startSearch()
		}
		if m.state == StateBrowsing {
			return m.startDownload()
		}

	case "up", "k":
		if m.state == StateBrowsing && m.selected > 0 {
			m.selected--
			m.onSelectionChanged()
			return m, nil, true
		}

	case "down", "j":
		if m.state == StateBrowsing && m.selected < len(m.results)-1 {
			m.selected++
			m.onSelectionChanged()
			return m, nil, true
		}

	case "tab":
		if m.state == StateBrowsing {
			if result, ok := m.selectedResult(); ok && len(result.Releases) > 0 {
				m.releaseIndex = (m.releaseIndex + 1) % len(result.Releases)
			}
			return m, nil, true
		}

	case "[":
		if m.state == StateBrowsing && !m.browser.Searching() && m.page > 1 {
			m.page--
			next, cmd, _ := m.startSearch()
			return next, cmd, true
		}

	case "]":
		if m.state == StateBrowsing && !m.browser.Searching() {
			m.page++
			next, cmd, _ := m.startSearch()
			return next, cmd, true
		}

	case "v":
		if m.state == StateBrowsing {
			m.verbose = !m.verbose
			return m, nil, true
		}

	case "s":
		if m.state == StateBrowsing && !m.browser.Searching() {
			m.state = StateInput
			m.textInput.Focus()
			return m, nil, true
		}

	case "c":
		if m.state == StateError {
			m.installer.ClearFolderError()
			return m, nil, true
		}

	case "b":
		if m.state == StateComplete || m.state == StateError {
			m.resetDownload()
			m.state = StateBrowsing
			return m, m.tick(), true
		}

	case "r":
		if m.state == StateComplete || m.state == StateError {
			m.resetDownload()
			m.state = StateInput
			m.textInput.SetValue("")
			m.textInput.Focus()
			return m, nil, true
		}

	case "q":
		if m.state == StateComplete || m.state == StateError {
			m.browser.StopSearch()
			m.cancel()
			return m, tea.Quit, true
		}
	}

	return m, nil, false
}

// startSearch kicks off a catalog search for the current keyword and
// page and moves to the browsing state.
func (m Model) startSearch() (Model, tea.Cmd, bool) {
	alreadyBrowsing := m.state == StateBrowsing

	if err := m.browser.StartSearch(m.keyword, m.page); err != nil {
		// The browser reports the rejection through the event stream.
		return m, nil, true
	}

	m.state = StateBrowsing
	m.results = nil
	m.selected = 0
	m.releaseIndex = 0
	m.thumb = ""
	m.thumbPath = ""
	m.storeVersion = m.store.Version()

	cmds := []tea.Cmd{m.spinner.Tick}
	if !alreadyBrowsing {
		// The browsing tick loop is not running yet.
		cmds = append(cmds, m.tick())
	}
	return m, tea.Batch(cmds...), true
}

// startDownload launches the install pipeline for the selected map
// and release.
func (m Model) startDownload() (Model, tea.Cmd, bool) {
	result, ok := m.selectedResult()
	if !ok {
		return m, nil, true
	}

	if m.installer.Active() {
		m.logs = m.appendLog(m.logs, LogEntry{
			Message: "A download is already running",
			Level:   model.LevelWarning,
		})
		return m, nil, true
	}

	release, ok := m.selectedRelease(result)
	if !ok {
		m.logs = m.appendLog(m.logs, LogEntry{
			Message: fmt.Sprintf("No download available for %s", result.Name),
			Level:   model.LevelWarning,
		})
		return m, nil, true
	}

	job := install.NewJob(m.settings.MapsFolderPath, result, release)
	m.job = job
	m.state = StateDownloading
	return m, tea.Batch(m.runInstall(job), m.spinner.Tick), true
}

// runInstall runs one install job in the background.
func (m Model) runInstall(job *install.Job) tea.Cmd {
	installer := m.installer
	ctx := m.ctx
	return func() tea.Msg {
		return DownloadDoneMsg{Err: installer.Run(ctx, job)}
	}
}

// onTick drains progress events, refreshes the result snapshot when
// the store version advanced, and re-arms the tick while a state that
// needs polling is active.
func (m *Model) onTick() []tea.Cmd {
	var cmds []tea.Cmd

	for _, event := range m.events.Drain() {
		if event.Level == model.LevelVerbose && !m.verbose {
			continue
		}
		m.logs = m.appendLog(m.logs, LogEntry{Message: event.Message, Level: event.Level})
	}

	if m.state == StateBrowsing {
		if version := m.store.Version(); version != m.storeVersion {
			m.storeVersion = version
			m.results = m.store.Snapshot()
			if m.selected >= len(m.results) {
				m.selected = 0
				m.releaseIndex = 0
			}
		}
		if cmd := m.refreshThumbnail(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	if m.state == StateDownloading && m.job != nil {
		received, total := m.job.Progress()
		var percent float64
		if total > 0 {
			percent = float64(received) / float64(total)
		}
		cmds = append(cmds, m.progress.SetPercent(percent))
	}

	if m.state == StateBrowsing || m.state == StateDownloading {
		cmds = append(cmds, m.tick())
	}
	return cmds
}

// onSelectionChanged resets per-selection view state.
func (m *Model) onSelectionChanged() {
	m.releaseIndex = 0
	m.thumb = ""
	m.thumbPath = ""
}

// refreshThumbnail dispatches a thumbnail render when the selected
// map has a cached preview that is not rendered yet.
func (m *Model) refreshThumbnail() tea.Cmd {
	result, ok := m.selectedResult()
	if !ok || result.ImagePath == "" || result.ImagePath == m.thumbPath {
		return nil
	}
	m.thumbPath = result.ImagePath
	m.thumb = ""
	return m.loadThumbnail(result.ImagePath)
}

// loadThumbnail reads, scales and renders a preview image off the
// update loop.
func (m Model) loadThumbnail(path string) tea.Cmd {
	images := m.images
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return ThumbnailMsg{Path: path}
		}
		img, err := images.Thumbnail(context.Background(), data, thumbWidth, thumbHeight)
		if err != nil {
			return ThumbnailMsg{Path: path}
		}
		return ThumbnailMsg{Path: path, View: renderThumbnail(img)}
	}
}

// resetDownload clears the finished job and restores a usable context
// after a cancellation.
func (m *Model) resetDownload() {
	m.job = nil
	m.err = nil
	if m.ctx.Err() != nil {
		m.ctx, m.cancel = context.WithCancel(context.Background())
	}
}

// selectedResult returns the map under the cursor.
func (m Model) selectedResult() (model.MapResult, bool) {
	if m.selected < 0 || m.selected >= len(m.results) {
		return model.MapResult{}, false
	}
	return m.results[m.selected], true
}

// selectedRelease returns the release chosen in the detail pane,
// falling back to the first release carrying a download link.
func (m Model) selectedRelease(result model.MapResult) (model.Release, bool) {
	if m.releaseIndex >= 0 && m.releaseIndex < len(result.Releases) {
		if result.Releases[m.releaseIndex].DownloadURL != "" {
			return result.Releases[m.releaseIndex], true
		}
	}
	for _, release := range result.Releases {
		if release.DownloadURL != "" {
			return release, true
		}
	}
	return model.Release{}, false
}

// appendLog appends one entry, keeping only the most recent ten.
func (m Model) appendLog(logs []LogEntry, entry LogEntry) []LogEntry {
	logs = append(logs, entry)
	if len(logs) > 10 {
		logs = logs[len(logs)-10:]
	}
	return logs
}

// tick returns a command for the periodic store/progress poll.
func (m Model) tick() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("🗺  RL Maps Downloader"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Search and install community maps"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateBrowsing:
		b.WriteString(m.viewBrowsing())
	case StateDownloading:
		b.WriteString(m.viewDownloading())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Search the map catalog:"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Maps folder: %s", m.settings.MapsFolderPath)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewBrowsing() string {
	var b strings.Builder

	if m.browser.Searching() {
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(subtitleStyle.Render(fmt.Sprintf("Searching for %q...", m.keyword)))
	} else {
		b.WriteString(subtitleStyle.Render(fmt.Sprintf(
			"%d of %d maps for %q",
			len(m.results), m.store.TotalFound(), m.keyword,
		)))
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("  page %d", m.page)))
	b.WriteString("\n\n")

	if len(m.results) == 0 {
		if !m.browser.Searching() {
			b.WriteString(dimStyle.Render("No results."))
			b.WriteString("\n")
		}
	} else {
		list := m.renderResultList()
		detail := detailStyle.Render(m.renderDetail())
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, list, " ", detail))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

// renderResultList renders a scrolling window of results around the
// cursor.
func (m Model) renderResultList() string {
	var b strings.Builder

	start := 0
	if m.selected >= visibleResults {
		start = m.selected - visibleResults + 1
	}
	end := start + visibleResults
	if end > len(m.results) {
		end = len(m.results)
	}

	for i := start; i < end; i++ {
		result := m.results[i]

		if i == m.selected {
			b.WriteString(selectedStyle.Render("> "))
			b.WriteString(selectedStyle.Render(result.Name))
			if result.Author != "" {
				b.WriteString(dimStyle.Render(" by " + result.Author))
			}
		} else {
			b.WriteString("  ")
			b.WriteString(mapStyle.Render(result.Name))
			if result.Author != "" {
				b.WriteString(dimStyle.Render(" by " + result.Author))
			}
		}
		b.WriteString("\n")
	}

	if end < len(m.results) {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  ... %d more", len(m.results)-end)))
		b.WriteString("\n")
	}

	return b.String()
}

// renderDetail renders the pane for the selected map: metadata,
// releases and the preview thumbnail.
func (m Model) renderDetail() string {
	result, ok := m.selectedResult()
	if !ok {
		return dimStyle.Render("nothing selected")
	}

	var b strings.Builder

	b.WriteString(mapStyle.Render(result.Name))
	b.WriteString("\n")
	if result.Author != "" {
		b.WriteString(dimStyle.Render("by " + result.Author))
		b.WriteString("\n")
	}
	if result.Size != "" {
		b.WriteString(dimStyle.Render("size: " + result.Size))
		b.WriteString("\n")
	}
	if result.Description != "" {
		b.WriteString(truncate(result.Description, 120))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if len(result.Releases) == 0 {
		b.WriteString(dimStyle.Render("fetching releases..."))
		b.WriteString("\n")
	} else {
		b.WriteString(infoStyle.Render("Releases:"))
		b.WriteString("\n")
		for i, release := range result.Releases {
			marker := "  "
			if i == m.releaseIndex {
				marker = "* "
			}
			name := release.Name
			if name == "" {
				name = release.Tag
			}
			b.WriteString(marker + name)
			if release.DownloadURL == "" {
				b.WriteString(dimStyle.Render(" (no file)"))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	switch {
	case m.thumb != "":
		b.WriteString(m.thumb)
	case result.PreviewDownloading:
		b.WriteString(m.spinner.View())
		b.WriteString(dimStyle.Render(" fetching preview..."))
		b.WriteString("\n")
	case result.ImagePath != "":
		b.WriteString(dimStyle.Render("rendering preview..."))
		b.WriteString("\n")
	default:
		b.WriteString(dimStyle.Render("no preview"))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) viewDownloading() string {
	var b strings.Builder

	if m.job != nil {
		b.WriteString(mapStyle.Render(fmt.Sprintf("Installing %s", m.job.Map.Name)))
		if m.job.Release.Name != "" {
			b.WriteString(dimStyle.Render(fmt.Sprintf(" (%s)", m.job.Release.Name)))
		}
		b.WriteString("\n\n")

		received, total := m.job.Progress()
		if total > 0 {
			b.WriteString(m.progress.ViewAs(float64(received) / float64(total)))
			b.WriteString("\n")
			b.WriteString(infoStyle.Render(fmt.Sprintf(
				"%.2f / %.2f MB",
				float64(received)/1024/1024,
				float64(total)/1024/1024,
			)))
		} else {
			b.WriteString(m.spinner.View())
			b.WriteString(infoStyle.Render(fmt.Sprintf(" %.2f MB", float64(received)/1024/1024)))
		}
		b.WriteString("\n")
		b.WriteString(subtitleStyle.Render(stateLabel(m.job.State())))
		b.WriteString("\n\n")
	}

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	name := ""
	folder := ""
	if m.job != nil {
		name = m.job.Map.Name
		folder = m.job.Folder
	}

	box := boxStyle.Render(fmt.Sprintf(
		"✨ Map installed!\n\n"+
			"Map: %s\n"+
			"Folder: %s",
		name,
		folder,
	))
	b.WriteString(box)

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("❌ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
		b.WriteString("\n")
	}

	if flag, message := m.installer.FolderError(); flag {
		b.WriteString("\n")
		b.WriteString(warningStyle.Render("  " + message))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("  press c to clear the folder error"))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case model.LevelError:
			style = errorStyle
			prefix = "✗"
		case model.LevelWarning:
			style = warningStyle
			prefix = "!"
		case model.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case model.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: search • esc: quit"
	case StateBrowsing:
		if m.browser.Searching() {
			return "↑/↓: select • esc: stop search • ctrl+c: quit"
		}
		return "↑/↓: select • tab: release • enter: install • [/]: page • s: new search • v: verbose • esc: back"
	case StateDownloading:
		return "esc: cancel"
	case StateComplete, StateError:
		return "b: back to results • r: new search • q: quit"
	}
	return ""
}

// stateLabel maps a pipeline state to a short status line.
func stateLabel(state model.DownloadState) string {
	switch state {
	case model.StateDirectoryCreating:
		return "Preparing map folder..."
	case model.StateTransferring:
		return "Downloading archive..."
	case model.StateExtracting:
		return "Extracting archive..."
	case model.StatePollingForPayload:
		return "Waiting for the map payload..."
	case model.StateRenaming:
		return "Installing payload..."
	case model.StateDone:
		return "Done"
	case model.StateFolderError:
		return "Folder error"
	case model.StateNetworkError:
		return "Network error"
	case model.StateTimeout:
		return "Timed out waiting for the payload"
	default:
		return ""
	}
}

// renderThumbnail converts a small image to colored half-block cells.
// Each cell shows two vertically stacked pixels: the upper one as the
// foreground of "▀", the lower one as its background.
func renderThumbnail(img image.Image) string {
	bounds := img.Bounds()
	var b strings.Builder

	for y := bounds.Min.Y; y < bounds.Max.Y; y += 2 {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(hexColor(img, x, y)))
			if y+1 < bounds.Max.Y {
				style = style.Background(lipgloss.Color(hexColor(img, x, y+1)))
			}
			b.WriteString(style.Render("▀"))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func hexColor(img image.Image, x, y int) string {
	r, g, b, _ := img.At(x, y).RGBA()
	return fmt.Sprintf("#%02x%02x%02x", uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// Run starts the TUI application.
func Run(settings *config.Settings) error {
	p := tea.NewProgram(NewModel(settings), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
