package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/muesli/reflow/wordwrap"

	"github.com/letser/plotplay/internal/session"
	"github.com/letser/plotplay/pkg/state"
)

const (
	AgentName       = "Engine"
	PlaceHolderText = "Type a command, or /help..."
)

// transcript entry roles
const (
	roleYou    = "you"
	roleEngine = "engine"
	roleError  = "error"
	roleInfo   = "info"
)

type entry struct {
	role string
	text string
}

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	manager *session.Manager

	sessionID uuid.UUID
	gameName  string
	snapshot  *state.Snapshot
	entries   []entry

	transcript viewport.Model
	meta       viewport.Model
	input      textarea.Model
	ready      bool
	width      int
	height     int
	err        error
	resolving  bool

	// Game selection state
	showGameModal bool
	gameIDs       []string
	gameNames     map[string]string
	selectedGame  int
	loadingGames  bool
	starting      bool

	// Quit confirmation state
	showQuitModal bool
}

type gamesLoadedMsg struct {
	ids   []string
	names map[string]string
	err   error
}

type sessionStartedMsg struct {
	id   uuid.UUID
	snap *state.Snapshot
	err  error
}

type turnResolvedMsg struct {
	outcome *state.Outcome
	err     error
}

type nodeEnteredMsg struct {
	node string
	err  error
}

type clipboardMsg struct {
	err error
}

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	engineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("236"))

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey
)

func NewConsoleUI(manager *session.Manager) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 200
	ta.SetWidth(50)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		manager:       manager,
		input:         ta,
		transcript:    chatVp,
		meta:          metaVp,
		ready:         false,
		showGameModal: true,
		loadingGames:  true,
		selectedGame:  0,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	if m.showGameModal {
		return m.loadGames()
	}
	return textarea.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle game modal first
	if m.showGameModal {
		return m.updateGameModal(msg)
	}

	// Handle quit modal second
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		// Pass mouse events to every component; each ignores events
		// outside its own bounds.
		m.transcript, vpCmd = m.transcript.Update(msg)
		m.input, tiCmd = m.input.Update(msg)
		m.meta, mvCmd = m.meta.Update(msg)
		return m, tea.Batch(tiCmd, vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.ready = true
		m.writeTranscript()
		m.writeMetadata()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			if m.resolving {
				return m, nil
			}
			input := strings.TrimSpace(m.input.Value())
			if input == "" {
				return m, nil
			}
			return m.handleInput(input)
		}

	case turnResolvedMsg:
		m.resolving = false
		if msg.err != nil {
			m.pushError(msg.err)
		} else {
			m.snapshot = msg.outcome.Snapshot
			m.entries = append(m.entries, entry{roleEngine, msg.outcome.Summary})
			if msg.outcome.Rejected > 0 {
				m.entries = append(m.entries, entry{roleInfo,
					fmt.Sprintf("%d of the requested changes were refused.", msg.outcome.Rejected)})
			}
			m.writeMetadata()
		}
		m.writeTranscript()

	case nodeEnteredMsg:
		m.resolving = false
		if msg.err != nil {
			m.pushError(msg.err)
		} else {
			m.entries = append(m.entries, entry{roleInfo,
				fmt.Sprintf("Entered node %s with a fresh visit budget.", msg.node)})
		}
		m.writeTranscript()

	case clipboardMsg:
		if msg.err != nil {
			m.pushError(msg.err)
		} else {
			m.entries = append(m.entries, entry{roleInfo, "Snapshot copied to the clipboard."})
		}
		m.writeTranscript()
	}

	// Update components for non-mouse events
	m.input, tiCmd = m.input.Update(msg)
	m.transcript, vpCmd = m.transcript.Update(msg)
	m.meta, mvCmd = m.meta.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

// layout recomputes component dimensions from the window size.
func (m *ConsoleUI) layout() {
	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	m.transcript.Width = chatWidth - 2
	m.transcript.Height = m.height - 8
	m.meta.Width = metaWidth - 2
	m.meta.Height = m.height - 4
	m.input.SetWidth(chatWidth - 4)
}

// handleInput routes one submitted line. Local commands are answered
// in place; everything else becomes an engine turn.
func (m ConsoleUI) handleInput(input string) (tea.Model, tea.Cmd) {
	m.input.Reset()

	if !strings.HasPrefix(input, "/") {
		m.entries = append(m.entries, entry{roleInfo, "Commands start with a slash. Try /help."})
		m.writeTranscript()
		return m, nil
	}

	fields := strings.Fields(input)
	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	switch cmd {
	case "/help":
		m.entries = append(m.entries, entry{roleInfo, helpText})
		m.writeTranscript()
		return m, nil

	case "/quit":
		m.showQuitModal = true
		return m, nil

	case "/new":
		m.showGameModal = true
		m.loadingGames = true
		m.err = nil
		return m, m.loadGames()

	case "/look":
		m.entries = append(m.entries, entry{roleEngine, describeSnapshot(m.snapshot)})
		m.writeTranscript()
		return m, nil

	case "/copy":
		return m, m.copySnapshot()

	case "/node":
		if len(args) != 1 {
			m.entries = append(m.entries, entry{roleError, "usage: /node <id>"})
			m.writeTranscript()
			return m, nil
		}
		m.resolving = true
		m.entries = append(m.entries, entry{roleYou, input})
		m.writeTranscript()
		return m, m.enterNode(args[0])
	}

	req, err := parseTurn(cmd, args)
	if err != nil {
		m.entries = append(m.entries, entry{roleError, err.Error()})
		m.writeTranscript()
		return m, nil
	}

	m.resolving = true
	m.entries = append(m.entries, entry{roleYou, input})
	m.writeTranscript()
	return m, m.runTurn(req)
}

func (m *ConsoleUI) pushError(err error) {
	text := err.Error()
	if errors.Is(err, session.ErrSessionBusy) {
		text = "The session is still resolving another action."
	}
	m.entries = append(m.entries, entry{roleError, text})
}

// writeTranscript rebuilds the transcript content at the current
// viewport width.
func (m *ConsoleUI) writeTranscript() {
	width := m.transcript.Width - 6
	if width < 20 {
		width = 20
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("PLOTPLAY") + "\n\n")
	content.WriteString("Structured commands drive the world. /help lists them.\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", width)) + "\n\n")

	for _, e := range m.entries {
		switch e.role {
		case roleYou:
			content.WriteString(userStyle.Render("You: ") + wordwrap.String(e.text, width-6) + "\n\n")
		case roleEngine:
			content.WriteString(engineStyle.Render(AgentName+": ") + wordwrap.String(e.text, width-10) + "\n\n")
		case roleError:
			content.WriteString(errorStyle.Render("Error: "+e.text) + "\n\n")
		case roleInfo:
			content.WriteString(promptStyle.Render(wordwrap.String(e.text, width)) + "\n\n")
		}
	}

	m.transcript.SetContent(content.String())
	m.transcript.GotoBottom()
}

// writeMetadata rebuilds the world-state side panel.
func (m *ConsoleUI) writeMetadata() {
	snap := m.snapshot
	if snap == nil {
		m.meta.SetContent("")
		return
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("WORLD STATE") + "\n\n")

	content.WriteString("Session:\n")
	content.WriteString(m.sessionID.String()[:8] + "...\n\n")

	content.WriteString("Game:\n")
	content.WriteString(m.gameName + "\n\n")

	fmt.Fprintf(&content, "Clock:\n%s (%s)\nday %d, %s\n\n",
		snap.Clock.Time, snap.Clock.Slot, snap.Clock.Day, snap.Clock.Weekday)

	fmt.Fprintf(&content, "Place:\n%s\n%s\n\n", snap.LocName, snap.ZoneName)

	fmt.Fprintf(&content, "Turns:\n%d\n\n", snap.TurnCount)

	for _, id := range sortedKeys(snap.Characters) {
		c := snap.Characters[id]
		content.WriteString(c.Name + ":\n")
		for _, meter := range sortedKeys(c.Meters) {
			fmt.Fprintf(&content, "• %s: %d\n", meter, c.Meters[meter])
		}
		for _, item := range sortedKeys(c.Inventory) {
			fmt.Fprintf(&content, "• %s ×%d\n", item, c.Inventory[item])
		}
		content.WriteString(c.Wardrobe + "\n\n")
	}

	if flags := onFlags(snap.Flags); len(flags) > 0 {
		content.WriteString("Flags:\n")
		for _, f := range flags {
			content.WriteString("• " + f + "\n")
		}
		content.WriteString("\n")
	}

	content.WriteString("Commands:\n")
	content.WriteString("• /help: Help\n")
	content.WriteString("• /look: Describe\n")
	content.WriteString("• Ctrl+C: Quit\n")

	m.meta.SetContent(content.String())
}

// describeSnapshot renders the /look summary.
func describeSnapshot(snap *state.Snapshot) string {
	if snap == nil {
		return "Nothing to see yet."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "It is %s (%s) on day %d, a %s. You are at %s, %s.",
		snap.Clock.Time, snap.Clock.Slot, snap.Clock.Day, snap.Clock.Weekday,
		snap.LocName, snap.ZoneName)
	for _, id := range sortedKeys(snap.Characters) {
		c := snap.Characters[id]
		fmt.Fprintf(&b, " %s: %s", c.Name, c.Wardrobe)
	}
	return b.String()
}

func (m ConsoleUI) loadGames() tea.Cmd {
	return func() tea.Msg {
		names, err := m.manager.Games(context.Background())
		if err != nil {
			return gamesLoadedMsg{err: err}
		}
		if len(names) == 0 {
			return gamesLoadedMsg{err: errors.New("no game files found in the data directory")}
		}
		ids := make([]string, 0, len(names))
		for id := range names {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		return gamesLoadedMsg{ids: ids, names: names}
	}
}

func (m ConsoleUI) startSession(gameID string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		ws, err := m.manager.NewSession(ctx, gameID)
		if err != nil {
			return sessionStartedMsg{err: err}
		}
		snap, err := m.manager.Snapshot(ctx, ws.ID)
		if err != nil {
			return sessionStartedMsg{err: err}
		}
		return sessionStartedMsg{id: ws.ID, snap: snap}
	}
}

func (m ConsoleUI) runTurn(req turnRequest) tea.Cmd {
	return func() tea.Msg {
		out, err := m.manager.ApplyAction(context.Background(), m.sessionID, req.action, req.effects)
		return turnResolvedMsg{outcome: out, err: err}
	}
}

func (m ConsoleUI) enterNode(node string) tea.Cmd {
	return func() tea.Msg {
		err := m.manager.EnterNode(context.Background(), m.sessionID, node)
		return nodeEnteredMsg{node: node, err: err}
	}
}

func (m ConsoleUI) copySnapshot() tea.Cmd {
	snap := m.snapshot
	return func() tea.Msg {
		data, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return clipboardMsg{err: err}
		}
		return clipboardMsg{err: clipboard.WriteAll(string(data))}
	}
}

func (m ConsoleUI) updateGameModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case gamesLoadedMsg:
		m.loadingGames = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.gameIDs = msg.ids
			m.gameNames = msg.names
		}

	case sessionStartedMsg:
		m.starting = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.sessionID = msg.id
		m.snapshot = msg.snap
		m.showGameModal = false
		m.entries = []entry{{roleEngine, describeSnapshot(msg.snap)}}
		m.layout()
		m.writeTranscript()
		m.writeMetadata()
		m.input.Focus()
		m.ready = true
		return m, textarea.Blink

	case tea.KeyMsg:
		if m.loadingGames || m.starting || m.err != nil {
			if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
				return m, tea.Quit
			}
			return m, nil
		}

		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyUp:
			if m.selectedGame > 0 {
				m.selectedGame--
			}
		case tea.KeyDown:
			if m.selectedGame < len(m.gameIDs)-1 {
				m.selectedGame++
			}
		case tea.KeyEnter:
			if len(m.gameIDs) > 0 {
				id := m.gameIDs[m.selectedGame]
				m.gameName = m.gameNames[id]
				m.starting = true
				return m, m.startSession(id)
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.input.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit?"))
	content.WriteString("\n\n")
	content.WriteString("The session stays in storage and can be resumed.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderGameModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder

	switch {
	case m.loadingGames:
		content.WriteString(modalTitleStyle.Render("Loading Games..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Reading the game catalog..."))
	case m.err != nil:
		content.WriteString(modalTitleStyle.Render("Error"))
		content.WriteString("\n\n")
		content.WriteString(errorStyle.Render(fmt.Sprintf("Failed to start: %v", m.err)))
		content.WriteString("\n\n")
		content.WriteString("Press Ctrl+C to exit")
	case m.starting:
		content.WriteString(modalTitleStyle.Render("Starting Session..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Building the opening world state..."))
	default:
		content.WriteString(modalTitleStyle.Render("Select a Game"))
		content.WriteString("\n\n")

		for i, id := range m.gameIDs {
			label := fmt.Sprintf("%s (%s)", m.gameNames[id], id)
			if i == m.selectedGame {
				content.WriteString(modalSelectedItemStyle.Render("▶ " + label))
			} else {
				content.WriteString(modalItemStyle.Render("  " + label))
			}
			content.WriteString("\n")
		}

		content.WriteString("\n")
		content.WriteString(promptStyle.Render("Use ↑/↓ to navigate, Enter to select, Ctrl+C to exit"))
	}

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showGameModal {
		return m.renderGameModal()
	}

	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.transcript.View(),
			"",
			m.statusLine(chatWidth-4),
			m.input.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.meta.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}

// statusLine renders the one-line world position above the input.
func (m ConsoleUI) statusLine(width int) string {
	if m.snapshot == nil || width < 1 {
		return ""
	}
	s := fmt.Sprintf(" %s (%s) · day %d · %s / %s ",
		m.snapshot.Clock.Time, m.snapshot.Clock.Slot, m.snapshot.Clock.Day,
		m.snapshot.ZoneName, m.snapshot.LocName)
	if len([]rune(s)) < width {
		s += strings.Repeat(" ", width-len([]rune(s)))
	}
	return statusStyle.Render(s)
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// onFlags returns the names of the flags currently set, sorted.
func onFlags(flags map[string]bool) []string {
	var on []string
	for name, v := range flags {
		if v {
			on = append(on, name)
		}
	}
	sort.Strings(on)
	return on
}
