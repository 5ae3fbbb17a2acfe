package main

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jwebster45206/stealth-engine/internal/config"
	"github.com/jwebster45206/stealth-engine/pkg/actor"
	"github.com/jwebster45206/stealth-engine/pkg/gameclock"
	"github.com/jwebster45206/stealth-engine/pkg/room"
	"github.com/jwebster45206/stealth-engine/pkg/sim"
	"github.com/jwebster45206/stealth-engine/pkg/world"
	"github.com/muesli/reflow/wordwrap"
)

const (
	// subdueDamage is how hard the player hits when knocking someone out.
	subdueDamage = 4
	maxMessages  = 200
)

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	Sneak  key.Binding
	Talk   key.Binding
	Subdue key.Binding
	Wait   key.Binding
	Travel key.Binding
	Copy   key.Binding
	Help   key.Binding
	Quit   key.Binding

	Confirm key.Binding
	Leave   key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		Right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
		Sneak:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sneak")),
		Talk:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "talk")),
		Subdue:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "subdue")),
		Wait:    key.NewBinding(key.WithKeys("z"), key.WithHelp("z", "wait for next period")),
		Travel:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next area")),
		Copy:    key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "copy line")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help (pauses)")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "answer")),
		Leave:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "walk away")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Sneak, k.Talk, k.Wait, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Sneak, k.Talk, k.Subdue, k.Wait},
		{k.Travel, k.Copy, k.Help, k.Quit},
		{k.Confirm, k.Leave},
	}
}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	mapPanelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingLeft(3).
			PaddingRight(2)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingRight(2)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)

	wallStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	floorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("236"))
	heroStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)  // teal
	sneakStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("24"))             // dim blue
	guardStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true) // yellow
	alarmStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true) // red
	npcStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))             // green
	downStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

type tickMsg time.Time

// ConsoleUI is the BubbleTea model that runs the game.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	ctx       context.Context
	cfg       *config.Config
	game      *sim.Simulation
	feed      effectFeed
	rooms     room.Set
	locations []string

	keys        keyMap
	help        help.Model
	logViewport viewport.Model
	messages    []string
	showHelp    bool

	width    int
	height   int
	ready    bool
	lastTick time.Time
	err      error
}

func NewConsoleUI(ctx context.Context, cfg *config.Config, game *sim.Simulation, feed effectFeed, rooms room.Set) ConsoleUI {
	locations := make([]string, 0, len(rooms))
	for id := range rooms {
		locations = append(locations, id)
	}
	slices.Sort(locations)

	vp := viewport.New(50, 6)

	m := ConsoleUI{
		ctx:         ctx,
		cfg:         cfg,
		game:        game,
		feed:        feed,
		rooms:       rooms,
		locations:   locations,
		keys:        defaultKeys(),
		help:        help.New(),
		logViewport: vp,
	}
	m.say(fmt.Sprintf("It is %s, %s.", game.Clock().Now().String(), titleCase(game.Clock().Period())))
	return m
}

func (m ConsoleUI) Init() tea.Cmd {
	return m.tick()
}

func (m ConsoleUI) tick() tea.Cmd {
	return tea.Tick(time.Duration(m.cfg.TickMs)*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.logViewport.Width = max(20, msg.Width-6)
		m.logViewport.Height = max(3, msg.Height/4)
		m.ready = true
		m.refreshLog()
		return m, nil

	case tickMsg:
		return m.onTick(time.Time(msg))

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.game.Dialogue().Active() {
			return m.updateDialogue(msg)
		}
		return m.updateExplore(msg)
	}

	var cmd tea.Cmd
	m.logViewport, cmd = m.logViewport.Update(msg)
	return m, cmd
}

func (m ConsoleUI) onTick(now time.Time) (tea.Model, tea.Cmd) {
	elapsed := float64(m.cfg.TickMs)
	if !m.lastTick.IsZero() {
		elapsed = float64(now.Sub(m.lastTick).Milliseconds())
	}
	m.lastTick = now

	mode := gameclock.ModeExplore
	if m.showHelp {
		mode = gameclock.ModeMenu
	}

	report, err := m.game.Tick(m.ctx, elapsed, mode)
	if err != nil {
		m.err = err
		return m, tea.Quit
	}
	m.record(report)
	return m, m.tick()
}

// record logs what a tick changed that the player would notice.
func (m *ConsoleUI) record(report sim.Report) {
	if report.PeriodChanged {
		m.say(fmt.Sprintf("%s: %s begins.", report.Time.String(), titleCase(report.Period)))
	}
	here := m.game.World().Player().Location
	for _, c := range report.Schedule {
		// Actors never move while the player watches, so the only visible
		// sign of a schedule is someone waiting to leave.
		if c.Deferred && c.From == here {
			m.say(fmt.Sprintf("%s glances toward the %s.", m.actorName(c.ActorID), titleCase(c.To)))
		}
	}
	if report.DialogueStarted != "" {
		m.say(fmt.Sprintf("%s spots you!", m.actorName(report.DialogueStarted)))
	}
}

func (m ConsoleUI) updateExplore(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		if key.Matches(msg, m.keys.Help) || msg.String() == "esc" {
			m.showHelp = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
	case key.Matches(msg, m.keys.Up):
		m.move(actor.FacingUp)
	case key.Matches(msg, m.keys.Down):
		m.move(actor.FacingDown)
	case key.Matches(msg, m.keys.Left):
		m.move(actor.FacingLeft)
	case key.Matches(msg, m.keys.Right):
		m.move(actor.FacingRight)
	case key.Matches(msg, m.keys.Sneak):
		sneaking := !m.game.World().Player().Sneaking
		m.game.SetSneaking(sneaking)
		if sneaking {
			m.say("You crouch low.")
		} else {
			m.say("You stand up.")
		}
	case key.Matches(msg, m.keys.Talk):
		if _, err := m.game.Talk(m.ctx); err != nil {
			m.sayErr(err)
		}
	case key.Matches(msg, m.keys.Subdue):
		m.subdue()
	case key.Matches(msg, m.keys.Wait):
		report, ok := m.game.WaitForNextPeriod(m.ctx)
		if !ok {
			m.say("Nothing to wait for.")
			break
		}
		m.record(report)
		m.lastTick = time.Time{}
	case key.Matches(msg, m.keys.Travel):
		m.travel()
	case key.Matches(msg, m.keys.Copy):
		if len(m.messages) > 0 {
			m.copy(m.messages[len(m.messages)-1])
		}
	}
	return m, nil
}

func (m ConsoleUI) updateDialogue(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d := m.game.Dialogue()
	switch {
	case key.Matches(msg, m.keys.Up):
		d.Up()
	case key.Matches(msg, m.keys.Down):
		d.Down()
	case key.Matches(msg, m.keys.Confirm):
		m.remember()
		if err := m.game.Confirm(m.ctx); err != nil {
			m.sayErr(err)
		}
		m.drain()
	case key.Matches(msg, m.keys.Leave):
		m.game.Cancel(m.ctx)
		m.say("You walk away.")
		m.drain()
	case key.Matches(msg, m.keys.Copy):
		if frame, ok := d.Current(); ok {
			m.copy(frame.Speaker + ": " + frame.Text)
		}
	default:
		// Number keys pick a response directly.
		s := msg.String()
		if len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
			m.remember()
			if err := m.game.Choose(m.ctx, int(s[0]-'1')); err != nil {
				m.sayErr(err)
			}
			m.drain()
		}
	}
	return m, nil
}

func (m *ConsoleUI) move(dir actor.Facing) {
	err := m.game.MovePlayer(dir)
	if err != nil && !errors.Is(err, sim.ErrBlocked) {
		m.sayErr(err)
	}
}

func (m *ConsoleUI) subdue() {
	for _, s := range m.game.Adjacent() {
		if !s.Conscious {
			continue
		}
		if err := m.game.Subdue(s.ID, subdueDamage); err != nil {
			m.sayErr(err)
			return
		}
		if n, ok := m.game.World().Actor(s.ID); ok && !n.Conscious {
			m.say(fmt.Sprintf("%s slumps to the floor.", n.Name))
		} else {
			m.say(fmt.Sprintf("You strike %s.", s.Name))
		}
		return
	}
	m.say("Nobody within reach.")
}

func (m *ConsoleUI) travel() {
	if len(m.locations) == 0 {
		return
	}
	here := m.game.World().Player().Location
	i := slices.Index(m.locations, here)
	next := m.locations[(i+1)%len(m.locations)]
	spawn, _ := m.rooms.Spawn(next)
	if err := m.game.PlacePlayer(next, spawn); err != nil {
		m.sayErr(err)
		return
	}
	m.say(fmt.Sprintf("You enter the %s.", titleCase(next)))
}

// remember logs the line being answered before the conversation moves on.
func (m *ConsoleUI) remember() {
	if frame, ok := m.game.Dialogue().Current(); ok {
		m.say(frame.Speaker + ": " + frame.Text)
	}
}

// drain reports effects emitted by the last dialogue step.
func (m *ConsoleUI) drain() {
	records, err := m.feed.Drain(m.ctx)
	if err != nil {
		m.sayErr(err)
		return
	}
	for _, rec := range records {
		m.say(describe(rec))
	}
}

func (m *ConsoleUI) copy(text string) {
	if err := clipboard.WriteAll(text); err != nil {
		m.sayErr(fmt.Errorf("failed to copy: %w", err))
	}
}

func (m *ConsoleUI) actorName(id string) string {
	if n, ok := m.game.World().Actor(id); ok && n.Name != "" {
		return n.Name
	}
	return titleCase(id)
}

func (m *ConsoleUI) say(line string) {
	m.messages = append(m.messages, line)
	if len(m.messages) > maxMessages {
		m.messages = m.messages[len(m.messages)-maxMessages:]
	}
	m.refreshLog()
}

func (m *ConsoleUI) sayErr(err error) {
	m.say(errorStyle.Render(err.Error()))
}

func (m *ConsoleUI) refreshLog() {
	width := max(10, m.logViewport.Width-2)
	var b strings.Builder
	for i, line := range m.messages {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(wordwrap.String(line, width))
	}
	m.logViewport.SetContent(b.String())
	m.logViewport.GotoBottom()
}

func (m ConsoleUI) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}
	if m.game.Dialogue().Active() {
		return m.renderDialogue()
	}
	if m.showHelp {
		return m.renderHelp()
	}

	w := m.game.World()
	player := w.Player()
	r, _ := m.rooms.Room(player.Location)
	snaps := m.game.Snapshots()

	mapPanel := mapPanelStyle.Render(renderRoom(r, player, snaps))
	metaPanel := metaPanelStyle.Render(m.renderMeta(snaps))

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, mapPanel, metaPanel),
		"",
		separatorStyle.Render(strings.Repeat("─", max(10, m.width-4))),
		m.logViewport.View(),
		m.help.View(m.keys),
	)
}

func (m ConsoleUI) renderMeta(snaps []world.Snapshot) string {
	w := m.game.World()
	player := w.Player()
	clock := m.game.Clock()

	var b strings.Builder
	b.WriteString(titleStyle.Render(strings.ToUpper(titleCase(player.Location))) + "\n\n")
	b.WriteString(fmt.Sprintf("%s  %s\n", clock.Now().String(), titleCase(clock.Period())))
	if player.Sneaking {
		b.WriteString(promptStyle.Render("sneaking") + "\n")
	}
	b.WriteString("\n")

	for _, s := range snaps {
		b.WriteString(fmt.Sprintf("%c %-16s %s %s\n",
			glyph(s), s.Name, alertnessBar(s.Alertness, 10), promptStyle.Render(s.Behavior.String())))
	}

	if known := w.Knowledge(); len(known) > 0 {
		b.WriteString("\n" + titleStyle.Render("You know") + "\n")
		for _, token := range known {
			b.WriteString("• " + titleCase(token) + "\n")
		}
	}
	return b.String()
}

func (m ConsoleUI) renderDialogue() string {
	frame, ok := m.game.Dialogue().Current()
	if !ok {
		return "..."
	}
	width := min(70, max(30, m.width-10))

	var content strings.Builder
	content.WriteString(speakerStyle.Render(frame.Speaker))
	content.WriteString("\n\n")
	content.WriteString(wordwrap.String(frame.Text, width-4))
	content.WriteString("\n\n")
	for i, r := range frame.Responses {
		line := fmt.Sprintf("%d. %s", i+1, r)
		if i == frame.Selected {
			content.WriteString(modalSelectedItemStyle.Render("▶ " + line))
		} else {
			content.WriteString(modalItemStyle.Render("  " + line))
		}
		content.WriteString("\n")
	}
	content.WriteString("\n")
	content.WriteString(promptStyle.Render("↑/↓ choose, Enter answer, Esc walk away"))

	modal := modalStyle.Width(width).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderHelp() string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("Paused"))
	content.WriteString("\n\n")
	content.WriteString(m.help.FullHelpView(m.keys.FullHelp()))
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press ? or Esc to resume"))

	modal := modalStyle.Width(min(70, max(30, m.width-10))).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}
