package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MKhiriev/go-deck-sync/internal/service"
	"github.com/MKhiriev/go-deck-sync/models"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// writeClipboard is swapped in tests.
var writeClipboard = clipboard.WriteAll

const flashDuration = 3 * time.Second

type inputStage int

const (
	inputNone inputStage = iota
	inputTitle
	inputFront
	inputBack
)

type model struct {
	ctx         context.Context
	collections service.ClientCollectionService
	sync        service.ClientSyncService
	updates     <-chan models.SyncStatus
	version     string

	items   []models.CachedCollection
	idx     int
	open    bool
	cardIdx int

	stage     inputStage
	input     textinput.Model
	cardFront string

	status  models.SyncStatus
	spinner spinner.Model
	flash   string
	errMsg  string
}

func newModel(ctx context.Context, collections service.ClientCollectionService, sync service.ClientSyncService, version string) model {
	s := spinner.New()
	s.Spinner = spinner.MiniDot

	in := textinput.New()
	in.Width = 50
	in.CharLimit = 200

	return model{
		ctx:         ctx,
		collections: collections,
		sync:        sync,
		updates:     sync.Subscribe(),
		version:     version,
		status:      sync.Status(),
		spinner:     s,
		input:       in,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.cmdLoad(), m.cmdWaitStatus(), m.spinner.Tick)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case statusMsg:
		if msg.closed {
			return m, nil
		}
		m.status = msg.status
		// a finished pass may have pulled remote edits
		return m, tea.Batch(m.cmdWaitStatus(), m.cmdLoad())
	case collectionsLoadedMsg:
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.items = msg.items
		m.clampCursor()
		return m, nil
	case actionDoneMsg:
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.errMsg = ""
		m.flash = msg.done
		return m, tea.Batch(m.cmdLoad(), clearFlashAfter(flashDuration))
	case clearFlashMsg:
		m.flash = ""
		return m, nil
	case tea.FocusMsg:
		m.sync.NotifyForeground()
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if m.stage != inputNone {
			return m.updateInput(msg)
		}
		return m.updateKeys(msg)
	}

	return m, nil
}

func (m model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.quit):
		return m, tea.Quit
	case key.Matches(msg, keys.up):
		m.move(-1)
	case key.Matches(msg, keys.down):
		m.move(1)
	case key.Matches(msg, keys.enter):
		if _, ok := m.current(); ok && !m.open {
			m.open, m.cardIdx = true, 0
		}
	case key.Matches(msg, keys.esc):
		m.open = false
		m.errMsg = ""
	case key.Matches(msg, keys.newItem):
		if !m.open {
			return m.startInput(inputTitle, "collection title")
		}
	case key.Matches(msg, keys.addCard):
		if _, ok := m.current(); ok {
			return m.startInput(inputFront, "front")
		}
	case key.Matches(msg, keys.delete):
		return m, m.cmdDelete()
	case key.Matches(msg, keys.sync):
		m.sync.ForceSync()
		m.flash = "sync requested"
		return m, clearFlashAfter(flashDuration)
	case key.Matches(msg, keys.resync):
		return m, m.cmdResync()
	case key.Matches(msg, keys.copy):
		return m, m.cmdCopyFailures()
	}
	return m, nil
}

func (m model) startInput(stage inputStage, placeholder string) (tea.Model, tea.Cmd) {
	m.stage = stage
	m.errMsg = ""
	m.input.Reset()
	m.input.Placeholder = placeholder
	return m, m.input.Focus()
}

func (m model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyEsc:
		m.stage = inputNone
		m.input.Blur()
		return m, nil
	case msg.Type == tea.KeyEnter:
		value := strings.TrimSpace(m.input.Value())
		if value == "" {
			return m, nil
		}
		switch m.stage {
		case inputTitle:
			m.stage = inputNone
			m.input.Blur()
			return m, m.cmdCreate(value)
		case inputFront:
			m.cardFront = value
			return m.startInput(inputBack, "back")
		case inputBack:
			m.stage = inputNone
			m.input.Blur()
			return m, m.cmdAddCard(m.cardFront, value)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *model) move(delta int) {
	if m.open {
		c, _ := m.current()
		m.cardIdx = clamp(m.cardIdx+delta, len(liveCards(c.Cards)))
		return
	}
	m.idx = clamp(m.idx+delta, len(m.items))
}

func (m *model) clampCursor() {
	m.idx = clamp(m.idx, len(m.items))
	if c, ok := m.current(); ok {
		m.cardIdx = clamp(m.cardIdx, len(liveCards(c.Cards)))
	} else {
		m.open = false
	}
}

func clamp(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

func (m model) current() (models.CachedCollection, bool) {
	if m.idx < 0 || m.idx >= len(m.items) {
		return models.CachedCollection{}, false
	}
	return m.items[m.idx], true
}

func liveCards(cards []models.Card) []models.Card {
	live := make([]models.Card, 0, len(cards))
	for _, c := range cards {
		if !c.Deleted {
			live = append(live, c)
		}
	}
	return live
}

func (m model) cmdWaitStatus() tea.Cmd {
	updates := m.updates
	return func() tea.Msg {
		status, ok := <-updates
		return statusMsg{status: status, closed: !ok}
	}
}

func (m model) cmdLoad() tea.Cmd {
	ctx, svc := m.ctx, m.collections
	return func() tea.Msg {
		items, err := svc.List(ctx)
		return collectionsLoadedMsg{items: items, err: err}
	}
}

func (m model) cmdCreate(title string) tea.Cmd {
	ctx, svc := m.ctx, m.collections
	return func() tea.Msg {
		_, err := svc.CreateCollection(ctx, title, "manual", false)
		return actionDoneMsg{done: "collection created", err: err}
	}
}

func (m model) cmdAddCard(front, back string) tea.Cmd {
	c, ok := m.current()
	if !ok {
		return nil
	}
	ctx, svc := m.ctx, m.collections
	return func() tea.Msg {
		_, err := svc.AddCard(ctx, c.ID, front, back, "")
		return actionDoneMsg{done: "card added", err: err}
	}
}

func (m model) cmdDelete() tea.Cmd {
	c, ok := m.current()
	if !ok {
		return nil
	}
	ctx, svc := m.ctx, m.collections

	if m.open {
		cards := liveCards(c.Cards)
		if m.cardIdx >= len(cards) {
			return nil
		}
		cardID := cards[m.cardIdx].ID
		return func() tea.Msg {
			return actionDoneMsg{done: "card deleted", err: svc.DeleteCard(ctx, c.ID, cardID)}
		}
	}

	return func() tea.Msg {
		return actionDoneMsg{done: "collection deleted", err: svc.DeleteCollection(ctx, c.ID)}
	}
}

func (m model) cmdResync() tea.Cmd {
	ctx, sync := m.ctx, m.sync
	return func() tea.Msg {
		return actionDoneMsg{done: "full resync requested", err: sync.Resync(ctx)}
	}
}

func (m model) cmdCopyFailures() tea.Cmd {
	ctx, svc := m.ctx, m.collections
	return func() tea.Msg {
		failures, err := svc.Failures(ctx)
		if err != nil {
			return actionDoneMsg{err: err}
		}
		if len(failures) == 0 {
			return actionDoneMsg{done: "no failed changes"}
		}
		if err = writeClipboard(failureReport(failures)); err != nil {
			return actionDoneMsg{err: fmt.Errorf("copy to clipboard: %w", err)}
		}
		return actionDoneMsg{done: fmt.Sprintf("%d failed changes copied", len(failures))}
	}
}

func clearFlashAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return clearFlashMsg{} })
}

func (m model) View() string {
	title := "go-deck-sync " + m.version
	status := renderStatus(m.status, m.spinner.View(), time.Now())

	var body, help string
	switch {
	case m.stage != inputNone:
		body = m.viewInput()
		help = "enter confirm  esc cancel"
	case m.open:
		body = m.viewCards()
		help = "a add card  d delete card  esc back  s sync  q quit"
	default:
		body = m.viewCollections()
		help = "enter open  n new  a add card  d delete  s sync  r resync  c copy failures  q quit"
	}

	if m.flash != "" {
		body += "\n\n" + m.flash
	}
	if m.errMsg != "" {
		body += "\n\n" + errorStyle.Render("error: "+m.errMsg)
	}

	return renderPage(title, status, body, help)
}

func (m model) viewCollections() string {
	if len(m.items) == 0 {
		return "no collections yet, press n to create one"
	}

	var b strings.Builder
	for i, c := range m.items {
		cursor := "  "
		if i == m.idx {
			cursor = "> "
		}
		line := fmt.Sprintf("%s%s (%d)", cursor, fitText(c.Title, 40), c.CardCount)
		if c.Status == models.LocalPending {
			line += pendingStyle.Render("  pending")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m model) viewCards() string {
	c, _ := m.current()
	cards := liveCards(c.Cards)

	var b strings.Builder
	b.WriteString(titleStyle.Render(c.Title))
	b.WriteString("\n\n")
	if len(cards) == 0 {
		b.WriteString("no cards, press a to add one")
		return b.String()
	}
	for i, card := range cards {
		cursor := "  "
		if i == m.cardIdx {
			cursor = "> "
		}
		fmt.Fprintf(&b, "%s%d. %s | %s\n", cursor, i+1, fitText(card.Front, 30), fitText(card.Back, 30))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m model) viewInput() string {
	label := map[inputStage]string{
		inputTitle: "New collection",
		inputFront: "New card: front",
		inputBack:  "New card: back",
	}[m.stage]
	return label + "\n\n[" + m.input.View() + "]"
}
