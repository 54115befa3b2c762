package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/plx/internal/models"
	"github.com/desertthunder/plx/internal/playlists"
	"github.com/desertthunder/plx/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlaylistListView ViewState = iota
	MemberListView
	ConfirmView
)

type level int

const (
	levelInfo level = iota
	levelOK
	levelWarn
	levelErr
)

type status struct {
	level level
	text  string
}

// confirmation is a destructive action waiting for y/n.
type confirmation struct {
	prompt string
	from   ViewState
	run    func() error
}

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	view     ViewState
	manager  *playlists.Manager
	bridge   *tasks.Bridge
	scope    *tasks.Scope // lives as long as the program
	members  *tasks.Scope // the open member view, nil otherwise
	listener playlists.ListenerHandle
	progress <-chan tasks.ProgressUpdate

	width        int
	height       int
	playlistList list.Model
	memberList   list.Model
	current      *models.PlaylistSummary
	focus        models.MemberID
	confirm      *confirmation
	status       status
	cmds         []tea.Cmd // produced by callbacks during a drain
	help         help.Model
	keys         keyMap
}

// NewModel creates a TUI model. Results of the operations it submits are delivered by draining
// bridge from Update. progress may be nil; otherwise it should be the channel handed to the
// manager with [playlists.WithProgress].
func NewModel(ctx context.Context, manager *playlists.Manager, bridge *tasks.Bridge, progress <-chan tasks.ProgressUpdate) *Model {
	m := &Model{
		ctx:          ctx,
		view:         PlaylistListView,
		manager:      manager,
		bridge:       bridge,
		scope:        tasks.NewScope("tui"),
		progress:     progress,
		playlistList: list.New(nil, list.NewDefaultDelegate(), 0, 0),
		memberList:   list.New(nil, list.NewDefaultDelegate(), 0, 0),
		help:         help.New(),
		keys:         newKeyMap(),
	}
	m.playlistList.Title = "Playlists"
	m.listener = manager.AddChangeListener(m.scope, m.onChange)
	return m
}

// Init loads the playlists and starts waiting for results.
func (m *Model) Init() tea.Cmd {
	m.loadPlaylists()
	return tea.Batch(m.waitForTasks(), m.waitForProgress())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.playlistList.SetSize(msg.Width-4, msg.Height-8)
		m.memberList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PlaylistListView:
			return m.handlePlaylistListKeys(msg)
		case MemberListView:
			return m.handleMemberListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		}

	case Msg:
		switch msg.kind {
		case MsgTasksReady:
			m.bridge.Loop.Drain()
			return m, m.flush(m.waitForTasks())
		case MsgProgressUpdate:
			update := msg.data.(tasks.ProgressUpdate)
			switch update.Phase {
			case tasks.BatchDone:
				m.setStatus(levelOK, update.Message)
			case tasks.BatchAborted:
				m.setStatus(levelWarn, update.Message)
			default:
				m.setStatus(levelInfo, update.Message)
			}
			return m, m.waitForProgress()
		case MsgProgressClosed:
			m.progress = nil
			return m, nil
		}
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case PlaylistListView:
		return m.renderPlaylistList()
	case MemberListView:
		return m.renderMemberList()
	case ConfirmView:
		return m.renderConfirm()
	default:
		return ""
	}
}

func (m *Model) handlePlaylistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.playlistList.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	selected, ok := m.playlistList.SelectedItem().(playlistItem)
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, m.quit()
	case key.Matches(msg, m.keys.refresh):
		m.loadPlaylists()
		return m, nil
	case key.Matches(msg, m.keys.open):
		if ok {
			m.openPlaylist(selected.summary)
		}
		return m, m.flush()
	case key.Matches(msg, m.keys.remove):
		if ok {
			m.ask(fmt.Sprintf("Delete playlist '%s'?", selected.summary.Name), func() error {
				return m.manager.RemovePlaylist(m.scope, selected.summary.ID, playlists.Callbacks[models.PlaylistID]{
					OnSuccess: func(models.PlaylistID) { m.setStatus(levelOK, fmt.Sprintf("deleted '%s'", selected.summary.Name)) },
					OnError:   m.fail("delete playlist"),
				})
			})
		}
		return m, nil
	case key.Matches(msg, m.keys.check):
		if ok {
			m.checkOrder(m.scope, selected.summary)
		}
		return m, nil
	}

	return m.updateLists(msg)
}

func (m *Model) handleMemberListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.memberList.FilterState() != list.Unfiltered {
		return m.updateLists(msg)
	}

	selected, ok := m.memberList.SelectedItem().(memberItem)
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, m.quit()
	case key.Matches(msg, m.keys.back):
		m.closeMembers()
		m.view = PlaylistListView
		return m, nil
	case key.Matches(msg, m.keys.refresh):
		m.loadMembers()
		return m, nil
	case key.Matches(msg, m.keys.moveUp):
		if ok {
			m.move(selected, -1)
		}
		return m, nil
	case key.Matches(msg, m.keys.moveDown):
		if ok {
			m.move(selected, 1)
		}
		return m, nil
	case key.Matches(msg, m.keys.remove):
		if ok {
			scope := m.members
			m.ask(fmt.Sprintf("Remove '%s' from '%s'?", selected.Title(), m.current.Name), func() error {
				return m.manager.Remove(scope, selected.item.Ref(), playlists.Callbacks[models.MemberRef]{
					OnSuccess: func(models.MemberRef) { m.setStatus(levelOK, "removed 1 member") },
					OnError:   m.fail("remove member"),
				})
			})
		}
		return m, nil
	case key.Matches(msg, m.keys.clear):
		m.clearPlaylist()
		return m, nil
	case key.Matches(msg, m.keys.check):
		m.checkOrder(m.members, *m.current)
		return m, nil
	}

	return m.updateLists(msg)
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	c := m.confirm
	switch {
	case key.Matches(msg, m.keys.yes):
		m.confirm = nil
		m.view = c.from
		m.report(c.run())
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.quit):
		m.confirm = nil
		m.view = c.from
	}
	if m.view == MemberListView && m.current == nil {
		m.view = PlaylistListView
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PlaylistListView:
		m.playlistList, cmd = m.playlistList.Update(msg)
	case MemberListView:
		m.memberList, cmd = m.memberList.Update(msg)
	}
	return m, cmd
}

// waitForTasks parks until the bridge queue holds delivered work.
func (m *Model) waitForTasks() tea.Cmd {
	ready, done := m.bridge.Queue.Ready(), m.ctx.Done()
	return func() tea.Msg {
		select {
		case <-ready:
			return tasksReadyMsg()
		case <-done:
			return nil
		}
	}
}

func (m *Model) waitForProgress() tea.Cmd {
	if m.progress == nil {
		return nil
	}
	ch, done := m.progress, m.ctx.Done()
	return func() tea.Msg {
		select {
		case update, ok := <-ch:
			if !ok {
				return progressClosedMsg()
			}
			return progressUpdateMsg(update)
		case <-done:
			return nil
		}
	}
}

// flush returns the commands queued by callbacks along with extra.
func (m *Model) flush(extra ...tea.Cmd) tea.Cmd {
	cmds := append(m.cmds, extra...)
	m.cmds = nil
	return tea.Batch(cmds...)
}

func (m *Model) quit() tea.Cmd {
	m.closeMembers()
	m.manager.RemoveChangeListener(m.listener)
	m.scope.Close()
	return tea.Quit
}

func (m *Model) ask(prompt string, run func() error) {
	m.confirm = &confirmation{prompt: prompt, from: m.view, run: run}
	m.view = ConfirmView
}

func (m *Model) setStatus(l level, text string) {
	m.status = status{level: l, text: text}
}

// report shows an error returned synchronously by a submit.
func (m *Model) report(err error) {
	if err != nil {
		m.setStatus(levelErr, err.Error())
	}
}

func (m *Model) fail(op string) func(*tasks.Error) {
	return func(err *tasks.Error) {
		m.setStatus(levelErr, fmt.Sprintf("%s: %v", op, err))
	}
}

func (m *Model) loadPlaylists() {
	m.report(m.manager.GetPlaylists(m.scope, playlists.Callbacks[[]*models.Playlist]{
		OnSuccess: m.setPlaylists,
		OnError:   m.fail("load playlists"),
	}))
}

func (m *Model) setPlaylists(pls []*models.Playlist) {
	items := make([]list.Item, 0, len(pls))
	for _, p := range pls {
		// Name and thumbnail were cached by the worker, so these never reach the store.
		name, _ := p.Name(m.ctx)
		thumb, _ := p.Thumbnail(m.ctx)
		items = append(items, playlistItem{
			summary: models.PlaylistSummary{ID: p.ID(), Name: name, Thumbnail: thumb},
			count:   -1,
		})
	}
	m.cmds = append(m.cmds, m.playlistList.SetItems(items))

	for _, p := range pls {
		m.loadCount(p.ID())
	}
}

func (m *Model) loadCount(id models.PlaylistID) {
	m.report(m.manager.Count(m.scope, id, playlists.Callbacks[int]{
		OnSuccess: func(n int) { m.setCount(id, n) },
		OnError:   m.fail("count members"),
	}))
}

func (m *Model) setCount(id models.PlaylistID, n int) {
	if m.current != nil && m.current.ID == id {
		m.current.NumberOfItems = n
	}
	for i, it := range m.playlistList.Items() {
		pi, ok := it.(playlistItem)
		if !ok || pi.summary.ID != id {
			continue
		}
		pi.count = n
		pi.summary.NumberOfItems = n
		m.cmds = append(m.cmds, m.playlistList.SetItem(i, pi))
		return
	}
}

func (m *Model) openPlaylist(summary models.PlaylistSummary) {
	m.closeMembers()
	m.members = tasks.NewScope("members:" + summary.ID.String())
	m.current = &summary
	m.focus = 0
	m.memberList.Title = fmt.Sprintf("Members of '%s'", summary.Name)
	m.cmds = append(m.cmds, m.memberList.SetItems(nil))
	m.view = MemberListView
	m.loadMembers()
}

// closeMembers drops the member view; results still in flight for it are discarded.
func (m *Model) closeMembers() {
	if m.members != nil {
		m.members.Close()
		m.members = nil
	}
	m.current = nil
}

func (m *Model) loadMembers() {
	if m.current == nil {
		return
	}
	m.report(m.manager.Members(m.members, m.current.ID, playlists.Callbacks[[]*models.PlaylistItem]{
		OnSuccess: m.setMembers,
		OnError:   m.fail("load members"),
	}))
}

func (m *Model) setMembers(members []*models.PlaylistItem) {
	items := make([]list.Item, len(members))
	selected := -1
	for i, item := range members {
		items[i] = memberItem{item: item}
		if item.MemberID == m.focus {
			selected = i
		}
	}
	m.cmds = append(m.cmds, m.memberList.SetItems(items))
	if selected >= 0 {
		m.memberList.Select(selected)
	}
}

func (m *Model) move(selected memberItem, delta int) {
	m.focus = selected.item.MemberID
	m.report(m.manager.Move(m.members, m.current.ID, selected.item.MemberID, delta, playlists.Callbacks[[]models.MemberID]{
		OnError: m.fail("move"),
	}))
}

func (m *Model) clearPlaylist() {
	refs := make([]models.MemberRef, 0, len(m.memberList.Items()))
	for _, it := range m.memberList.Items() {
		if mi, ok := it.(memberItem); ok {
			refs = append(refs, mi.item.Ref())
		}
	}
	if len(refs) == 0 {
		m.setStatus(levelWarn, fmt.Sprintf("'%s' is already empty", m.current.Name))
		return
	}

	scope, id := m.members, m.current.ID
	m.ask(fmt.Sprintf("Remove all %d members of '%s'?", len(refs), m.current.Name), func() error {
		return m.manager.RemoveBatch(scope, id, refs, playlists.Callbacks[int]{
			OnSuccess: func(n int) { m.setStatus(levelOK, fmt.Sprintf("removed %d members", n)) },
			OnError:   m.fail("clear"),
		})
	})
}

func (m *Model) checkOrder(scope *tasks.Scope, summary models.PlaylistSummary) {
	m.report(m.manager.CheckOrder(scope, summary.ID, playlists.Callbacks[playlists.OrderReport]{
		OnSuccess: func(r playlists.OrderReport) {
			if r.OK() {
				m.setStatus(levelOK, fmt.Sprintf("'%s': order is dense over %d members", summary.Name, r.Members))
				return
			}
			m.setStatus(levelWarn, fmt.Sprintf("'%s': %s", summary.Name, r.Problem))
		},
		OnError: m.fail("check order"),
	}))
}

// onChange keeps the views in step with mutations made through the manager, including ones
// submitted elsewhere.
func (m *Model) onChange(ev playlists.ChangeEvent) {
	switch ev.Kind {
	case playlists.PlaylistCreated, playlists.PlaylistRemoved, playlists.AttrChanged:
		m.loadPlaylists()
	case playlists.MembersAdded, playlists.MembersRemoved:
		m.loadCount(ev.Playlist)
	}

	if m.current == nil || m.current.ID != ev.Playlist {
		return
	}
	switch ev.Kind {
	case playlists.PlaylistRemoved:
		m.closeMembers()
		m.setStatus(levelWarn, "the open playlist was deleted")
		if m.view == MemberListView {
			m.view = PlaylistListView
		}
	case playlists.AttrChanged:
	default:
		m.loadMembers()
	}
}

func (m *Model) renderStatus() string {
	if m.status.text == "" {
		return ""
	}
	return styles.status(m.status)
}

func (m *Model) renderPlaylistList() string {
	helpKeys := []key.Binding{m.keys.open, m.keys.remove, m.keys.check, m.keys.refresh, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n%s\n\n%s", m.playlistList.View(), m.renderStatus(), helpView)
}

func (m *Model) renderMemberList() string {
	helpKeys := []key.Binding{
		m.keys.moveUp, m.keys.moveDown, m.keys.remove, m.keys.clear, m.keys.check, m.keys.back, m.keys.quit,
	}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n%s\n\n%s", m.memberList.View(), m.renderStatus(), helpView)
}

func (m *Model) renderConfirm() string {
	if m.confirm == nil {
		return ""
	}
	title := styles.title.Render(m.confirm.prompt)
	helpKeys := []key.Binding{m.keys.yes, m.keys.no}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", title, helpView)
}
