// Copyright 2026 The Stackpad Authors
// SPDX-License-Identifier: Apache-2.0

package sync

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/stackpad-dev/stackpad/lib/foldersync"
)

// runResolver opens the interactive conflict resolver over the given
// conflicts. Each choice is applied immediately; quitting leaves the
// remaining conflicts pending.
func runResolver(ctx context.Context, manager *foldersync.Manager, conflicts []foldersync.Conflict) error {
	model := newResolverModel(ctx, manager, conflicts)
	final, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	if err != nil {
		return fmt.Errorf("conflict resolver: %w", err)
	}
	result := final.(resolverModel)
	if result.fatal != nil {
		return result.fatal
	}
	fmt.Printf("Resolved %d conflict(s), %d left pending\n", result.resolved, len(result.conflicts))
	if len(result.conflicts) > 0 {
		return &cliExitPending{}
	}
	return nil
}

// cliExitPending maps "user quit with conflicts left" to exit code 2
// without printing an error line.
type cliExitPending struct{}

func (e *cliExitPending) Error() string { return "conflicts pending" }
func (e *cliExitPending) ExitCode() int { return 2 }

// resolverKeyMap defines the key bindings for the conflict resolver.
type resolverKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Local  key.Binding
	Remote key.Binding
	Skip   key.Binding
	Quit   key.Binding
}

func defaultResolverKeys() resolverKeyMap {
	return resolverKeyMap{
		Up:     key.NewBinding(key.WithKeys("up", "k")),
		Down:   key.NewBinding(key.WithKeys("down", "j")),
		Local:  key.NewBinding(key.WithKeys("l")),
		Remote: key.NewBinding(key.WithKeys("r")),
		Skip:   key.NewBinding(key.WithKeys("s", "tab")),
		Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c")),
	}
}

// resolvedMsg reports the outcome of an asynchronous ResolveConflict
// call for one path.
type resolvedMsg struct {
	path string
	err  error
}

type resolverModel struct {
	ctx     context.Context
	manager *foldersync.Manager

	conflicts []foldersync.Conflict
	cursor    int
	diffView  viewport.Model
	keys      resolverKeyMap

	width    int
	height   int
	ready    bool
	resolved int
	notice   string
	fatal    error
}

func newResolverModel(ctx context.Context, manager *foldersync.Manager, conflicts []foldersync.Conflict) resolverModel {
	return resolverModel{
		ctx:       ctx,
		manager:   manager,
		conflicts: conflicts,
		keys:      defaultResolverKeys(),
	}
}

func (m resolverModel) Init() tea.Cmd {
	return nil
}

func (m resolverModel) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		m.width = message.Width
		m.height = message.Height
		listHeight := m.listHeight()
		diffHeight := message.Height - listHeight - 4
		if diffHeight < 3 {
			diffHeight = 3
		}
		if !m.ready {
			m.diffView = viewport.New(message.Width, diffHeight)
			m.ready = true
		} else {
			m.diffView.Width = message.Width
			m.diffView.Height = diffHeight
		}
		m.refreshDiff()
		return m, nil

	case resolvedMsg:
		if message.err != nil {
			m.notice = fmt.Sprintf("error: %v", message.err)
			return m, nil
		}
		m.resolved++
		m.removeConflict(message.path)
		if len(m.conflicts) == 0 {
			return m, tea.Quit
		}
		m.refreshDiff()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(message, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(message, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
				m.refreshDiff()
			}

		case key.Matches(message, m.keys.Down):
			if m.cursor < len(m.conflicts)-1 {
				m.cursor++
				m.refreshDiff()
			}

		case key.Matches(message, m.keys.Skip):
			if m.cursor < len(m.conflicts)-1 {
				m.cursor++
			} else {
				m.cursor = 0
			}
			m.refreshDiff()

		case key.Matches(message, m.keys.Local):
			return m, m.resolveCurrent(foldersync.ResolveLocal)

		case key.Matches(message, m.keys.Remote):
			return m, m.resolveCurrent(foldersync.ResolveRemote)

		default:
			var cmd tea.Cmd
			m.diffView, cmd = m.diffView.Update(message)
			return m, cmd
		}
	}
	return m, nil
}

// resolveCurrent applies a resolution to the conflict under the
// cursor. The store call runs off the update loop; resolvedMsg
// carries the outcome back.
func (m *resolverModel) resolveCurrent(resolution foldersync.Resolution) tea.Cmd {
	if len(m.conflicts) == 0 {
		return nil
	}
	path := m.conflicts[m.cursor].Path
	ctx, manager := m.ctx, m.manager
	return func() tea.Msg {
		return resolvedMsg{path: path, err: manager.ResolveConflict(ctx, path, resolution, nil)}
	}
}

func (m *resolverModel) removeConflict(path string) {
	for i, conflict := range m.conflicts {
		if conflict.Path == path {
			m.conflicts = append(m.conflicts[:i], m.conflicts[i+1:]...)
			break
		}
	}
	if m.cursor >= len(m.conflicts) && m.cursor > 0 {
		m.cursor = len(m.conflicts) - 1
	}
}

func (m *resolverModel) refreshDiff() {
	if !m.ready || len(m.conflicts) == 0 {
		return
	}
	diff, err := m.conflicts[m.cursor].Diff()
	if err != nil {
		diff = fmt.Sprintf("(diff unavailable: %v)", err)
	}
	if strings.TrimSpace(diff) == "" {
		diff = "(binary or whitespace-only difference)"
	}
	m.diffView.SetContent(diff)
	m.diffView.GotoTop()
}

// listHeight is the number of rows the conflict list occupies,
// capped so the diff pane keeps most of the screen.
func (m resolverModel) listHeight() int {
	height := len(m.conflicts)
	if height > 8 {
		height = 8
	}
	if height < 1 {
		height = 1
	}
	return height
}

var (
	resolverTitleStyle    = lipgloss.NewStyle().Bold(true)
	resolverSelectedStyle = lipgloss.NewStyle().Reverse(true)
	resolverNoticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	resolverHelpStyle     = lipgloss.NewStyle().Faint(true)
)

func (m resolverModel) View() string {
	if !m.ready {
		return "loading..."
	}
	var b strings.Builder

	b.WriteString(resolverTitleStyle.Render(
		fmt.Sprintf("Conflicts (%d remaining)", len(m.conflicts))))
	b.WriteString("\n")

	start := 0
	visible := m.listHeight()
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	for i := start; i < len(m.conflicts) && i < start+visible; i++ {
		conflict := m.conflicts[i]
		line := fmt.Sprintf("  %s  (local %s | remote %s)", conflict.Path,
			conflict.LocalModified.Format("15:04:05"),
			conflict.RemoteModified.Format("15:04:05"))
		if i == m.cursor {
			line = resolverSelectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString(m.diffView.View())
	b.WriteString("\n")

	if m.notice != "" {
		b.WriteString(resolverNoticeStyle.Render(m.notice))
		b.WriteString("\n")
	}
	b.WriteString(resolverHelpStyle.Render(
		"l keep local   r keep remote   s skip   ↑/↓ navigate   q quit"))
	return b.String()
}
