package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/chaincall/metadata"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type callState int

const (
	stateSelectPallet callState = iota
	stateSelectExtrinsic
	stateWalkParams
	stateShowResult
)

type callModel struct {
	err       error
	pallets   []metadata.Pallet
	label     string
	result    string
	queue     []step
	values    *argValues
	input     textinput.Model
	state     callState
	selected  int
	palletIdx int
	extIdx    int
}

func newCallModel(pallets []metadata.Pallet, label string) *callModel {
	return &callModel{
		pallets: pallets,
		label:   label,
		state:   stateSelectPallet,
	}
}

func runInteractive(pallets []metadata.Pallet, label string) error {
	_, err := tea.NewProgram(newCallModel(pallets, label)).Run()
	return err
}

func (m *callModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *callModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, m.updateInput(msg)
	}

	switch keyMsg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "q":
		if !m.typing() {
			return m, tea.Quit
		}

	case "up", "down", "k", "j":
		if m.typing() {
			break
		}
		if keyMsg.String() == "up" || keyMsg.String() == "k" {
			if m.selected > 0 {
				m.selected--
			}
		} else if m.selected < m.optionCount()-1 {
			m.selected++
		}
		return m, nil

	case "enter":
		return m.advance()

	case "esc":
		m.back()
		return m, nil
	}

	return m, m.updateInput(msg)
}

// typing reports whether keystrokes belong to a text field right now.
func (m *callModel) typing() bool {
	return m.state == stateWalkParams && len(m.queue) > 0 && m.queue[0].kind == stepText
}

func (m *callModel) updateInput(msg tea.Msg) tea.Cmd {
	if !m.typing() {
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *callModel) optionCount() int {
	switch m.state {
	case stateSelectPallet:
		return len(m.pallets)
	case stateSelectExtrinsic:
		return len(m.pallets[m.palletIdx].Extrinsics)
	case stateWalkParams:
		if len(m.queue) > 0 {
			return len(m.queue[0].options)
		}
	}
	return 0
}

func (m *callModel) advance() (tea.Model, tea.Cmd) {
	switch m.state {
	case stateSelectPallet:
		if len(m.pallets) == 0 {
			return m, nil
		}
		m.palletIdx = m.selected
		m.selected = 0
		m.state = stateSelectExtrinsic

	case stateSelectExtrinsic:
		pallet := m.pallets[m.palletIdx]
		if len(pallet.Extrinsics) == 0 {
			return m, nil
		}
		m.extIdx = m.selected
		ex := pallet.Extrinsics[m.extIdx]
		if !ex.IsSupported {
			m.err = fmt.Errorf("%s::%s: %s", pallet.Name, ex.Name,
				metadata.ExtrinsicNotSupportedDocs)
			m.state = stateShowResult
			return m, nil
		}
		m.values = newArgValues()
		m.queue = nil
		for _, p := range ex.Params {
			m.queue = append(m.queue, expandParam(p, "")...)
		}
		if len(m.queue) == 0 {
			m.finish()
			return m, nil
		}
		m.state = stateWalkParams
		m.selected = 0
		return m, m.prepareStep()

	case stateWalkParams:
		cur := m.queue[0]
		var follow []step
		if cur.kind == stepText {
			m.values.texts[cur.path] = m.input.Value()
		} else {
			choice := cur.options[m.selected]
			m.values.choices[cur.path] = choice
			follow = expandChoice(cur, choice)
		}
		m.queue = append(follow, m.queue[1:]...)
		if len(m.queue) == 0 {
			m.finish()
			return m, nil
		}
		m.selected = 0
		return m, m.prepareStep()

	case stateShowResult:
		m.result = ""
		m.err = nil
		m.selected = m.extIdx
		m.state = stateSelectExtrinsic
	}
	return m, nil
}

func (m *callModel) back() {
	switch m.state {
	case stateSelectExtrinsic:
		m.selected = m.palletIdx
		m.state = stateSelectPallet
	case stateWalkParams, stateShowResult:
		m.queue = nil
		m.result = ""
		m.err = nil
		m.selected = m.extIdx
		m.state = stateSelectExtrinsic
	}
}

// prepareStep sets up the widget for the step at the queue head.
func (m *callModel) prepareStep() tea.Cmd {
	cur := m.queue[0]
	if cur.kind != stepText {
		return nil
	}
	ti := textinput.New()
	ti.Prompt = cur.path + ": "
	ti.Placeholder = cur.param.TypeName
	ti.Width = 40
	ti.Focus()
	m.input = ti
	return textinput.Blink
}

func (m *callModel) finish() {
	pallet := m.pallets[m.palletIdx]
	ex := pallet.Extrinsics[m.extIdx]
	args := make([]string, len(ex.Params))
	for i, p := range ex.Params {
		args[i] = m.values.render(p, "")
	}
	m.result = formatCallCommand(pallet.Name, ex.Name, args)
	m.state = stateShowResult
}

func (m *callModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("chaincall"))
	b.WriteString(" ")
	b.WriteString(m.label)
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectPallet:
		b.WriteString("Select a pallet:\n\n")
		for i, p := range m.pallets {
			line := nameStyle.Render(p.Name)
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + p.Name))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter confirm • q quit"))

	case stateSelectExtrinsic:
		pallet := m.pallets[m.palletIdx]
		b.WriteString(fmt.Sprintf("Select an extrinsic of %s:\n\n", nameStyle.Render(pallet.Name)))
		for i, ex := range pallet.Extrinsics {
			line := m.formatExtrinsic(ex)
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + ex.Name))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter confirm • esc back • q quit"))

	case stateWalkParams:
		cur := m.queue[0]
		if cur.kind == stepText {
			b.WriteString("Enter a value:\n\n")
			b.WriteString(m.input.View())
			if cur.param.TypeName != "" {
				b.WriteString(" ")
				b.WriteString(typeStyle.Render(cur.param.TypeName))
			}
			b.WriteString("\n\n")
			b.WriteString(helpStyle.Render("enter confirm • esc restart"))
		} else {
			b.WriteString(fmt.Sprintf("Choose %s:\n\n", nameStyle.Render(cur.path)))
			for i, opt := range cur.options {
				if i == m.selected {
					b.WriteString(selectedStyle.Render("> " + opt))
				} else {
					b.WriteString("  " + opt)
				}
				b.WriteString("\n")
			}
			b.WriteString("\n")
			b.WriteString(helpStyle.Render("↑/↓ select • enter confirm • esc restart • q quit"))
		}

	case stateShowResult:
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString("Call ready:\n\n")
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • esc back • q quit"))
	}

	return b.String()
}

func (m *callModel) formatExtrinsic(ex metadata.Extrinsic) string {
	if !ex.IsSupported {
		return ex.Name + " " + errorStyle.Render("["+metadata.ExtrinsicNotSupportedDocs+"]")
	}
	var params []string
	for _, p := range ex.Params {
		params = append(params, p.Name+": "+typeStyle.Render(p.TypeName))
	}
	return nameStyle.Render(ex.Name) + "(" + strings.Join(params, ", ") + ")"
}
