package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/sceneforge/rigkit/pkg/rig"
	"github.com/sceneforge/rigkit/pkg/scene"
)

const ParentPlaceholder = "Parent node name (blank = template root)"

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	client       *http.Client
	templateName string
	templateFile string

	parentInput    textinput.Model
	reportViewport viewport.Model
	ready          bool
	width          int
	height         int

	nodeNames []string
	report    *rig.Report
	err       error
	loading   bool
	copied    bool
}

type templateLoadedMsg struct {
	nodeNames []string
	err       error
}

type fixResultMsg struct {
	report *rig.Report
	err    error
}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	reportStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
)

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client, templateName, templateFile string) *ConsoleUI {
	input := textinput.New()
	input.Placeholder = ParentPlaceholder
	input.Focus()
	input.CharLimit = 128

	return &ConsoleUI{
		config:       cfg,
		client:       client,
		templateName: templateName,
		templateFile: templateFile,
		parentInput:  input,
	}
}

func (ui *ConsoleUI) Init() tea.Cmd {
	return ui.loadTemplate()
}

func (ui *ConsoleUI) loadTemplate() tea.Cmd {
	return func() tea.Msg {
		tpl, err := getTemplate(ui.client, ui.config.APIBaseURL, ui.templateFile)
		if err != nil {
			return templateLoadedMsg{err: err}
		}
		var names []string
		tpl.Root.Walk(func(n *scene.Node) bool {
			names = append(names, n.Name)
			return true
		})
		return templateLoadedMsg{nodeNames: names}
	}
}

func (ui *ConsoleUI) runFix() tea.Cmd {
	template := ui.templateFile
	parent := strings.TrimSpace(ui.parentInput.Value())
	return func() tea.Msg {
		report, err := runFix(ui.client, ui.config.APIBaseURL, template, parent)
		return fixResultMsg{report: report, err: err}
	}
}

func (ui *ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		ui.width = msg.Width
		ui.height = msg.Height
		viewportHeight := msg.Height - 12
		if viewportHeight < 4 {
			viewportHeight = 4
		}
		if !ui.ready {
			ui.reportViewport = viewport.New(msg.Width-4, viewportHeight)
			ui.ready = true
		} else {
			ui.reportViewport.Width = msg.Width - 4
			ui.reportViewport.Height = viewportHeight
		}
		ui.refreshReportView()

	case templateLoadedMsg:
		if msg.err != nil {
			ui.err = msg.err
		} else {
			ui.nodeNames = msg.nodeNames
		}

	case fixResultMsg:
		ui.loading = false
		ui.copied = false
		ui.report = msg.report
		ui.err = msg.err
		ui.refreshReportView()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return ui, tea.Quit
		case "enter":
			if !ui.loading {
				ui.loading = true
				ui.err = nil
				cmds = append(cmds, ui.runFix())
			}
		case "ctrl+y":
			if ui.report != nil {
				// Clipboard failures (e.g. headless hosts) are shown
				// instead of the copied marker.
				if err := clipboard.WriteAll(ui.report.Summary()); err == nil {
					ui.copied = true
				}
			}
		}
	}

	var cmd tea.Cmd
	ui.parentInput, cmd = ui.parentInput.Update(msg)
	cmds = append(cmds, cmd)

	ui.reportViewport, cmd = ui.reportViewport.Update(msg)
	cmds = append(cmds, cmd)

	return ui, tea.Batch(cmds...)
}

func (ui *ConsoleUI) refreshReportView() {
	if !ui.ready || ui.report == nil {
		return
	}

	var b strings.Builder
	for _, line := range ui.report.Lines {
		b.WriteString(reportStyle.Render(line))
		b.WriteString("\n")
	}
	for _, w := range ui.report.Warnings {
		b.WriteString(warningStyle.Render("warning: " + w))
		b.WriteString("\n")
	}
	for _, e := range ui.report.Errors {
		b.WriteString(errorStyle.Render("error: " + e.Error()))
		b.WriteString("\n")
	}
	b.WriteString(fmt.Sprintf("\n%d node(s) reconciled", ui.report.Processed))
	if ui.report.Persisted {
		b.WriteString(hintStyle.Render("  (template saved)"))
	}

	ui.reportViewport.SetContent(wordwrap.String(b.String(), ui.reportViewport.Width))
	ui.reportViewport.GotoBottom()
}

func (ui *ConsoleUI) View() string {
	if !ui.ready {
		return "Loading..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Grab Rig Fixer"))
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render("Template: "))
	b.WriteString(fmt.Sprintf("%s (%s)\n", ui.templateName, ui.templateFile))

	if len(ui.nodeNames) > 0 {
		shown := ui.nodeNames
		if len(shown) > 8 {
			shown = shown[:8]
		}
		b.WriteString(hintStyle.Render("Nodes: " + strings.Join(shown, ", ")))
		if len(ui.nodeNames) > 8 {
			b.WriteString(hintStyle.Render(fmt.Sprintf(" … (%d total)", len(ui.nodeNames))))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(ui.parentInput.View())
	b.WriteString("\n\n")

	switch {
	case ui.loading:
		b.WriteString(warningStyle.Render("Running fix pass..."))
		b.WriteString("\n")
	case ui.err != nil:
		b.WriteString(errorStyle.Render("Error: " + ui.err.Error()))
		b.WriteString("\n")
	case ui.report != nil:
		b.WriteString(panelStyle.Render(ui.reportViewport.View()))
		b.WriteString("\n")
	default:
		b.WriteString(hintStyle.Render("Press enter to run the fix pass."))
		b.WriteString("\n")
	}

	help := "enter: fix • ctrl+y: copy report • esc: quit"
	if ui.copied {
		help += "  " + reportStyle.Render("(report copied)")
	}
	b.WriteString("\n")
	b.WriteString(hintStyle.Render(help))

	return b.String()
}
