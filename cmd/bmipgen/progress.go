package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ntlab/bmipgen/internal/config"
	"github.com/ntlab/bmipgen/internal/generate"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func defaultGeneration() config.Generation {
	return config.Default().Generation
}

type progressMsg struct {
	collected   int
	target      int
	attempts    int
	maxAttempts int
}

type doneMsg struct{}

var statusStyle = lipgloss.NewStyle().Faint(true)

type progressModel struct {
	bar  progress.Model
	last progressMsg
}

func newProgressModel() progressModel {
	return progressModel{bar: progress.New(progress.WithDefaultGradient())}
}

func (m progressModel) Init() tea.Cmd { return nil }

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil
	case tea.WindowSizeMsg:
		width := msg.Width - 8
		if width > 60 {
			width = 60
		}
		if width > 0 {
			m.bar.Width = width
		}
		return m, nil
	case progressMsg:
		m.last = msg
		percent := 1.0
		if msg.target > 0 {
			percent = float64(msg.collected) / float64(msg.target)
		}
		return m, m.bar.SetPercent(percent)
	case doneMsg:
		return m, tea.Quit
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m progressModel) View() string {
	counters := fmt.Sprintf("collected %d/%d · attempts %d/%d",
		m.last.collected, m.last.target, m.last.attempts, m.last.maxAttempts)
	return m.bar.View() + "\n" + statusStyle.Render(counters) + "\n"
}

// runWithProgress drives run under a live progress display when stdout is a
// terminal, falling back to log lines otherwise.
func runWithProgress[T any](cmd *cobra.Command, gen *generate.Generator, noUI bool, run func() (T, error)) (T, error) {
	if noUI || !stdoutIsTerminal() {
		gen.SetProgress(func(collected, target, attempts, maxAttempts int) {
			log.Debug().
				Int("collected", collected).
				Int("target", target).
				Int("attempts", attempts).
				Int("max_attempts", maxAttempts).
				Msg("progress")
		})
		return run()
	}

	prog := tea.NewProgram(newProgressModel(), tea.WithOutput(cmd.OutOrStdout()))
	gen.SetProgress(func(collected, target, attempts, maxAttempts int) {
		prog.Send(progressMsg{collected: collected, target: target, attempts: attempts, maxAttempts: maxAttempts})
	})

	var (
		result T
		runErr error
	)
	go func() {
		result, runErr = run()
		prog.Send(doneMsg{})
	}()
	if _, err := prog.Run(); err != nil {
		return result, fmt.Errorf("progress display: %w", err)
	}
	return result, runErr
}

func stdoutIsTerminal() bool {
	info, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
