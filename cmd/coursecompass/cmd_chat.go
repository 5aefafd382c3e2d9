// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/CourseCompass/pkg/ux"
	"github.com/AleutianAI/CourseCompass/services/orchestrator/datatypes"
)

func runChatCommand(cmd *cobra.Command, args []string) {
	client := NewCompassClient()

	// Resume or start a session up front so every turn shares one id.
	sid := sessionID
	if sid == "" {
		var err error
		sid, err = client.NewSession()
		if err != nil {
			log.Fatalf("Error: %v", err)
		}
	}

	m := newChatModel(client, sid)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatalf("Chat error: %v", err)
	}
}

// --- Bubbletea Model ---

var (
	youStyle       = lipgloss.NewStyle().Bold(true).Foreground(ux.ColorBrass)
	assistantStyle = lipgloss.NewStyle().Bold(true).Foreground(ux.ColorBlueBright)
	sourceStyle    = lipgloss.NewStyle().Foreground(ux.ColorMuted)
	errStyle       = lipgloss.NewStyle().Foreground(ux.ColorError)
)

type answerMsg struct {
	resp *datatypes.QueryResponse
	err  error
}

type chatModel struct {
	client     *CompassClient
	sessionID  string
	input      textinput.Model
	spin       spinner.Model
	transcript []string
	waiting    bool
	quitting   bool
}

func newChatModel(client *CompassClient, sid string) chatModel {
	input := textinput.New()
	input.Placeholder = "Ask about your courses (/quit to exit, /clear to reset)"
	input.Focus()
	input.CharLimit = 4096
	input.Width = 76

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(ux.ColorBluePrimary)

	return chatModel{
		client:    client,
		sessionID: sid,
		input:     input,
		spin:      spin,
	}
}

func (m chatModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			if m.waiting {
				return m, nil
			}
			question := strings.TrimSpace(m.input.Value())
			if question == "" {
				return m, nil
			}
			m.input.Reset()

			switch question {
			case "/quit", "/exit":
				m.quitting = true
				return m, tea.Quit
			case "/clear":
				if err := m.client.ClearSession(m.sessionID); err != nil {
					m.transcript = append(m.transcript,
						errStyle.Render(fmt.Sprintf("failed to clear session: %v", err)))
				} else {
					m.transcript = append(m.transcript,
						sourceStyle.Render("(conversation history cleared)"))
				}
				return m, nil
			}

			m.transcript = append(m.transcript, youStyle.Render("You: ")+question)
			m.waiting = true
			return m, tea.Batch(m.spin.Tick, m.askCmd(question))
		}
	case answerMsg:
		m.waiting = false
		if msg.err != nil {
			m.transcript = append(m.transcript,
				errStyle.Render(fmt.Sprintf("error: %v", msg.err)))
			return m, nil
		}
		m.transcript = append(m.transcript, m.renderAnswer(msg.resp))
		return m, nil
	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m chatModel) View() string {
	var b strings.Builder

	b.WriteString(ux.Styles.Title.Render("CourseCompass chat"))
	b.WriteString(sourceStyle.Render(fmt.Sprintf("  session %s\n\n", m.sessionID)))

	for _, line := range m.transcript {
		b.WriteString(line)
		b.WriteString("\n\n")
	}

	if m.quitting {
		return b.String()
	}
	if m.waiting {
		b.WriteString(m.spin.View())
		b.WriteString(" thinking...\n")
		return b.String()
	}

	b.WriteString(m.input.View())
	b.WriteString("\n")
	return b.String()
}

func (m chatModel) askCmd(question string) tea.Cmd {
	client := m.client
	sid := m.sessionID
	return func() tea.Msg {
		resp, err := client.Ask(question, sid)
		return answerMsg{resp: resp, err: err}
	}
}

func (m chatModel) renderAnswer(resp *datatypes.QueryResponse) string {
	var b strings.Builder
	b.WriteString(assistantStyle.Render("Assistant: "))
	b.WriteString(resp.Answer)

	if len(resp.Sources) > 0 {
		b.WriteString("\n")
		for i, s := range resp.Sources {
			line := fmt.Sprintf("  %d. %s", i+1, s.Label)
			if s.Link != "" {
				line += " <" + s.Link + ">"
			}
			b.WriteString("\n" + sourceStyle.Render(line))
		}
	}
	if resp.State == "round_cap_reached" {
		b.WriteString("\n" + sourceStyle.Render("  (tool-call limit reached; answer may be partial)"))
	}
	return b.String()
}
