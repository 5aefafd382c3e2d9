// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package ux provides terminal output styling for the CourseCompass CLI.
package ux

import (
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// CourseCompass color palette - chart blues and brass accents
var (
	ColorBlueBright  = lipgloss.Color("#4FA8FF") // Bright blue - highlights
	ColorBluePrimary = lipgloss.Color("#2D7FF9") // Primary blue - main brand color
	ColorBlueDeep    = lipgloss.Color("#1B5FC4") // Deep blue - borders, accents
	ColorBrass       = lipgloss.Color("#D9A441") // Brass - compass needle, emphasis

	// Semantic colors
	ColorSuccess = lipgloss.Color("#3DDC97")
	ColorWarning = lipgloss.Color("#F4D03F")
	ColorError   = lipgloss.Color("#E74C3C")
	ColorMuted   = lipgloss.Color("#5C6B7A")
)

// Styles provides pre-configured lipgloss styles
var Styles = struct {
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Bold      lipgloss.Style
	Muted     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Highlight lipgloss.Style
	Box       lipgloss.Style
}{
	Title:     lipgloss.NewStyle().Bold(true).Foreground(ColorBlueBright),
	Subtitle:  lipgloss.NewStyle().Foreground(ColorBluePrimary),
	Bold:      lipgloss.NewStyle().Bold(true),
	Muted:     lipgloss.NewStyle().Foreground(ColorMuted),
	Success:   lipgloss.NewStyle().Foreground(ColorSuccess),
	Warning:   lipgloss.NewStyle().Foreground(ColorWarning),
	Error:     lipgloss.NewStyle().Foreground(ColorError),
	Highlight: lipgloss.NewStyle().Foreground(ColorBrass).Bold(true),
	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBlueDeep).
		Padding(0, 1),
}

var (
	plainOnce sync.Once
	plainMode bool
)

// Plain reports whether output should skip colors and animation. True when
// stdout is not a terminal or COURSECOMPASS_PLAIN is set.
func Plain() bool {
	plainOnce.Do(func() {
		if os.Getenv("COURSECOMPASS_PLAIN") != "" {
			plainMode = true
			return
		}
		plainMode = !isatty.IsTerminal(os.Stdout.Fd()) &&
			!isatty.IsCygwinTerminal(os.Stdout.Fd())
	})
	return plainMode
}

// SetPlain overrides terminal detection; used by tests and the --plain flag.
func SetPlain(v bool) {
	plainOnce.Do(func() {})
	plainMode = v
}

// Title prints a styled title.
func Title(text string) {
	if Plain() {
		fmt.Println(text)
		return
	}
	fmt.Println(Styles.Title.Render(text))
}

// Success prints a success message with a checkmark.
func Success(text string) {
	if Plain() {
		fmt.Printf("OK: %s\n", text)
		return
	}
	fmt.Printf("%s %s\n", Styles.Success.Render("✓"), Styles.Success.Render(text))
}

// Warning prints a warning message to stderr in plain mode.
func Warning(text string) {
	if Plain() {
		fmt.Fprintf(os.Stderr, "WARN: %s\n", text)
		return
	}
	fmt.Printf("%s %s\n", Styles.Warning.Render("⚠"), Styles.Warning.Render(text))
}

// Error prints an error message.
func Error(text string) {
	if Plain() {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", text)
		return
	}
	fmt.Printf("%s %s\n", Styles.Error.Render("✗"), Styles.Error.Render(text))
}

// Info prints an informational message.
func Info(text string) {
	if Plain() {
		fmt.Println(text)
		return
	}
	fmt.Printf("%s %s\n", Styles.Muted.Render("│"), text)
}

// Muted prints secondary text. Suppressed entirely in plain mode.
func Muted(text string) {
	if Plain() {
		return
	}
	fmt.Println(Styles.Muted.Render(text))
}

// Box prints content in a rounded box with a title line.
func Box(title, content string) {
	if Plain() {
		fmt.Printf("%s: %s\n", title, content)
		return
	}
	boxStyle := Styles.Box.Width(72)
	titleLine := Styles.Title.Render(title)
	fmt.Println(boxStyle.Render(titleLine + "\n" + content))
}

// SourceList prints a numbered list of source labels with optional links.
func SourceList(sources []SourceLine) {
	if len(sources) == 0 {
		return
	}
	if Plain() {
		fmt.Println("Sources:")
		for i, s := range sources {
			if s.Link != "" {
				fmt.Printf("%d. %s <%s>\n", i+1, s.Label, s.Link)
			} else {
				fmt.Printf("%d. %s\n", i+1, s.Label)
			}
		}
		return
	}
	fmt.Println(Styles.Subtitle.Render("Sources:"))
	for i, s := range sources {
		line := fmt.Sprintf("%d. %s", i+1, s.Label)
		if s.Link != "" {
			line += " " + Styles.Muted.Render("<"+s.Link+">")
		}
		fmt.Println(line)
	}
}

// SourceLine is one entry for SourceList.
type SourceLine struct {
	Label string
	Link  string
}
