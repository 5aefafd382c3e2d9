// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ingest turns course documents into catalog entries and content
// chunks.
//
// # Description
//
// Course documents are plain text with a small header block:
//
//	Course Title: Introduction to Testing
//	Course Link: https://example.com/testing
//	Course Instructor: Jane Doe
//
//	Lesson 0: Getting Started
//	Lesson Link: https://example.com/testing/0
//	<lesson text...>
//
//	Lesson 1: Writing Assertions
//	<lesson text...>
//
// The processor extracts the course metadata and lesson list, splits each
// lesson's text into overlapping chunks, and prefixes each lesson's first
// chunk with its course and lesson so a chunk retrieved in isolation still
// identifies itself.
package ingest

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"

	"github.com/AleutianAI/CourseCompass/services/orchestrator/datatypes"
)

var (
	chunkSize         = 800
	chunkOverlap      = int(float64(chunkSize) * 0.125)
	courseSeparators  = []string{"\n\n", "\n", ". ", " ", ""}
	lessonHeaderRegex = regexp.MustCompile(`^Lesson\s+(\d+):\s*(.+)$`)
)

const (
	titlePrefix      = "Course Title:"
	linkPrefix       = "Course Link:"
	instructorPrefix = "Course Instructor:"
	lessonLinkPrefix = "Lesson Link:"
)

// Processor parses and chunks course documents.
type Processor struct {
	splitter textsplitter.TextSplitter
}

// NewProcessor builds a Processor with the standard chunking parameters.
func NewProcessor() *Processor {
	return &Processor{
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(chunkOverlap),
			textsplitter.WithSeparators(courseSeparators),
		),
	}
}

// ProcessFile reads and processes one course document from disk. The
// filename (without extension) is the fallback course title when the header
// is missing.
func (p *Processor) ProcessFile(path string) (*datatypes.Course, []datatypes.CourseChunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read course document %s: %w", path, err)
	}
	fallback := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return p.Process(fallback, string(data))
}

// Process parses a course document into its catalog entry and content
// chunks.
//
// # Description
//
// Header lines are consumed from the top of the document; the rest is split
// into lesson sections on "Lesson N: <title>" lines. Text before the first
// lesson becomes course-level chunks (lesson number -1). ChunkIndex is
// monotonic across the whole course.
//
// # Inputs
//
//   - fallbackTitle: Used when the document has no "Course Title:" header.
//   - content: The raw document text.
func (p *Processor) Process(fallbackTitle, content string) (*datatypes.Course, []datatypes.CourseChunk, error) {
	course := &datatypes.Course{Title: fallbackTitle}

	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	// Header block: title, link, instructor, in any order, until the first
	// lesson header or non-header text.
	var bodyLines []string
	inHeader := true
	for scanner.Scan() {
		line := scanner.Text()
		if inHeader {
			trimmed := strings.TrimSpace(line)
			switch {
			case trimmed == "":
				continue
			case strings.HasPrefix(trimmed, titlePrefix):
				course.Title = strings.TrimSpace(strings.TrimPrefix(trimmed, titlePrefix))
				continue
			case strings.HasPrefix(trimmed, linkPrefix):
				course.CourseLink = strings.TrimSpace(strings.TrimPrefix(trimmed, linkPrefix))
				continue
			case strings.HasPrefix(trimmed, instructorPrefix):
				course.Instructor = strings.TrimSpace(strings.TrimPrefix(trimmed, instructorPrefix))
				continue
			default:
				inHeader = false
			}
		}
		bodyLines = append(bodyLines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to scan course document: %w", err)
	}
	if course.Title == "" {
		return nil, nil, fmt.Errorf("course document has no title")
	}

	chunks, err := p.chunkBody(course, bodyLines)
	if err != nil {
		return nil, nil, err
	}
	return course, chunks, nil
}

// section is one lesson's (or the preamble's) accumulated text.
type section struct {
	lessonNumber int
	lines        []string
}

func (p *Processor) chunkBody(course *datatypes.Course, bodyLines []string) ([]datatypes.CourseChunk, error) {
	sections := []section{{lessonNumber: -1}}
	current := &sections[0]

	for _, line := range bodyLines {
		trimmed := strings.TrimSpace(line)
		if m := lessonHeaderRegex.FindStringSubmatch(trimmed); m != nil {
			number, err := strconv.Atoi(m[1])
			if err != nil {
				return nil, fmt.Errorf("bad lesson number in %q: %w", trimmed, err)
			}
			course.Lessons = append(course.Lessons, datatypes.Lesson{
				LessonNumber: number,
				Title:        strings.TrimSpace(m[2]),
			})
			sections = append(sections, section{lessonNumber: number})
			current = &sections[len(sections)-1]
			continue
		}
		if strings.HasPrefix(trimmed, lessonLinkPrefix) && current.lessonNumber >= 0 {
			link := strings.TrimSpace(strings.TrimPrefix(trimmed, lessonLinkPrefix))
			for i := range course.Lessons {
				if course.Lessons[i].LessonNumber == current.lessonNumber {
					course.Lessons[i].LessonLink = link
				}
			}
			continue
		}
		current.lines = append(current.lines, line)
	}

	var chunks []datatypes.CourseChunk
	chunkIndex := 0
	for _, sec := range sections {
		text := strings.TrimSpace(strings.Join(sec.lines, "\n"))
		if text == "" {
			continue
		}
		pieces, err := p.splitter.SplitText(text)
		if err != nil {
			return nil, fmt.Errorf("failed to split lesson %d of %q: %w",
				sec.lessonNumber, course.Title, err)
		}
		for i, piece := range pieces {
			content := piece
			if i == 0 && sec.lessonNumber >= 0 {
				content = fmt.Sprintf("Course %s Lesson %d content: %s",
					course.Title, sec.lessonNumber, piece)
			}
			chunks = append(chunks, datatypes.CourseChunk{
				Content:      content,
				CourseTitle:  course.Title,
				LessonNumber: sec.lessonNumber,
				ChunkIndex:   chunkIndex,
			})
			chunkIndex++
		}
	}
	return chunks, nil
}

// CourseFiles lists the ingestible documents directly under dir, sorted by
// name. Hidden files and unknown extensions are skipped.
func CourseFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read course folder %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".txt", ".md":
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	return paths, nil
}
