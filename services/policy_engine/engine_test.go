// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package policy_engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *PolicyEngine {
	t.Helper()
	engine, err := NewPolicyEngine()
	require.NoError(t, err, "embedded policy file must load")
	return engine
}

func TestScanFileContent_CourseDocuments(t *testing.T) {
	engine := newTestEngine(t)

	tests := []struct {
		name            string
		content         string
		expectedClass   string
		expectedPattern string
	}{
		{
			name: "clean course document",
			content: "Course Title: Introduction to Testing\n\n" +
				"Lesson 0: Getting Started\n" +
				"Install the test framework and run your first suite.\n",
		},
		{
			name: "document leaking an AWS key",
			content: "Lesson 3: Deploying to the Cloud\n" +
				"Use the demo credential AKIA1234567890123456 to follow along.\n",
			expectedClass:   "secret",
			expectedPattern: "AWS_ACCESS_KEY_ID",
		},
		{
			name: "document with an instructor email",
			content: "Course Instructor: Jane Doe\n" +
				"Office hours: email jdoe@example.com to book a slot.\n",
			expectedClass:   "pii",
			expectedPattern: "EMAIL_ADDRESS",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			findings := engine.ScanFileContent(tc.content)

			if tc.expectedClass == "" {
				assert.Empty(t, findings, "clean content must produce no findings")
				assert.Equal(t, "public", engine.ClassifyData([]byte(tc.content)))
				return
			}

			require.NotEmpty(t, findings)
			first := findings[0]
			assert.Equal(t, tc.expectedClass, first.ClassificationName)
			assert.Equal(t, tc.expectedPattern, first.PatternId)
			assert.Equal(t, 2, first.LineNumber,
				"the finding must point at the offending line, not the document")
			assert.Equal(t, tc.expectedClass, engine.ClassifyData([]byte(tc.content)),
				"the fast classifier must agree with the detailed scan")
		})
	}
}

func TestScanQuery_BlocksSensitiveQueries(t *testing.T) {
	engine := newTestEngine(t)

	findings := engine.ScanQuery("why does AKIA1234567890123456 fail to authenticate?")
	require.NotEmpty(t, findings, "a query carrying a secret must be flagged")
	assert.Equal(t, "secret", findings[0].ClassificationName)

	findings = engine.ScanQuery("what does lesson 2 say about mocks?")
	assert.Empty(t, findings, "an ordinary course question must pass")
}

// TestClassifiersSortedByPriority verifies secrets outrank PII, so mixed
// content is classified by the stricter rule.
func TestClassifiersSortedByPriority(t *testing.T) {
	engine := newTestEngine(t)
	require.GreaterOrEqual(t, len(engine.Classifiers), 2)

	first := engine.Classifiers[0]
	last := engine.Classifiers[len(engine.Classifiers)-1]
	assert.GreaterOrEqual(t, first.Priority, last.Priority)
	assert.Equal(t, "secret", first.Name)
}

func TestScanFileContent_Concurrent(t *testing.T) {
	engine := newTestEngine(t)
	content := "Lesson 1: Secrets\ndo not commit AKIA1234567890123456 anywhere\n"

	t.Run("parallel", func(t *testing.T) {
		for i := 0; i < 100; i++ {
			t.Run("scan", func(t *testing.T) {
				t.Parallel()
				assert.NotEmpty(t, engine.ScanFileContent(content))
			})
		}
	})
}

func BenchmarkScanCleanDocument(b *testing.B) {
	engine, _ := NewPolicyEngine()
	content := "Lesson 2: Mocks and Fixtures\nmocks replace collaborators with fakes\n"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		engine.ScanFileContent(content)
	}
}

func BenchmarkScanLeakyDocument(b *testing.B) {
	engine, _ := NewPolicyEngine()
	content := "Lesson 3: Deploying\nthe demo key is AKIA1234567890123456\n"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		engine.ScanFileContent(content)
	}
}
