package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-agent-go/internal/types"
)

func TestChunkSections(t *testing.T) {
	chunker := NewSectionChunker()

	sections, err := chunker.ChunkSections(sampleResume)
	require.NoError(t, err)

	// 第一个标题之前的内容进入header
	assert.Contains(t, sections[types.SectionHeader], "John Smith")
	assert.Contains(t, sections[types.SectionHeader], "Senior Software Engineer")

	assert.Contains(t, sections[types.SectionSummary], "Seasoned engineer")
	assert.NotContains(t, sections[types.SectionSummary], "PROFESSIONAL SUMMARY")

	assert.Contains(t, sections[types.SectionExperience], "Acme Corp")
	assert.Contains(t, sections[types.SectionEducation], "State University")
	assert.Contains(t, sections[types.SectionSkills], "Kubernetes")
	assert.Contains(t, sections[types.SectionCertifications], "AWS Certified Solutions Architect")
}

func TestChunkSectionsNoHeadings(t *testing.T) {
	chunker := NewSectionChunker()

	_, err := chunker.ChunkSections("nothing that looks like a heading here")
	require.ErrorIs(t, err, ErrNoSections)
}

func TestChunkSectionsStripsMarkup(t *testing.T) {
	raw := "<b>Jane Doe</b>\n\n<b>SUMMARY</b>\n<i>A decade</i> of experience.\n"
	chunker := NewSectionChunker()

	sections, err := chunker.ChunkSections(raw)
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", strings.TrimSpace(sections[types.SectionHeader]))
	assert.Contains(t, sections[types.SectionSummary], "A decade of experience.")
	assert.NotContains(t, sections[types.SectionSummary], "<i>")
}

// 同类章节出现多次时内容要累积而不是覆盖
func TestChunkSectionsAccumulates(t *testing.T) {
	raw := "Header line.\n\nEXPERIENCE\nFirst employer details that are long enough to matter here padding padding padding padding padding padding padding padding padding padding padding padding padding padding padding padding padding padding padding padding padding padding padding padding.\n\nEXPERIENCE\nSecond employer details.\n"
	chunker := NewSectionChunker()

	sections, err := chunker.ChunkSections(raw)
	require.NoError(t, err)

	assert.Contains(t, sections[types.SectionExperience], "First employer")
	assert.Contains(t, sections[types.SectionExperience], "Second employer")
}

func TestChunkSectionsCertificationSweep(t *testing.T) {
	// 证书行散落在经历章节里，全文扫描要把它补进证书章节
	raw := "Header line.\n\nEXPERIENCE\nAcme Corp\nAWS Certified Solutions Architect obtained in 2020\n"
	chunker := NewSectionChunker()

	sections, err := chunker.ChunkSections(raw)
	require.NoError(t, err)

	assert.Contains(t, sections[types.SectionCertifications], "AWS Certified Solutions Architect")
}

func TestSanitizeText(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"邮箱", "contact: john.smith@example.com here", "contact: " + EmailRedacted + " here"},
		{"电话", "call 123-456-7890 now", "call " + PhoneRedacted + " now"},
		{"带国家码电话", "call +1 (555) 123-4567 now", "call " + PhoneRedacted + " now"},
		{"LinkedIn全链接", "see https://www.linkedin.com/in/jsmith for more", "see " + LinkedInRedacted + " for more"},
		{"LinkedIn裸链接", "see linkedin.com/in/jsmith for more", "see " + LinkedInRedacted + " for more"},
		{"GitHub全链接", "code at https://github.com/jsmith/repo end", "code at " + GitHubRedacted + " end"},
		{"GitHub裸链接", "code at github.com/jsmith end", "code at " + GitHubRedacted + " end"},
		{"普通文本不变", "ten years of Go", "ten years of Go"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SanitizeText(tc.input))
		})
	}
}

func TestSanitizeSections(t *testing.T) {
	sections := types.SectionMap{
		types.SectionHeader:  "John Smith john@example.com",
		types.SectionSummary: "Ten years of Go.",
	}

	sanitized := SanitizeSections(sections)
	assert.Equal(t, "John Smith "+EmailRedacted, sanitized[types.SectionHeader])
	assert.Equal(t, "Ten years of Go.", sanitized[types.SectionSummary])
}
