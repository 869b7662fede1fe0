package extractor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matburt/meeting-notes-handler/internal/core/domain"
)

var testKey = domain.OccurrenceKey{SeriesID: "sprint_alice_mon1400_abc123", Date: "2024-07-15"}

func TestExtract_EmptyInput(t *testing.T) {
	svc := New()

	for _, input := range []string{"", "   ", "\n\n\n"} {
		sig := svc.Extract(testKey, input)

		require.NotNil(t, sig)
		assert.Empty(t, sig.Sections)
		assert.Zero(t, sig.TotalWordCount)
		assert.Zero(t, sig.TotalParagraphCount)
		assert.Equal(t, domain.SignatureSchemaVersion, sig.SchemaVersion)
		assert.NotEmpty(t, sig.FullHash)
	}
}

func TestExtract_MarkdownHeaders(t *testing.T) {
	svc := New()
	text := `# Goals

Ship v1

Ship v2

## Risks

Delay risk`

	sig := svc.Extract(testKey, text)

	require.Len(t, sig.Sections, 2)
	assert.Equal(t, "Goals", sig.Sections[0].HeaderText)
	assert.Equal(t, 0, sig.Sections[0].Position)
	assert.Equal(t, "Risks", sig.Sections[1].HeaderText)
	assert.Equal(t, 1, sig.Sections[1].Position)

	require.Len(t, sig.Sections[0].Paragraphs, 2)
	assert.Equal(t, "Ship v1", sig.Sections[0].Paragraphs[0].RawText)
	assert.Equal(t, 0, sig.Sections[0].Paragraphs[0].Position)
	assert.Equal(t, "Ship v2", sig.Sections[0].Paragraphs[1].RawText)
	assert.Equal(t, 1, sig.Sections[0].Paragraphs[1].Position)

	assert.Equal(t, 6, sig.TotalWordCount)
	assert.Equal(t, 3, sig.TotalParagraphCount)
}

func TestExtract_ImplicitLeadingSection(t *testing.T) {
	svc := New()
	text := "Preamble before any header.\n\n# Agenda\n\nFirst item"

	sig := svc.Extract(testKey, text)

	require.Len(t, sig.Sections, 2)
	assert.Empty(t, sig.Sections[0].HeaderText)
	assert.Equal(t, 0, sig.Sections[0].Position)
	assert.Equal(t, "Preamble before any header.", sig.Sections[0].Paragraphs[0].RawText)
	assert.Equal(t, "Agenda", sig.Sections[1].HeaderText)
}

func TestExtract_UnderlineHeaders(t *testing.T) {
	svc := New()
	text := "Status Update\n=============\n\nAll green.\n\nNext Steps\n----------\n\nKeep shipping."

	sig := svc.Extract(testKey, text)

	require.Len(t, sig.Sections, 2)
	assert.Equal(t, "Status Update", sig.Sections[0].HeaderText)
	assert.Equal(t, "Next Steps", sig.Sections[1].HeaderText)
	// The underline itself must not become a paragraph.
	require.Len(t, sig.Sections[0].Paragraphs, 1)
	assert.Equal(t, "All green.", sig.Sections[0].Paragraphs[0].RawText)
}

func TestExtract_BoldAndAllCapsHeaders(t *testing.T) {
	svc := New()
	text := "**Action Items:**\n\nFollow up with legal\n\nOPEN QUESTIONS\n\nBudget unclear"

	sig := svc.Extract(testKey, text)

	require.Len(t, sig.Sections, 2)
	assert.Equal(t, "Action Items", sig.Sections[0].HeaderText)
	assert.Equal(t, "OPEN QUESTIONS", sig.Sections[1].HeaderText)
}

func TestExtract_NoHeadersAtAll(t *testing.T) {
	svc := New()
	text := "just one paragraph of plain text\n\nand a second one"

	sig := svc.Extract(testKey, text)

	require.Len(t, sig.Sections, 1)
	assert.Empty(t, sig.Sections[0].HeaderText)
	assert.Len(t, sig.Sections[0].Paragraphs, 2)
}

func TestExtract_HashStableAcrossSurroundings(t *testing.T) {
	svc := New()

	a := svc.Extract(testKey, "# One\n\nshared paragraph text")
	b := svc.Extract(testKey, "intro first\n\n# Other\n\nmore stuff\n\nshared   paragraph\ttext")

	hashOf := func(sig *domain.Signature, text string) string {
		for _, sec := range sig.Sections {
			for _, p := range sec.Paragraphs {
				if p.RawText == text {
					return p.ContentHash
				}
			}
		}
		return ""
	}

	// Whitespace collapses, so both documents carry the identical
	// paragraph and it must hash identically in both.
	assert.Equal(t, hashOf(a, "shared paragraph text"), hashOf(b, "shared paragraph text"))
	assert.NotEmpty(t, hashOf(a, "shared paragraph text"))
}

func TestExtract_HashPreservesCase(t *testing.T) {
	assert.NotEqual(t, HashText("Ship v1"), HashText("ship v1"))
}

func TestExtract_PreviewTruncatesByRunes(t *testing.T) {
	svc := New()
	long := strings.Repeat("ü", 80)

	sig := svc.Extract(testKey, long)

	require.Len(t, sig.Sections, 1)
	para := sig.Sections[0].Paragraphs[0]
	assert.Equal(t, strings.Repeat("ü", PreviewRunes)+"...", para.PreviewText)

	short := svc.Extract(testKey, "short text")
	assert.Equal(t, "short text", short.Sections[0].Paragraphs[0].PreviewText)
}

func TestNormaliseText(t *testing.T) {
	assert.Equal(t, "a b c", NormaliseText("  a\n b\t\tc  "))
	assert.Equal(t, "ab", NormaliseText("a\u200bb"))
	assert.Empty(t, NormaliseText("   \n\t "))
}

func TestExtract_DeterministicFullHash(t *testing.T) {
	svc := New()
	text := "# Goals\n\nShip v1"

	a := svc.Extract(testKey, text)
	b := svc.Extract(testKey, text)

	assert.Equal(t, a.FullHash, b.FullHash)
	assert.NotEqual(t, a.FullHash, svc.Extract(testKey, text+" changed").FullHash)
}
