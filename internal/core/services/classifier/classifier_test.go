package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/matburt/meeting-notes-handler/internal/core/domain"
)

func TestClassify_GeminiNotesAreEphemeral(t *testing.T) {
	svc := New()

	got := svc.Classify("Notes by Gemini", "", "")

	assert.Equal(t, domain.ClassEphemeral, got.Class)
	assert.Greater(t, got.Confidence, 0.5)
	assert.Contains(t, got.Signals, "title: gemini notes")
}

func TestClassify_TranscriptTitle(t *testing.T) {
	svc := New()

	got := svc.Classify("Meeting Transcript 2024-07-15", "", "")

	assert.Equal(t, domain.ClassEphemeral, got.Class)
}

func TestClassify_ProjectDocIsPersistent(t *testing.T) {
	svc := New()

	got := svc.Classify("Project Atlas Plan", "", "")

	assert.Equal(t, domain.ClassPersistent, got.Class)
	assert.Contains(t, got.Signals, "title: project doc")
}

func TestClassify_RoadmapIsPersistent(t *testing.T) {
	svc := New()

	got := svc.Classify("Q3 Roadmap", "", "")

	assert.Equal(t, domain.ClassPersistent, got.Class)
}

func TestClassify_NoSignalIsUnknown(t *testing.T) {
	svc := New()

	got := svc.Classify("Untitled document", "", "")

	assert.Equal(t, domain.ClassUnknown, got.Class)
	assert.Zero(t, got.Confidence)
	assert.Empty(t, got.Signals)
	// Unknown still flows through the diff path.
	assert.True(t, got.Class.Diffable())
}

func TestClassify_ContentIndicatorsBreakTitleSilence(t *testing.T) {
	svc := New()

	got := svc.Classify("Untitled document", "",
		"Meeting started at 14:00.\nParticipants joined shortly after.")

	assert.Equal(t, domain.ClassEphemeral, got.Class)
	assert.Contains(t, got.Signals, "content: meeting started at")
}

func TestClassify_PersistentContentIndicators(t *testing.T) {
	svc := New()

	got := svc.Classify("Untitled document", "",
		"Last updated: 2024-07-01\nDocument owner: alice")

	assert.Equal(t, domain.ClassPersistent, got.Class)
}

func TestClassify_GeminiCalendarURLHint(t *testing.T) {
	svc := New()

	got := svc.Classify("Untitled document",
		"https://docs.google.com/document/d/abc/meet_tnfm_calendar", "")

	assert.Equal(t, domain.ClassEphemeral, got.Class)
	assert.Contains(t, got.Signals, "url: ephemeral hint")
}

func TestClassify_SharedViewURLHint(t *testing.T) {
	svc := New()

	got := svc.Classify("Untitled document",
		"https://docs.google.com/document/d/abc/view?usp=sharing", "")

	assert.Equal(t, domain.ClassPersistent, got.Class)
	assert.Contains(t, got.Signals, "url: persistent hint")
}

func TestClassify_ConfidenceIsShareOfTotal(t *testing.T) {
	svc := New()

	// Title says transcript, body says shared doc: both sides score, the
	// confidence stays below certainty.
	got := svc.Classify("Team Sync Transcript", "",
		"Last updated yesterday.\nShared with the whole team.")

	assert.LessOrEqual(t, got.Confidence, 1.0)
	assert.Greater(t, got.Confidence, 0.0)
	assert.Less(t, got.Confidence, 1.0)
}

func TestClassify_BareBacklogTitle(t *testing.T) {
	svc := New()

	got := svc.Classify("backlog", "", "")

	assert.Equal(t, domain.ClassPersistent, got.Class)
	assert.InDelta(t, 1.0, got.Confidence, 1e-9)
}
