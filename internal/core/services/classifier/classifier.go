// Package classifier decides whether a meeting document is ephemeral
// (always new per occurrence, like transcripts and generated notes) or
// persistent (a shared document that evolves across occurrences). The
// class decides whether the diff engine runs at all.
package classifier

import (
	"regexp"
	"strings"

	"github.com/matburt/meeting-notes-handler/internal/core/domain"
	"github.com/matburt/meeting-notes-handler/internal/logger"
)

// signalPattern is one weighted title pattern. Longer patterns are more
// specific, so the weight scales with pattern length.
type signalPattern struct {
	re    *regexp.Regexp
	label string
}

func pattern(label, expr string) signalPattern {
	return signalPattern{re: regexp.MustCompile(`(?i)` + expr), label: label}
}

// Title patterns for per-occurrence content: generated notes,
// transcripts, recordings, date-stamped artefacts.
var ephemeralTitlePatterns = []signalPattern{
	pattern("gemini notes", `notes\s+by\s+gemini|gemini\s+notes|meeting\s+notes.*gemini`),
	pattern("auto-generated", `auto.*generated.*notes`),
	pattern("transcript", `transcript`),
	pattern("chat log", `chat\s+log|meeting\s+chat`),
	pattern("recording", `recording`),
	pattern("dated artefact", `\d{4}[-/]\d{2}[-/]\d{2}.*(?:notes|transcript|summary)`),
	pattern("timestamped", `(?:meeting|notes).*\d{2}:\d{2}`),
	pattern("session notes", `session\s+notes`),
	pattern("numbered summary", `meeting\s+summary.*\d+`),
}

// Title patterns for shared, evolving documents: specs, boards,
// backlogs, running logs.
var persistentTitlePatterns = []signalPattern{
	pattern("project doc", `project.*(?:plan|doc|spec)`),
	pattern("requirements", `requirements.*doc`),
	pattern("specification", `specification`),
	pattern("design doc", `design.*doc`),
	pattern("planning board", `planning.*board`),
	pattern("sprint board", `sprint.*(?:board|backlog)`),
	pattern("backlog", `backlog`),
	pattern("roadmap", `roadmap`),
	pattern("timeline", `timeline`),
	pattern("shared doc", `shared.*doc|team.*doc`),
	pattern("status doc", `project.*status`),
	pattern("action items", `action.*items`),
	pattern("decision log", `decisions.*log`),
}

// Phrases inside the body that betray the class.
var ephemeralContentIndicators = []string{
	"transcript of meeting",
	"meeting started at",
	"meeting ended at",
	"participants joined",
	"gemini took notes",
	"auto-generated summary",
}

var persistentContentIndicators = []string{
	"last updated",
	"version history",
	"edit history",
	"contributors:",
	"document owner",
	"shared with",
}

// Weights for the secondary signal sources relative to title patterns.
const (
	contentWeight = 0.5
	urlWeight     = 0.3
)

// Service scores documents against the signal tables.
type Service struct{}

// New creates a document classifier.
func New() *Service {
	return &Service{}
}

// Classify scores title, URL and content signals and returns the
// winning class with its share of the total score as confidence. With
// no signal at all the class is Unknown with zero confidence; the
// filter treats Unknown like persistent, so no document is dropped on
// classifier silence.
func (s *Service) Classify(title, url, content string) domain.Classification {
	titleLower := strings.ToLower(title)
	contentLower := strings.ToLower(content)

	var signals []string

	ephemeral := scorePatterns(titleLower, ephemeralTitlePatterns, &signals)
	persistent := scorePatterns(titleLower, persistentTitlePatterns, &signals)

	if content != "" {
		ephemeral += scoreIndicators(contentLower, ephemeralContentIndicators, &signals) * contentWeight
		persistent += scoreIndicators(contentLower, persistentContentIndicators, &signals) * contentWeight
	}

	if url != "" {
		if hint := scoreURL(strings.ToLower(url)); hint > 0 {
			ephemeral += hint * urlWeight
			signals = append(signals, "url: ephemeral hint")
		} else if hint < 0 {
			persistent += -hint * urlWeight
			signals = append(signals, "url: persistent hint")
		}
	}

	total := ephemeral + persistent
	if total == 0 {
		return domain.Classification{Class: domain.ClassUnknown}
	}

	result := domain.Classification{Signals: signals}
	if ephemeral > persistent {
		result.Class = domain.ClassEphemeral
		result.Confidence = ephemeral / total
	} else {
		result.Class = domain.ClassPersistent
		result.Confidence = persistent / total
	}
	if result.Confidence > 1.0 {
		result.Confidence = 1.0
	}

	logger.Debug("classified %q as %s (confidence %.2f)", title, result.Class, result.Confidence)
	return result
}

// scorePatterns weights each matching pattern by its specificity
// (expression length) and match count.
func scorePatterns(text string, patterns []signalPattern, signals *[]string) float64 {
	score := 0.0
	for _, p := range patterns {
		matches := p.re.FindAllStringIndex(text, -1)
		if len(matches) == 0 {
			continue
		}
		score += float64(len(p.re.String())) / 100 * float64(len(matches))
		*signals = append(*signals, "title: "+p.label)
	}
	return score
}

// scoreIndicators returns the fraction of indicator phrases present.
func scoreIndicators(content string, indicators []string, signals *[]string) float64 {
	hits := 0
	for _, phrase := range indicators {
		if strings.Contains(content, phrase) {
			hits++
			*signals = append(*signals, "content: "+phrase)
		}
	}
	if len(indicators) == 0 {
		return 0.0
	}
	return float64(hits) / float64(len(indicators))
}

// scoreURL returns a positive hint for ephemeral URL shapes, negative
// for persistent ones.
func scoreURL(url string) float64 {
	switch {
	// Meet's calendar-attached Gemini notes carry this marker.
	case strings.Contains(url, "meet_tnfm_calendar"):
		return 2.0
	case strings.Contains(url, "transcript"), strings.Contains(url, "recording"):
		return 1.5
	case strings.Contains(url, "edit") && !strings.Contains(url, "sharing"):
		return -1.0
	case strings.Contains(url, "view") && strings.Contains(url, "usp=sharing"):
		return -0.5
	}
	return 0.0
}
