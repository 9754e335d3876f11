package pagedoc

import (
	"context"
	"time"
)

// Stage identifies where in the pipeline a run currently is.
// Stages only ever move forward within a run.
type Stage string

// Pipeline stages in order. Done, Error and Cancelled are terminal.
const (
	StageIdle              Stage = "idle"
	StageDetectingPageType Stage = "detecting_page_type"
	StageExtracting        Stage = "extracting"
	StageTranslating       Stage = "translating"
	StageSummarizing       Stage = "summarizing"
	StageGenerating        Stage = "generating"
	StageDone              Stage = "done"
	StageError             Stage = "error"
	StageCancelled         Stage = "cancelled"
)

// stageOrder fixes the forward-only ordering of stages. Terminal stages
// share the highest rank so any of them can follow any working stage.
var stageOrder = map[Stage]int{
	StageIdle:              0,
	StageDetectingPageType: 1,
	StageExtracting:        2,
	StageTranslating:       3,
	StageSummarizing:       4,
	StageGenerating:        5,
	StageDone:              6,
	StageError:             6,
	StageCancelled:         6,
}

// Terminal reports whether the stage ends a run.
func (s Stage) Terminal() bool {
	return s == StageDone || s == StageError || s == StageCancelled
}

// CanTransitionTo reports whether moving from s to next respects the
// forward-only ordering.
func (s Stage) CanTransitionTo(next Stage) bool {
	return stageOrder[next] >= stageOrder[s]
}

// Fixed progress checkpoints reported to the polling caller. Sub-steps vary
// wildly in duration; fixed checkpoints still guarantee visible forward
// motion.
const (
	ProgressStart          = 0
	ProgressPageTypeKnown  = 18
	ProgressExtracted      = 20
	ProgressTranslationEnd = 60 // translation fills 20..60 by chunk weight
	ProgressSummarized     = 65
	ProgressDone           = 100
)

// ProcessingState is the single per-run record read by a polling caller.
// Progress is monotonically non-decreasing within a run.
type ProcessingState struct {
	RunID        string    `json:"runId,omitempty"`
	Stage        Stage     `json:"stage"`
	Progress     int       `json:"progress"`
	IsProcessing bool      `json:"isProcessing"`
	StartTime    time.Time `json:"startTime,omitempty"`

	// Set only after a terminal Error transition.
	ErrorCode    string `json:"errorCode,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// Format identifies the output document format.
type Format string

// Supported output formats.
const (
	FormatMarkdown Format = "markdown"
	FormatEPUB     Format = "epub"
)

// Request describes one conversion run.
type Request struct {
	// Source page. URL is fetched when HTML is empty; pre-rendered HTML
	// takes precedence when both are set.
	URL  string
	HTML string

	OutputFormat Format

	// Target language as an ISO 639-1 code. Empty disables translation.
	TargetLanguage string

	// Model identifier used for provider dispatch on all model calls.
	Model string

	// Append a model-generated summary to the result.
	Summarize bool
}

// Validate returns an error if the request cannot start a run.
func (r *Request) Validate() error {
	if r.URL == "" && r.HTML == "" {
		return Errorf(EINVALID, "request requires a URL or pre-rendered HTML")
	}
	if r.OutputFormat == "" {
		return Errorf(EINVALID, "request requires an output format")
	}
	if r.TargetLanguage != "" && !ValidLanguageCode(r.TargetLanguage) {
		return Errorf(EINVALID, "invalid target language code %q", r.TargetLanguage)
	}
	return nil
}

// Translate reports whether the run includes a translation stage.
func (r *Request) Translate() bool {
	return r.TargetLanguage != ""
}

// Artifact is a generated output document.
type Artifact struct {
	Name     string
	MIMEType string
	Data     []byte
}

// Generator renders an ExtractionResult into an output document.
type Generator interface {
	// Format returns the output format this generator produces.
	Format() Format

	// Generate renders the result. The progress callback, if non-nil,
	// receives values in 0..100 local to generation.
	Generate(ctx context.Context, result *ExtractionResult, progress func(int)) (*Artifact, error)
}

// Fetcher retrieves rendered HTML from URLs.
// Implementations may use browser automation to handle JavaScript-rendered
// content.
type Fetcher interface {
	// Fetch navigates to the URL and returns the rendered HTML.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases underlying resources.
	// Must be called when the Fetcher is no longer needed.
	Close() error
}

// PageExtractor turns raw page markup into the normalized content model.
// A nil selector set requests heuristic extraction; with selectors the
// extractor applies the site-specific recipe.
type PageExtractor interface {
	Extract(html string, selectors *SelectorSet) (*ExtractionResult, error)
}
