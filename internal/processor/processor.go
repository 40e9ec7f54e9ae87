package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/callscribe/internal/audio"
	"github.com/MikeSquared-Agency/callscribe/internal/extractor"
	"github.com/MikeSquared-Agency/callscribe/internal/hermes"
	"github.com/MikeSquared-Agency/callscribe/internal/results"
	"github.com/MikeSquared-Agency/callscribe/internal/store"
)

const defaultMimeType = "audio/mpeg"

// ErrNoRecording is returned when the call row has no recording URL.
var ErrNoRecording = errors.New("call has no recording url")

type CallStore interface {
	GetCall(ctx context.Context, id uuid.UUID) (*store.Call, error)
	ActiveQuestions(ctx context.Context) ([]extractor.Question, error)
	CampaignQuestions(ctx context.Context, campaignID string) ([]extractor.Question, error)
	SaveTranscription(ctx context.Context, id uuid.UUID, rec store.TranscriptionRecord, analysis *store.CallAnalysis) error
}

type AudioFetcher interface {
	Fetch(ctx context.Context, url string) (*audio.Recording, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, prompt string, audio []byte, mimeType string) (string, error)
}

type Answerer interface {
	Answer(ctx context.Context, transcript string, questions []extractor.Question) ([]string, error)
}

type Publisher interface {
	PublishProcessed(evt hermes.CallProcessed) error
	PublishFailed(evt hermes.CallFailed) error
}

type Notifier interface {
	PostCallSummary(ctx context.Context, doc *results.Document) (string, error)
}

// Deps are the collaborators of a Processor. Publisher and Notifier are optional.
type Deps struct {
	Store       CallStore
	Fetcher     AudioFetcher
	Transcriber Transcriber
	Answerer    Answerer
	Publisher   Publisher
	Notifier    Notifier
}

type Options struct {
	// MimeType forces the audio type sent for transcription. When empty the recording's
	// Content-Type is used if it names an audio type, else audio/mpeg.
	MimeType          string
	OutputDir         string
	CampaignQuestions bool
	WriteCallAnalysis bool
}

// Result is the outcome of one successful run.
type Result struct {
	Document       *results.Document
	OutputFile     string
	AnswersMissing int
}

// Processor runs the transcription pipeline for one call at a time.
type Processor struct {
	deps   Deps
	opts   Options
	logger *slog.Logger
	now    func() time.Time

	mu sync.Mutex
}

func New(deps Deps, opts Options, logger *slog.Logger) *Processor {
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	return &Processor{
		deps:   deps,
		opts:   opts,
		logger: logger,
		now:    time.Now,
	}
}

// Process fetches the call, transcribes its recording, answers the configured questions
// and persists the outcome. Runs are serialized.
func (p *Processor) Process(ctx context.Context, callID uuid.UUID) (*Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := p.now()
	p.logger.Info("processing call", "call_id", callID)

	res, err := p.run(ctx, callID)
	if err != nil {
		p.logger.Error("call processing failed", "call_id", callID, "error", err)
		if p.deps.Publisher != nil {
			evt := hermes.CallFailed{
				CallID:   callID.String(),
				Error:    err.Error(),
				FailedAt: p.now().UTC(),
			}
			if perr := p.deps.Publisher.PublishFailed(evt); perr != nil {
				p.logger.Warn("failed to publish event", "subject", hermes.SubjectCallFailed, "error", perr)
			}
		}
		return nil, err
	}

	p.logger.Info("call processed",
		"call_id", callID,
		"questions", len(res.Document.QuestionsAndAnswers),
		"answers_missing", res.AnswersMissing,
		"output_file", res.OutputFile,
		"duration_ms", p.now().Sub(start).Milliseconds(),
	)

	if p.deps.Publisher != nil {
		evt := hermes.CallProcessed{
			CallID:            callID.String(),
			TranscriptionLen:  len(res.Document.Transcription),
			QuestionsAnswered: len(res.Document.QuestionsAndAnswers),
			AnswersMissing:    res.AnswersMissing,
			OutputFile:        res.OutputFile,
			ProcessedAt:       res.Document.ProcessedAt,
		}
		if err := p.deps.Publisher.PublishProcessed(evt); err != nil {
			p.logger.Warn("failed to publish event", "subject", hermes.SubjectCallProcessed, "error", err)
		}
	}

	if p.deps.Notifier != nil {
		if _, err := p.deps.Notifier.PostCallSummary(ctx, res.Document); err != nil {
			p.logger.Error("slack post failed", "call_id", callID, "error", err)
		}
	}
	return res, nil
}

// HandleCallRequested runs a call requested over NATS. It satisfies hermes.CallHandler.
func (p *Processor) HandleCallRequested(ctx context.Context, callID uuid.UUID) {
	// Failures are logged and published by Process.
	_, _ = p.Process(ctx, callID)
}

func (p *Processor) run(ctx context.Context, callID uuid.UUID) (*Result, error) {
	call, err := p.deps.Store.GetCall(ctx, callID)
	if err != nil {
		return nil, fmt.Errorf("get call: %w", err)
	}
	if strings.TrimSpace(call.Recording()) == "" {
		return nil, ErrNoRecording
	}
	p.logger.Info("call found",
		"call_id", callID,
		"agent", deref(call.AgentName),
		"campaign", deref(call.CampaignName),
	)

	questions := p.loadQuestions(ctx, call)

	rec, err := p.deps.Fetcher.Fetch(ctx, call.Recording())
	if err != nil {
		return nil, fmt.Errorf("fetch audio: %w", err)
	}

	mimeType := p.audioType(rec)
	transcript, err := p.deps.Transcriber.Transcribe(ctx, extractor.TranscriptionPrompt, rec.Data, mimeType)
	if err != nil {
		return nil, fmt.Errorf("transcribe: %w", err)
	}
	if strings.TrimSpace(transcript) == "" {
		return nil, errors.New("transcribe: empty transcription")
	}
	p.logger.Info("transcription complete", "call_id", callID, "chars", len(transcript), "mime_type", mimeType)

	var answers []string
	if len(questions) > 0 {
		answers, err = p.deps.Answerer.Answer(ctx, transcript, questions)
		if err != nil {
			p.logger.Warn("answering failed, continuing without answers", "call_id", callID, "error", err)
			answers = nil
		}
	}

	processedAt := p.now()
	extractor.Annotate(questions, answers, processedAt)

	var analysis *store.CallAnalysis
	if p.opts.WriteCallAnalysis {
		analysis = &store.CallAnalysis{
			Transcription: transcript,
			Answers:       answerMap(questions),
			ProcessedAt:   processedAt.UTC(),
		}
	}
	err = p.deps.Store.SaveTranscription(ctx, callID, store.TranscriptionRecord{
		Transcription:     transcript,
		TranscribedAt:     processedAt.UTC(),
		QuestionsAnswered: len(questions),
	}, analysis)
	if err != nil {
		return nil, fmt.Errorf("save transcription: %w", err)
	}

	doc := &results.Document{
		CallID:              call.ID,
		CallData:            call,
		Transcription:       transcript,
		QuestionsAndAnswers: questions,
		ProcessedAt:         processedAt,
	}
	path, err := results.Write(p.opts.OutputDir, doc)
	if err != nil {
		return nil, fmt.Errorf("write results: %w", err)
	}

	return &Result{
		Document:       doc,
		OutputFile:     path,
		AnswersMissing: countMissing(answers),
	}, nil
}

// loadQuestions never fails the run: a lookup error means no questions.
func (p *Processor) loadQuestions(ctx context.Context, call *store.Call) []extractor.Question {
	var (
		questions []extractor.Question
		err       error
	)
	if p.opts.CampaignQuestions && call.Campaign() != "" {
		questions, err = p.deps.Store.CampaignQuestions(ctx, call.Campaign())
	} else {
		questions, err = p.deps.Store.ActiveQuestions(ctx)
	}
	if err != nil {
		p.logger.Warn("question lookup failed, continuing with transcription only", "call_id", call.ID, "error", err)
		return nil
	}
	if len(questions) == 0 {
		p.logger.Warn("no active questions, transcription only", "call_id", call.ID)
	}
	return questions
}

func (p *Processor) audioType(rec *audio.Recording) string {
	if p.opts.MimeType != "" {
		return p.opts.MimeType
	}
	mediaType, _, err := mime.ParseMediaType(rec.ContentType)
	if err == nil && strings.HasPrefix(mediaType, "audio/") {
		return mediaType
	}
	return defaultMimeType
}

func answerMap(questions []extractor.Question) map[string]string {
	out := make(map[string]string, len(questions))
	for _, q := range questions {
		if q.AnsweredAt != nil {
			out[q.ID] = q.Answer
		}
	}
	return out
}

func countMissing(answers []string) int {
	n := 0
	for _, a := range answers {
		if a == extractor.AnswerNotFound {
			n++
		}
	}
	return n
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
