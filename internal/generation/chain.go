package generation

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"mediaforge/internal/infra"
	"mediaforge/internal/providers/replicate"
)

// ChainContext is the provider-neutral material an input builder works from.
type ChainContext struct {
	Prompt      string
	AspectRatio string
	SourceImage string
	MaskImage   string
	Seed        *int
	Strength    float64
}

// Candidate is one backend identity considered for an action: a pinned
// version or a named slug, plus a pure input builder. Candidate order encodes
// fallback priority.
type Candidate struct {
	ID         string
	Version    string
	Slug       string
	BuildInput func(*ChainContext) map[string]any
}

// ExhaustionPolicy decides what an exhausted chain means for the caller.
type ExhaustionPolicy int

const (
	// PolicySoft reports exhaustion as a "no available model" result; the
	// chain returns an empty URL with the attempt log and no error.
	PolicySoft ExhaustionPolicy = iota
	// PolicyFatal turns exhaustion into a *ChainExhaustedError.
	PolicyFatal
)

// Attempt records one candidate's outcome inside a chain.
type Attempt struct {
	Candidate string `json:"candidate"`
	Err       string `json:"error,omitempty"`
}

// ChainResult is the outcome of a fallback chain: the winning URL (empty on
// soft exhaustion) and the full attempt log including the successful attempt.
type ChainResult struct {
	URL      string    `json:"url,omitempty"`
	Attempts []Attempt `json:"attempts"`
}

// predictionAPI is the slice of the replicate client the orchestrator needs.
type predictionAPI interface {
	CreatePrediction(ctx context.Context, version string, input map[string]any) (*replicate.Prediction, error)
	CreateModelPrediction(ctx context.Context, slug string, input map[string]any) (*replicate.Prediction, error)
	Wait(ctx context.Context, pred *replicate.Prediction, budget replicate.PollBudget) (*replicate.Prediction, error)
}

// Options configures the orchestrator.
type Options struct {
	Client      predictionAPI
	Models      ModelConfig
	ImageBudget replicate.PollBudget
	VideoBudget replicate.PollBudget
	// BatchConcurrency caps parallel batch task execution; it defaults to 2
	// to respect upstream rate limits.
	BatchConcurrency int
	Logger           *infra.Logger
	// Rand is injected by tests for deterministic seeds and jitter.
	Rand *rand.Rand
}

// Orchestrator brokers creative generation requests across candidate models.
type Orchestrator struct {
	client      predictionAPI
	models      ModelConfig
	imageBudget replicate.PollBudget
	videoBudget replicate.PollBudget
	batchCap    int
	logger      *infra.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewOrchestrator wires the orchestrator with its dependencies.
func NewOrchestrator(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	imageBudget := opts.ImageBudget
	if imageBudget.MaxTries <= 0 {
		imageBudget = replicate.ImagePollBudget
	}
	videoBudget := opts.VideoBudget
	if videoBudget.MaxTries <= 0 {
		videoBudget = replicate.VideoPollBudget
	}
	batchCap := opts.BatchConcurrency
	if batchCap <= 0 {
		batchCap = 2
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Orchestrator{
		client:      opts.Client,
		models:      opts.Models,
		imageBudget: imageBudget,
		videoBudget: videoBudget,
		batchCap:    batchCap,
		logger:      logger,
		rng:         rng,
	}
}

// RunChain attempts candidates strictly in order until one yields a usable
// URL or the list is exhausted. Every candidate failure becomes an attempt
// log entry; only an *InvalidInputError aborts the chain early.
func (o *Orchestrator) RunChain(ctx context.Context, candidates []Candidate, cctx *ChainContext, policy ExhaustionPolicy) (*ChainResult, error) {
	return o.runChain(ctx, candidates, cctx, o.imageBudget, policy)
}

func (o *Orchestrator) runChain(ctx context.Context, candidates []Candidate, cctx *ChainContext, budget replicate.PollBudget, policy ExhaustionPolicy) (*ChainResult, error) {
	attempts := make([]Attempt, 0, len(candidates))
	for _, cand := range candidates {
		url, err := o.attempt(ctx, cand, cctx, budget)
		if err != nil {
			var invalid *InvalidInputError
			if errors.As(err, &invalid) {
				return nil, err
			}
			o.logger.Warn().
				Str("candidate", cand.ID).
				Err(err).
				Msg("generation: candidate failed, moving to next")
			attempts = append(attempts, Attempt{Candidate: cand.ID, Err: err.Error()})
			continue
		}
		attempts = append(attempts, Attempt{Candidate: cand.ID})
		return &ChainResult{URL: url, Attempts: attempts}, nil
	}
	if policy == PolicyFatal {
		return nil, &ChainExhaustedError{Attempts: attempts}
	}
	o.logger.Warn().
		Int("candidates", len(candidates)).
		Msg("generation: chain exhausted, no available model")
	return &ChainResult{Attempts: attempts}, nil
}

func (o *Orchestrator) attempt(ctx context.Context, cand Candidate, cctx *ChainContext, budget replicate.PollBudget) (string, error) {
	input := cand.BuildInput(cctx)

	var pred *replicate.Prediction
	var err error
	switch {
	case cand.Version != "":
		pred, err = o.client.CreatePrediction(ctx, cand.Version, input)
	case cand.Slug != "":
		pred, err = o.client.CreateModelPrediction(ctx, cand.Slug, input)
	default:
		err = replicate.ErrMissingVersion
	}
	if err != nil {
		return "", err
	}

	final, err := o.client.Wait(ctx, pred, budget)
	if err != nil {
		return "", err
	}
	url, ok := replicate.FirstURL(final.Output)
	if !ok {
		return "", ErrNoUsableOutput
	}
	o.logger.Debug().
		Str("candidate", cand.ID).
		Str("prediction_id", final.ID).
		Str("url", url).
		Msg("generation: candidate produced output")
	return url, nil
}

func (o *Orchestrator) randFloat() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.rng.Float64()
}

func (o *Orchestrator) randSeed() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.rng.Intn(1 << 30)
}
