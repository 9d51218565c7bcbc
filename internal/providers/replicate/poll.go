package replicate

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// PollBudget bounds one poll loop: a fixed delay between status reads and a
// maximum number of reads. Budgets come from configuration so each workload
// can tune them; video jobs get a much larger try budget than interactive
// image edits.
type PollBudget struct {
	Interval time.Duration
	MaxTries int
}

// ImagePollBudget is the default budget for short interactive image jobs
// (roughly a two-minute ceiling).
var ImagePollBudget = PollBudget{Interval: 1200 * time.Millisecond, MaxTries: 100}

// VideoPollBudget is the default budget for long-running video jobs
// (roughly six minutes).
var VideoPollBudget = PollBudget{Interval: 1500 * time.Millisecond, MaxTries: 240}

func (b PollBudget) normalized() PollBudget {
	if b.Interval <= 0 {
		b.Interval = ImagePollBudget.Interval
	}
	if b.MaxTries <= 0 {
		b.MaxTries = ImagePollBudget.MaxTries
	}
	return b
}

// PredictionFailedError reports a provider-side terminal failure or
// cancellation. The poller never retries these.
type PredictionFailedError struct {
	ID     string
	Status string
	Detail string
}

func (e *PredictionFailedError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("replicate: prediction %s %s", e.ID, e.Status)
	}
	return fmt.Sprintf("replicate: prediction %s %s: %s", e.ID, e.Status, e.Detail)
}

// PollTimeoutError reports an exhausted try budget without a terminal state.
type PollTimeoutError struct {
	ID    string
	Tries int
}

func (e *PollTimeoutError) Error() string {
	return fmt.Sprintf("replicate: prediction %s still pending after %d polls", e.ID, e.Tries)
}

// Wait drives a submitted prediction to a terminal state by repeated status
// reads. It returns the prediction as soon as it succeeds, fails with
// *PredictionFailedError on failure or cancellation, and fails with
// *PollTimeoutError once the budget is exhausted. Caller cancellation via ctx
// is honored between reads.
func (c *Client) Wait(ctx context.Context, pred *Prediction, budget PollBudget) (*Prediction, error) {
	if pred == nil {
		return nil, errors.New("replicate: nil prediction")
	}
	budget = budget.normalized()
	current := pred
	for try := 0; ; try++ {
		switch current.Status {
		case StatusSucceeded:
			return current, nil
		case StatusFailed, StatusCanceled:
			return nil, &PredictionFailedError{ID: current.ID, Status: current.Status, Detail: current.ErrorDetail()}
		}
		if try >= budget.MaxTries {
			c.logger.Warn().
				Str("prediction_id", current.ID).
				Int("tries", try).
				Msg("replicate: poll budget exhausted")
			return nil, &PollTimeoutError{ID: current.ID, Tries: try}
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(budget.Interval):
		}
		next, err := c.GetPrediction(ctx, current.URLs.Get)
		if err != nil {
			return nil, err
		}
		if next.URLs.Get == "" {
			next.URLs = current.URLs
		}
		current = next
	}
}
