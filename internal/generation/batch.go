package generation

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

const (
	maxBatchCount   = 8
	strengthJitter  = 0.06
	minTaskStrength = 0.3
	maxTaskStrength = 0.9
)

// orbitAngles is the fixed cyclic sequence of framing phrases used when a
// camera orbit is requested. The cycle deliberately revisits some angles to
// bias short orbits toward a small set of flattering views instead of
// spreading evenly.
var orbitAngles = [8]string{
	"front view",
	"three-quarter left view",
	"side view",
	"three-quarter right view",
	"back view",
	"three-quarter right view",
	"side view",
	"three-quarter left view",
}

// Plan expands one creative request into 1-8 variant task descriptors with
// deterministic-yet-varied seeds and strengths. With seed lock every variant
// shares the base seed (consistent subject identity across angles); otherwise
// each variant's seed is the base offset by its index. Strength jitter
// applies to image-edit actions only.
func (o *Orchestrator) Plan(req *Request) []Task {
	count := req.Count
	if count < 1 {
		count = 1
	}
	if count > maxBatchCount {
		count = maxBatchCount
	}

	baseSeed := o.randSeed()
	if req.Seed != nil {
		baseSeed = *req.Seed
	}
	baseStrength := req.Strength
	if baseStrength <= 0 {
		baseStrength = defaultStrength
	}
	jitter := req.Action == ActionImageToImage || req.Action == ActionInpaint

	tasks := make([]Task, count)
	for i := range tasks {
		seed := baseSeed
		if !req.SeedLock {
			seed = baseSeed + i
		}
		strength := baseStrength
		if jitter {
			strength = clampStrength(baseStrength + (o.randFloat()*2-1)*strengthJitter)
		}
		tasks[i] = Task{
			Index:       i,
			Prompt:      variantPrompt(req, count, i),
			Strength:    strength,
			Seed:        seed,
			SourceImage: req.SourceImage,
			MaskImage:   req.MaskImage,
		}
	}
	return tasks
}

func variantPrompt(req *Request, count, index int) string {
	base := strings.TrimSpace(req.Idea)
	phrase := ""
	switch {
	case req.Orbit && count > 1:
		phrase = orbitAngles[index%len(orbitAngles)]
	case index < len(req.AngleLabels):
		phrase = strings.TrimSpace(req.AngleLabels[index])
	}
	if phrase == "" {
		return base
	}
	if base == "" {
		return phrase
	}
	return base + ", " + phrase
}

func clampStrength(v float64) float64 {
	if v < minTaskStrength {
		return minTaskStrength
	}
	if v > maxTaskStrength {
		return maxTaskStrength
	}
	return v
}

// RunBatch plans and executes a batch request. Tasks run with bounded
// parallelism; a task failure is captured into its result slot and never
// aborts siblings. Results come back in original task order, and the first
// successful URL is surfaced as a convenience pointer. An all-failed batch is
// still a structurally successful response; treating zero successes as a
// user-facing failure is the caller's call.
func (o *Orchestrator) RunBatch(ctx context.Context, req *Request) *BatchResult {
	tasks := o.Plan(req)
	return o.runTasks(ctx, req, tasks)
}

func (o *Orchestrator) runTasks(ctx context.Context, req *Request, tasks []Task) *BatchResult {
	results := make([]TaskResult, len(tasks))
	sem := make(chan struct{}, o.batchCap)
	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task Task) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			url, err := o.runTask(ctx, req, task)
			if err != nil {
				o.logger.Warn().
					Int("task", i).
					Err(err).
					Msg("generation: batch task failed")
				results[i] = TaskResult{Index: i, Err: err.Error()}
				return
			}
			results[i] = TaskResult{Index: i, OK: true, URL: url}
		}(i, task)
	}
	wg.Wait()

	out := &BatchResult{OK: true, Results: results}
	for _, r := range results {
		if r.OK {
			out.FirstURL = r.URL
			break
		}
	}
	return out
}

func (o *Orchestrator) runTask(ctx context.Context, req *Request, task Task) (string, error) {
	taskReq := *req
	taskReq.Idea = task.Prompt
	taskReq.Strength = task.Strength
	seed := task.Seed
	taskReq.Seed = &seed

	cctx, err := o.chainContext(&taskReq)
	if err != nil {
		return "", err
	}
	candidates, _ := o.imageAction(&taskReq, cctx)
	res, err := o.RunChain(ctx, candidates, cctx, PolicyFatal)
	if err != nil {
		return "", err
	}
	if res.URL == "" {
		return "", fmt.Errorf("generation: task %d produced no output", task.Index)
	}
	return res.URL, nil
}
