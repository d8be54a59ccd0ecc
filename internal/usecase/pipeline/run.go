package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"agrimaint/internal/bootstrap/logging"
	"agrimaint/internal/errs"
	"agrimaint/internal/metrics"
	"agrimaint/internal/ports"
)

// StageStatus is the tagged outcome of one pipeline stage. Degraded runs
// carry a reason instead of silently propagating zeroed records.
type StageStatus string

const (
	StageOK       StageStatus = "ok"
	StageDegraded StageStatus = "degraded"
	StageFailed   StageStatus = "failed"
)

type StageResult struct {
	Name     string      `json:"name"`
	Status   StageStatus `json:"status"`
	Reason   string      `json:"reason,omitempty"`
	Duration float64     `json:"duration_seconds"`
}

type RunInput struct {
	Since time.Time
	Until time.Time
}

type RunResult struct {
	RunID       string        `json:"run_id"`
	Status      StageStatus   `json:"status"`
	Stages      []StageResult `json:"stages"`
	CleanReport CleanReport   `json:"clean_report"`
	Predictions int           `json:"predictions"`
	Tasks       int           `json:"schedule_tasks"`
}

// Summary renders the operator-facing text report.
func (r RunResult) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "pipeline run %s: %s\n", r.RunID, r.Status)
	for _, stage := range r.Stages {
		line := fmt.Sprintf("  %-10s %-9s %.2fs", stage.Name, stage.Status, stage.Duration)
		if stage.Reason != "" {
			line += "  (" + stage.Reason + ")"
		}
		b.WriteString(line + "\n")
	}
	fmt.Fprintf(&b, "  predictions: %d, schedule tasks: %d\n", r.Predictions, r.Tasks)
	b.WriteString("cleaning report:\n")
	for _, line := range strings.Split(strings.TrimRight(r.CleanReport.String(), "\n"), "\n") {
		b.WriteString("  " + line + "\n")
	}
	return b.String()
}

// Run executes clean, features, predict and decide sequentially under one
// run id and records the outcome on the pipeline_runs ledger. A failed
// clean or features stage aborts the run; a degraded predict stage
// continues with heuristic scores.
func (s *Service) Run(ctx context.Context, in RunInput) (RunResult, error) {
	if ctx == nil {
		return RunResult{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return RunResult{}, errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return RunResult{}, errors.New("fleet repository is required")
	}
	if in.Until.IsZero() {
		in.Until = s.now()
	}

	runID := newRunID(s.now())
	logCtx := logging.WithAttrs(ctx, slog.String("component", "pipeline.run"), slog.String("run_id", runID))
	logging.Info(logCtx, "pipeline run started")

	if err := s.repo.CreatePipelineRun(ctx, ports.PipelineRun{
		RunID:     runID,
		StartedAt: formatTime(s.now()),
		Status:    "running",
	}); err != nil {
		return RunResult{}, errs.Wrap(err, "create pipeline run")
	}

	result := RunResult{RunID: runID}

	cleanReport, stage := runStage("clean", func() (CleanReport, error) {
		return s.CleanWindow(ctx, CleanWindowInput{Since: in.Since, Until: in.Until, RunID: runID})
	})
	result.CleanReport = cleanReport
	result.Stages = append(result.Stages, stage)
	if stage.Status == StageFailed {
		return s.finishRun(ctx, result)
	}

	_, stage = runStage("features", func() (BuildFeaturesResult, error) {
		return s.BuildFeatures(ctx, BuildFeaturesInput{RunID: runID, AsOf: in.Until})
	})
	result.Stages = append(result.Stages, stage)
	if stage.Status == StageFailed {
		return s.finishRun(ctx, result)
	}

	predictOut, stage := runStage("predict", func() (PredictResult, error) {
		return s.Predict(ctx, PredictInput{RunID: runID})
	})
	if stage.Status == StageOK && predictOut.Degraded {
		stage.Status = StageDegraded
		stage.Reason = predictOut.Reason
	}
	result.Predictions = predictOut.Predictions
	result.Stages = append(result.Stages, stage)
	if stage.Status == StageFailed {
		return s.finishRun(ctx, result)
	}

	decideOut, stage := runStage("decide", func() (DecideResult, error) {
		return s.Decide(ctx, DecideInput{RunID: runID})
	})
	result.Tasks = decideOut.ScheduleTasks
	result.Stages = append(result.Stages, stage)

	return s.finishRun(ctx, result)
}

func runStage[T any](name string, fn func() (T, error)) (T, StageResult) {
	started := time.Now()
	out, err := fn()
	stage := StageResult{
		Name:     name,
		Status:   StageOK,
		Duration: time.Since(started).Seconds(),
	}
	if err != nil {
		stage.Status = StageFailed
		stage.Reason = err.Error()
	}
	metrics.StageDuration.WithLabelValues(name).Observe(stage.Duration)
	return out, stage
}

func (s *Service) finishRun(ctx context.Context, result RunResult) (RunResult, error) {
	result.Status = overallStatus(result.Stages)

	reportJSON, err := json.Marshal(result)
	if err != nil {
		return RunResult{}, errs.Wrap(err, "encode run report")
	}

	if err := s.repo.FinishPipelineRun(ctx, result.RunID, string(result.Status), formatTime(s.now()), string(reportJSON)); err != nil {
		return RunResult{}, errs.Wrap(err, "finish pipeline run")
	}

	metrics.PipelineRuns.WithLabelValues(string(result.Status)).Inc()
	logging.Info(logging.WithAttrs(ctx, slog.String("run_id", result.RunID)),
		"pipeline run finished", slog.String("status", string(result.Status)))
	return result, nil
}

func overallStatus(stages []StageResult) StageStatus {
	status := StageOK
	for _, stage := range stages {
		if stage.Status == StageFailed {
			return StageFailed
		}
		if stage.Status == StageDegraded {
			status = StageDegraded
		}
	}
	return status
}

// LatestReport returns the report of the most recently finished run.
func (s *Service) LatestReport(ctx context.Context) (RunResult, error) {
	if ctx == nil {
		return RunResult{}, errors.New("context is required")
	}
	if s.repo == nil {
		return RunResult{}, errors.New("fleet repository is required")
	}

	runID, err := s.repo.LatestFinishedRunID(ctx)
	if err != nil {
		return RunResult{}, errs.Wrap(err, "find latest run")
	}

	run, err := s.repo.GetPipelineRun(ctx, runID)
	if err != nil {
		return RunResult{}, errs.Wrap(err, "load pipeline run")
	}

	var result RunResult
	if err := json.Unmarshal([]byte(run.ReportJSON), &result); err != nil {
		return RunResult{}, errs.Wrap(err, "decode run report")
	}
	return result, nil
}

func newRunID(now time.Time) string {
	return fmt.Sprintf("run-%d", now.UTC().UnixNano())
}
