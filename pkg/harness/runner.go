package harness

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/devicelab-dev/appium-pilot/pkg/config"
	"github.com/devicelab-dev/appium-pilot/pkg/core"
	"github.com/devicelab-dev/appium-pilot/pkg/logger"
	"github.com/devicelab-dev/appium-pilot/pkg/report"
)

// RunOptions controls a test run.
type RunOptions struct {
	Pattern     string // substring filter on case names ("" = all)
	Markers     string // comma-separated marker filter ("" = all)
	Platform    string // android or ios
	Workers     int    // parallel workers (<=1 = sequential)
	Reruns      int    // rerun count for failed cases
	CollectOnly bool   // list matching cases without executing
	ResultsDir  string // allure-results output ("" = no result files)
	Overrides   map[string]interface{}
}

// Runner executes registered cases. Each worker owns an independent
// harness and driver session; the only shared state is the results slice
// (mutex-guarded) and the report directory on disk.
type Runner struct {
	cfg  *config.Manager
	opts RunOptions
}

// NewRunner creates a runner.
func NewRunner(cfg *config.Manager, opts RunOptions) *Runner {
	if opts.Platform == "" {
		opts.Platform = cfg.GetString("test.platform", "android")
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Runner{cfg: cfg, opts: opts}
}

// Select returns the registered cases matching the pattern and markers.
func (r *Runner) Select() []Case {
	var markers []string
	if r.opts.Markers != "" {
		for _, m := range strings.Split(r.opts.Markers, ",") {
			markers = append(markers, strings.TrimSpace(m))
		}
	}

	var selected []Case
	for _, c := range Cases() {
		if r.opts.Pattern != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(r.opts.Pattern)) {
			continue
		}
		if len(markers) > 0 && !hasAnyMarker(c, markers) {
			continue
		}
		selected = append(selected, c)
	}
	return selected
}

func hasAnyMarker(c Case, markers []string) bool {
	for _, m := range markers {
		if c.HasMarker(m) {
			return true
		}
	}
	return false
}

// Run executes the selected cases and returns the aggregate result.
func (r *Runner) Run() *core.RunResult {
	cases := r.Select()

	result := &core.RunResult{
		RunID:     uuid.NewString(),
		StartTime: time.Now(),
	}

	if r.opts.CollectOnly {
		for _, c := range cases {
			result.Cases = append(result.Cases, core.CaseResult{
				Name:     c.Name,
				FullName: fullName(c),
				Feature:  c.Feature,
				Story:    c.Story,
				Markers:  c.Markers,
				Status:   core.StatusSkipped,
			})
		}
		result.Duration = time.Since(result.StartTime)
		result.ComputeSummary()
		return result
	}

	logger.Info("running %d case(s) with %d worker(s)", len(cases), r.opts.Workers)

	results := make([]core.CaseResult, len(cases))
	queue := make(chan int, len(cases))
	for i := range cases {
		queue <- i
	}
	close(queue)

	var mu sync.Mutex
	var wg sync.WaitGroup

	workers := r.opts.Workers
	if workers > len(cases) {
		workers = len(cases)
	}
	if workers < 1 {
		workers = 1
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			h := New(r.cfg, r.opts.Platform, r.opts.Overrides)
			defer h.Close()

			for idx := range queue {
				res := r.runCaseWithReruns(h, cases[idx])
				mu.Lock()
				results[idx] = res
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	result.Cases = results
	result.Duration = time.Since(result.StartTime)
	result.ComputeSummary()

	if r.opts.ResultsDir != "" {
		r.writeResults(result)
	}

	return result
}

// runCaseWithReruns executes a case, rerunning failures up to the
// configured count. A case that passes on a rerun is marked flaky.
func (r *Runner) runCaseWithReruns(h *Harness, c Case) core.CaseResult {
	maxAttempts := r.opts.Reruns + 1

	var res core.CaseResult
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		res = r.runCase(h, c)
		res.Attempt = attempt
		res.MaxAttempts = maxAttempts

		if res.Status == core.StatusPassed {
			res.Flaky = attempt > 1
			return res
		}
		if attempt < maxAttempts {
			logger.Warn("case %s failed (attempt %d/%d), rerunning", c.Name, attempt, maxAttempts)
		}
	}
	return res
}

// runCase executes a single attempt of one case.
func (r *Runner) runCase(h *Harness, c Case) core.CaseResult {
	t := &T{name: c.Name, h: h}
	res := core.CaseResult{
		Name:      c.Name,
		FullName:  fullName(c),
		Feature:   c.Feature,
		Story:     c.Story,
		Severity:  c.Severity,
		Markers:   c.Markers,
		StartTime: time.Now(),
		Device:    h.device,
	}

	logger.Info("case started: %s", c.Name)

	if err := h.Setup(); err != nil {
		res.Status = core.StatusBroken
		res.Category = core.ErrCategorySession
		res.Message = fmt.Sprintf("setup failed: %v", err)
		res.Duration = time.Since(res.StartTime)
		logger.Error("case %s broken: %s", c.Name, res.Message)
		return res
	}

	status := r.execute(t, c)

	h.Teardown(t)

	res.Status = status
	res.Message = t.message
	res.Steps = t.steps
	res.Attachments = t.attach
	res.Duration = time.Since(res.StartTime)
	if status == core.StatusFailed {
		res.Category = core.ErrCategoryAssertion
	}

	logger.Info("case %s: %s", res.Status, c.Name)
	return res
}

// execute invokes the case function, converting harness failures and
// panics into statuses.
func (r *Runner) execute(t *T, c Case) (status core.CaseStatus) {
	defer func() {
		if rec := recover(); rec != nil {
			if cf, ok := rec.(caseFailed); ok {
				t.failed = true
				if t.message == "" {
					t.message = cf.msg
				}
				status = core.StatusFailed
				return
			}
			t.failed = true
			t.message = fmt.Sprintf("panic: %v", rec)
			status = core.StatusBroken
		}
	}()

	c.Fn(t)

	if t.failed {
		return core.StatusFailed
	}
	return core.StatusPassed
}

// writeResults emits one Allure result file per case plus run metadata.
func (r *Runner) writeResults(result *core.RunResult) {
	for i := range result.Cases {
		allureRes := report.FromCaseResult(r.opts.ResultsDir, &result.Cases[i])
		if err := report.WriteResult(r.opts.ResultsDir, allureRes); err != nil {
			logger.Error("failed to write allure result: %v", err)
		}
	}

	props := map[string]string{
		"platform": r.opts.Platform,
		"env":      r.cfg.Env(),
		"appium.server": fmt.Sprintf("%s:%d",
			r.cfg.GetString("appium.host", "127.0.0.1"),
			r.cfg.GetInt("appium.port", 4723)),
	}
	if err := report.WriteEnvironment(r.opts.ResultsDir, props); err != nil {
		logger.Error("failed to write environment.properties: %v", err)
	}
	if err := report.WriteCategories(r.opts.ResultsDir); err != nil {
		logger.Error("failed to write categories.json: %v", err)
	}
	if err := report.WriteExecutor(r.opts.ResultsDir); err != nil {
		logger.Error("failed to write executor.json: %v", err)
	}
}

func fullName(c Case) string {
	if c.Feature == "" {
		return c.Name
	}
	return c.Feature + "/" + c.Name
}
