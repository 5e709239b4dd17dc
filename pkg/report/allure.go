// Package report writes Allure-compatible result files and orchestrates
// the external allure CLI for report generation.
package report

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/devicelab-dev/appium-pilot/pkg/core"
	"github.com/devicelab-dev/appium-pilot/pkg/logger"
)

// Allure result schema types.

// AllureResult represents a single test result in Allure format.
type AllureResult struct {
	UUID          string              `json:"uuid"`
	HistoryID     string              `json:"historyId"`
	FullName      string              `json:"fullName"`
	Name          string              `json:"name"`
	Status        string              `json:"status"`
	Stage         string              `json:"stage"`
	Start         int64               `json:"start"`
	Stop          int64               `json:"stop"`
	Labels        []AllureLabel       `json:"labels"`
	StatusDetails AllureStatusDetails `json:"statusDetails"`
	Steps         []AllureStep        `json:"steps"`
	Attachments   []AllureAttachment  `json:"attachments"`
}

// AllureStep represents a step within a test result.
type AllureStep struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Stage  string `json:"stage"`
	Start  int64  `json:"start"`
	Stop   int64  `json:"stop"`
}

// AllureAttachment represents a file attachment.
type AllureAttachment struct {
	Name   string `json:"name"`
	Source string `json:"source"`
	Type   string `json:"type"`
}

// AllureLabel represents a label on a test result.
type AllureLabel struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// AllureStatusDetails holds failure message and trace.
type AllureStatusDetails struct {
	Message string `json:"message"`
	Trace   string `json:"trace"`
}

// AllureCategory defines a failure category with regex matching.
type AllureCategory struct {
	Name            string   `json:"name"`
	MatchedStatuses []string `json:"matchedStatuses"`
	MessageRegex    string   `json:"messageRegex"`
}

// AllureExecutor holds executor branding info.
type AllureExecutor struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	ReportName string `json:"reportName"`
}

// FromCaseResult converts a harness case result into an Allure result,
// copying its attachments into resultsDir.
func FromCaseResult(resultsDir string, c *core.CaseResult) AllureResult {
	startMs := c.StartTime.UnixMilli()
	stopMs := c.StartTime.Add(c.Duration).UnixMilli()

	labels := []AllureLabel{
		{Name: "framework", Value: "appium-pilot"},
		{Name: "language", Value: "go"},
	}
	if c.Feature != "" {
		labels = append(labels, AllureLabel{Name: "feature", Value: c.Feature})
	}
	if c.Story != "" {
		labels = append(labels, AllureLabel{Name: "story", Value: c.Story})
	}
	severity := c.Severity
	if severity == "" {
		severity = "normal"
	}
	labels = append(labels, AllureLabel{Name: "severity", Value: severity})
	for _, marker := range c.Markers {
		labels = append(labels, AllureLabel{Name: "tag", Value: marker})
	}
	if c.Device != nil {
		if c.Device.Name != "" {
			labels = append(labels, AllureLabel{Name: "host", Value: c.Device.Name})
		}
		if c.Device.ID != "" {
			labels = append(labels, AllureLabel{Name: "thread", Value: c.Device.ID})
		}
	}

	steps := make([]AllureStep, 0, len(c.Steps))
	for _, s := range c.Steps {
		steps = append(steps, AllureStep{
			Name:   s.Name,
			Status: mapAllureStatus(s.Status),
			Stage:  "finished",
			Start:  s.StartTime.UnixMilli(),
			Stop:   s.StartTime.Add(s.Duration).UnixMilli(),
		})
	}

	attachments := make([]AllureAttachment, 0, len(c.Attachments))
	for _, a := range c.Attachments {
		source := copyAttachment(resultsDir, a.Path)
		if source == "" {
			continue
		}
		attachments = append(attachments, AllureAttachment{
			Name:   a.Name,
			Source: source,
			Type:   a.ContentType,
		})
	}

	return AllureResult{
		UUID:          uuid.NewString(),
		HistoryID:     fnv32aHash(c.FullName),
		FullName:      c.FullName,
		Name:          c.Name,
		Status:        mapAllureStatus(c.Status),
		Stage:         "finished",
		Start:         startMs,
		Stop:          stopMs,
		Labels:        labels,
		StatusDetails: AllureStatusDetails{Message: c.Message, Trace: c.Trace},
		Steps:         steps,
		Attachments:   attachments,
	}
}

// WriteResult writes one Allure result JSON file into resultsDir.
func WriteResult(resultsDir string, result AllureResult) error {
	if err := os.MkdirAll(resultsDir, 0o755); err != nil {
		return fmt.Errorf("create allure-results dir: %w", err)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal allure result %s: %w", result.Name, err)
	}

	path := filepath.Join(resultsDir, result.UUID+"-result.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write allure result %s: %w", result.Name, err)
	}
	return nil
}

// copyAttachment copies an attachment file into resultsDir under an
// attachment-suffixed name (the layout the allure CLI expects) and
// returns that name, or "" when the source is unreadable.
func copyAttachment(resultsDir, src string) string {
	in, err := os.Open(src) //#nosec G304 -- harness-produced artifact
	if err != nil {
		return ""
	}
	defer in.Close()

	name := uuid.NewString() + "-attachment" + filepath.Ext(src)
	out, err := os.Create(filepath.Join(resultsDir, name))
	if err != nil {
		return ""
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		logger.Warn("failed to copy attachment %s: %v", src, err)
		return ""
	}
	return name
}

// WriteEnvironment writes environment.properties with run metadata.
func WriteEnvironment(resultsDir string, props map[string]string) error {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("framework=appium-pilot\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%s\n", k, props[k])
	}

	path := filepath.Join(resultsDir, "environment.properties")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write environment.properties: %w", err)
	}
	return nil
}

// WriteCategories writes categories.json for failure categorization.
func WriteCategories(resultsDir string) error {
	categories := []AllureCategory{
		{Name: "Element Not Found", MatchedStatuses: []string{"failed"}, MessageRegex: "(?i).*element not found.*"},
		{Name: "Element Not Visible", MatchedStatuses: []string{"failed"}, MessageRegex: "(?i).*not visible.*|.*not displayed.*"},
		{Name: "Timeout", MatchedStatuses: []string{"failed", "broken"}, MessageRegex: "(?i).*timeout.*|.*timed out.*"},
		{Name: "Assertion Failed", MatchedStatuses: []string{"failed"}, MessageRegex: "(?i).*assert.*"},
		{Name: "Session Error", MatchedStatuses: []string{"broken"}, MessageRegex: "(?i).*session.*|.*driver.*"},
		{Name: "Connection Error", MatchedStatuses: []string{"broken"}, MessageRegex: "(?i).*connection.*|.*socket.*|.*network.*"},
	}

	data, err := json.MarshalIndent(categories, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal categories: %w", err)
	}

	path := filepath.Join(resultsDir, "categories.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write categories.json: %w", err)
	}
	return nil
}

// WriteExecutor writes executor.json identifying the runner.
func WriteExecutor(resultsDir string) error {
	executor := AllureExecutor{
		Name:       "appium-pilot",
		Type:       "cli",
		ReportName: "Appium Pilot Test Report",
	}

	data, err := json.MarshalIndent(executor, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal executor: %w", err)
	}

	path := filepath.Join(resultsDir, "executor.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write executor.json: %w", err)
	}
	return nil
}

// mapAllureStatus maps a case status to the Allure status string.
func mapAllureStatus(s core.CaseStatus) string {
	switch s {
	case core.StatusPassed:
		return "passed"
	case core.StatusFailed:
		return "failed"
	case core.StatusBroken:
		return "broken"
	case core.StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// fnv32aHash returns a hex-encoded FNV-32a hash of the input string.
func fnv32aHash(s string) string {
	h := fnv.New32a()
	h.Write([]byte(s))
	return fmt.Sprintf("%08x", h.Sum32())
}
