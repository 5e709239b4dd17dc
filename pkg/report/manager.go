package report

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/devicelab-dev/appium-pilot/pkg/config"
	"github.com/devicelab-dev/appium-pilot/pkg/logger"
)

// allureBin is the allure CLI binary name; overridable in tests.
var allureBin = "allure"

// Manager owns the report directory layout and shells out to the allure
// CLI. External-tool failures are logged and converted to a boolean
// result; there are no retries.
type Manager struct {
	reportsDir     string
	resultsDir     string
	htmlDir        string
	screenshotsDir string
}

// NewManager creates a report manager from configuration and ensures the
// report directories exist.
func NewManager(cfg *config.Manager) *Manager {
	m := &Manager{
		reportsDir:     cfg.ProjectPath("reports"),
		resultsDir:     cfg.ProjectPath(cfg.GetString("report.allure_results_dir", "reports/allure-results")),
		htmlDir:        cfg.ProjectPath(cfg.GetString("report.html_report_dir", "reports/html")),
		screenshotsDir: cfg.ProjectPath("reports/screenshots"),
	}
	m.EnsureDirs()
	return m
}

// EnsureDirs creates the report directory layout.
func (m *Manager) EnsureDirs() {
	for _, dir := range []string{m.reportsDir, m.resultsDir, m.htmlDir, m.screenshotsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Error("failed to create report dir %s: %v", dir, err)
		}
	}
}

// ResultsDir returns the allure-results directory.
func (m *Manager) ResultsDir() string { return m.resultsDir }

// HTMLDir returns the generated HTML report directory.
func (m *Manager) HTMLDir() string { return m.htmlDir }

// ScreenshotsDir returns the screenshots directory.
func (m *Manager) ScreenshotsDir() string { return m.screenshotsDir }

// CleanResults clears the raw results directory.
func (m *Manager) CleanResults() {
	if err := os.RemoveAll(m.resultsDir); err != nil {
		logger.Error("failed to clean results dir: %v", err)
		return
	}
	if err := os.MkdirAll(m.resultsDir, 0o755); err != nil {
		logger.Error("failed to recreate results dir: %v", err)
		return
	}
	logger.Info("allure results directory cleaned")
}

// allureAvailable probes for the allure CLI.
func (m *Manager) allureAvailable() bool {
	bin, err := exec.LookPath(allureBin)
	if err != nil {
		logger.Error("allure CLI not found; install it and add it to PATH")
		return false
	}
	if err := exec.Command(bin, "--version").Run(); err != nil { //#nosec G204 -- resolved binary
		logger.Error("allure CLI probe failed: %v", err)
		return false
	}
	return true
}

// Generate runs `allure generate` to build the HTML report. Returns
// false on any failure.
func (m *Manager) Generate(cleanFirst bool) bool {
	if cleanFirst {
		if err := os.RemoveAll(m.htmlDir); err != nil {
			logger.Error("failed to clean html dir: %v", err)
		}
		if err := os.MkdirAll(m.htmlDir, 0o755); err != nil {
			logger.Error("failed to recreate html dir: %v", err)
			return false
		}
	}

	if !m.allureAvailable() {
		return false
	}

	cmd := exec.Command(allureBin, "generate", m.resultsDir, "-o", m.htmlDir, "--clean") //#nosec G204
	out, err := cmd.CombinedOutput()
	if err != nil {
		logger.Error("allure generate failed: %v: %s", err, strings.TrimSpace(string(out)))
		return false
	}

	logger.Info("allure report generated: %s", m.htmlDir)
	return true
}

// Open launches `allure open` on the generated report, generating it
// first when index.html is missing.
func (m *Manager) Open() bool {
	indexFile := filepath.Join(m.htmlDir, "index.html")
	if _, err := os.Stat(indexFile); err != nil {
		logger.Warn("report not found, generating first")
		if !m.Generate(true) {
			return false
		}
	}

	cmd := exec.Command(allureBin, "open", m.htmlDir) //#nosec G204
	if err := cmd.Start(); err != nil {
		logger.Error("failed to open allure report: %v", err)
		return false
	}

	logger.Info("allure report opened")
	return true
}

// Serve starts `allure serve` on the raw results.
func (m *Manager) Serve(port int) bool {
	cmd := exec.Command(allureBin, "serve", m.resultsDir, "-p", strconv.Itoa(port)) //#nosec G204
	if err := cmd.Start(); err != nil {
		logger.Error("failed to serve allure report: %v", err)
		return false
	}

	logger.Info("allure report server started on port %d", port)
	return true
}

// LatestReportPath returns the most recently modified HTML report, or ""
// when none exists.
func (m *Manager) LatestReportPath() string {
	entries, err := os.ReadDir(m.htmlDir)
	if err != nil {
		return ""
	}

	var latest string
	var latestMod time.Time
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".html") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestMod) {
			latest = filepath.Join(m.htmlDir, entry.Name())
			latestMod = info.ModTime()
		}
	}
	if latest != "" {
		return latest
	}

	index := filepath.Join(m.htmlDir, "index.html")
	if _, err := os.Stat(index); err == nil {
		return index
	}
	return ""
}

// CleanupOld removes report files older than keepDays.
func (m *Manager) CleanupOld(keepDays int) {
	cutoff := time.Now().AddDate(0, 0, -keepDays)

	err := filepath.Walk(m.reportsDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(path); err == nil {
				logger.Debug("removed old report file: %s", path)
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("failed to clean up old reports: %v", err)
		return
	}
	logger.Info("cleaned up reports older than %d day(s)", keepDays)
}

// Archive zips the reports directory into <reportsDir>/<name>.zip. When
// name is empty a timestamped name is used. Returns the archive path, or
// "" on failure.
func (m *Manager) Archive(name string) string {
	if name == "" {
		name = fmt.Sprintf("test_reports_%s", time.Now().Format("20060102_150405"))
	}
	archivePath := filepath.Join(m.reportsDir, name+".zip")

	out, err := os.Create(archivePath) //#nosec G304 -- path under reports dir
	if err != nil {
		logger.Error("failed to create archive: %v", err)
		return ""
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	defer zw.Close()

	err = filepath.Walk(m.reportsDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() || path == archivePath {
			return nil
		}
		rel, err := filepath.Rel(m.reportsDir, path)
		if err != nil {
			return err
		}
		w, err := zw.Create(rel)
		if err != nil {
			return err
		}
		f, err := os.Open(path) //#nosec G304 -- walked path
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(w, f)
		return err
	})
	if err != nil {
		logger.Error("failed to archive reports: %v", err)
		return ""
	}

	logger.Info("reports archived: %s", archivePath)
	return archivePath
}
