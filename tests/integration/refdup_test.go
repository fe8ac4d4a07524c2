// Package integration provides integration tests for refdup commands.
package integration

import (
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
)

var (
	refdupBinary     string
	refdupBinaryOnce sync.Once
	refdupBinaryErr  error
)

// getRefdupBinary builds the refdup binary once and returns its path.
func getRefdupBinary(t *testing.T) string {
	t.Helper()
	refdupBinaryOnce.Do(func() {
		// Get module root directory
		_, filename, _, ok := runtime.Caller(0)
		if !ok {
			refdupBinaryErr = os.ErrInvalid
			return
		}
		moduleRoot := filepath.Dir(filepath.Dir(filepath.Dir(filename)))

		// Build refdup to a temp location
		tmpDir, err := os.MkdirTemp("", "refdup-test-*")
		if err != nil {
			refdupBinaryErr = err
			return
		}
		refdupBinary = filepath.Join(tmpDir, "refdup")

		cmd := exec.Command("go", "build", "-o", refdupBinary, "./cmd/refdup")
		cmd.Dir = moduleRoot
		if output, err := cmd.CombinedOutput(); err != nil {
			refdupBinaryErr = &buildError{output: string(output), err: err}
			return
		}
	})
	if refdupBinaryErr != nil {
		t.Fatalf("failed to build refdup: %v", refdupBinaryErr)
	}
	return refdupBinary
}

type buildError struct {
	output string
	err    error
}

func (e *buildError) Error() string {
	return e.err.Error() + ": " + e.output
}

// runRefdup executes the refdup command with given args in workDir.
// XDG_CONFIG_HOME points into the work directory so the user's real
// config file cannot leak into the test.
func runRefdup(t *testing.T, workDir string, args ...string) (string, error) {
	t.Helper()
	bin := getRefdupBinary(t)
	cmd := exec.Command(bin, args...)
	cmd.Dir = workDir
	cmd.Env = append(os.Environ(),
		"XDG_CONFIG_HOME="+filepath.Join(workDir, "config"),
		"REFDUP_CONFIG=")
	output, err := cmd.CombinedOutput()
	return string(output), err
}

// writeInput writes one test input file and returns its path.
func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// exitCode extracts the process exit code from a CombinedOutput error.
func exitCode(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("command did not run: %v", err)
	}
	return exitErr.ExitCode()
}

const risSample = `TY  - JOUR
TI  - Caffeine and cognition in older adults
AU  - Smith, John
PY  - 2023
JF  - The Lancet
DO  - 10.1000/caffeine.2023
AB  - A two-year cohort study.
ER  -
TY  - JOUR
TI  - Glacier mass balance in the Alps
AU  - Keller, Anna
PY  - 2022
ER  -
`

const pubmedSample = `PMID- 36716756
TI  - CAFFEINE AND COGNITION IN OLDER ADULTS.
AU  - Smith J
DP  - 2023 Jan
LID - 10.1000/caffeine.2023 [doi]
`

func TestDetectCommand(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content string
		want    string
	}{
		{name: "ris", file: "sample.ris", content: risSample, want: "ris"},
		{name: "pubmed", file: "sample.nbib", content: pubmedSample, want: "pubmed"},
		{
			name:    "endnote xml",
			file:    "sample.xml",
			content: "<?xml version=\"1.0\"?>\n<xml><records><record></record></records></xml>\n",
			want:    "endnote-xml",
		},
		{
			name:    "csv",
			file:    "sample.csv",
			content: "Title,Year\nCaffeine and cognition,2023\n",
			want:    "csv",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeInput(t, dir, tt.file, tt.content)
			output, err := runRefdup(t, dir, "detect", path)
			if err != nil {
				t.Fatalf("detect failed: %v\nOutput: %s", err, output)
			}

			var result struct {
				Path   string `json:"path"`
				Format string `json:"format"`
			}
			if err := json.Unmarshal([]byte(output), &result); err != nil {
				t.Fatalf("failed to parse JSON output: %v\nOutput: %s", err, output)
			}
			if result.Format != tt.want {
				t.Errorf("format = %q, want %q", result.Format, tt.want)
			}
		})
	}
}

func TestDetectCommandUnknown(t *testing.T) {
	dir := t.TempDir()
	path := writeInput(t, dir, "notes.txt", "plain prose without any structure\n")

	output, err := runRefdup(t, dir, "detect", path)
	if code := exitCode(t, err); code != 3 {
		t.Fatalf("exit code = %d, want 3\nOutput: %s", code, output)
	}
	if !strings.Contains(output, "unknown citation format") {
		t.Errorf("output missing error message: %s", output)
	}
}

func TestParseCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeInput(t, dir, "sample.ris", risSample)

	output, err := runRefdup(t, dir, "parse", path)
	if err != nil {
		t.Fatalf("parse failed: %v\nOutput: %s", err, output)
	}

	var result struct {
		Count int `json:"count"`
		Files []struct {
			Format string `json:"format"`
			Count  int    `json:"count"`
		} `json:"files"`
		Citations []struct {
			Title string `json:"title"`
			DOI   string `json:"doi"`
			Date  struct {
				Year int `json:"year"`
			} `json:"date"`
		} `json:"citations"`
	}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("failed to parse JSON output: %v\nOutput: %s", err, output)
	}
	if result.Count != 2 {
		t.Fatalf("count = %d, want 2", result.Count)
	}
	if result.Files[0].Format != "ris" || result.Files[0].Count != 2 {
		t.Errorf("files[0] = %+v", result.Files[0])
	}
	if result.Citations[0].Title != "Caffeine and cognition in older adults" {
		t.Errorf("title = %q", result.Citations[0].Title)
	}
	if result.Citations[0].DOI != "10.1000/caffeine.2023" {
		t.Errorf("doi = %q", result.Citations[0].DOI)
	}
	if result.Citations[1].Date.Year != 2022 {
		t.Errorf("year = %d, want 2022", result.Citations[1].Date.Year)
	}
}

func TestParseCommandDelimiter(t *testing.T) {
	dir := t.TempDir()
	path := writeInput(t, dir, "table.txt", "Title;Year\nCaffeine and cognition;2023\n")

	output, err := runRefdup(t, dir, "parse", path, "--format", "csv", "--delimiter", ";")
	if err != nil {
		t.Fatalf("parse failed: %v\nOutput: %s", err, output)
	}

	var result struct {
		Count     int `json:"count"`
		Citations []struct {
			Title string `json:"title"`
		} `json:"citations"`
	}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("failed to parse JSON output: %v\nOutput: %s", err, output)
	}
	if result.Count != 1 || result.Citations[0].Title != "Caffeine and cognition" {
		t.Errorf("result = %+v", result)
	}
}

func TestParseCommandBadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeInput(t, dir, "broken.ris", "TY  - JOUR\nTI  - Never closed\n")

	output, err := runRefdup(t, dir, "parse", path)
	if code := exitCode(t, err); code != 3 {
		t.Fatalf("exit code = %d, want 3\nOutput: %s", code, output)
	}
	if !strings.Contains(output, "line 1") {
		t.Errorf("output missing error location: %s", output)
	}
}

func TestDedupeCommand(t *testing.T) {
	dir := t.TempDir()
	risPath := writeInput(t, dir, "embase.ris", risSample)
	nbibPath := writeInput(t, dir, "pubmed.nbib", pubmedSample)

	output, err := runRefdup(t, dir, "dedupe", risPath, nbibPath)
	if err != nil {
		t.Fatalf("dedupe failed: %v\nOutput: %s", err, output)
	}

	var result struct {
		Citations int `json:"citations"`
		Groups    []struct {
			Unique struct {
				Title    string `json:"title"`
				Abstract string `json:"abstract"`
			} `json:"unique"`
			Duplicates []struct {
				Title string `json:"title"`
			} `json:"duplicates"`
		} `json:"groups"`
		TotalDupes int `json:"total_duplicates"`
	}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("failed to parse JSON output: %v\nOutput: %s", err, output)
	}
	if result.Citations != 3 {
		t.Errorf("citations = %d, want 3", result.Citations)
	}
	if len(result.Groups) != 1 || result.TotalDupes != 1 {
		t.Fatalf("groups = %d, total = %d, want 1 and 1\nOutput: %s",
			len(result.Groups), result.TotalDupes, output)
	}
	// The RIS record carries an abstract, so it wins the tie-break.
	if result.Groups[0].Unique.Abstract == "" {
		t.Errorf("unique lacks abstract: %+v", result.Groups[0].Unique)
	}
}

func TestDedupeCommandPrefer(t *testing.T) {
	dir := t.TempDir()
	risPath := writeInput(t, dir, "embase.ris", risSample)
	nbibPath := writeInput(t, dir, "pubmed.nbib", pubmedSample)

	output, err := runRefdup(t, dir, "dedupe", risPath, nbibPath, "--prefer", nbibPath)
	if err != nil {
		t.Fatalf("dedupe failed: %v\nOutput: %s", err, output)
	}

	var result struct {
		Groups []struct {
			Unique struct {
				Title string `json:"title"`
			} `json:"unique"`
		} `json:"groups"`
	}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("failed to parse JSON output: %v\nOutput: %s", err, output)
	}
	if len(result.Groups) != 1 {
		t.Fatalf("groups = %d, want 1", len(result.Groups))
	}
	// Preference overrides the abstract tie-break, so the MEDLINE
	// record becomes the unique one.
	if want := "CAFFEINE AND COGNITION IN OLDER ADULTS."; result.Groups[0].Unique.Title != want {
		t.Errorf("unique title = %q, want %q", result.Groups[0].Unique.Title, want)
	}
}

func TestDedupeCommandCheck(t *testing.T) {
	dir := t.TempDir()
	risPath := writeInput(t, dir, "embase.ris", risSample)
	nbibPath := writeInput(t, dir, "pubmed.nbib", pubmedSample)

	t.Run("duplicates found", func(t *testing.T) {
		output, err := runRefdup(t, dir, "dedupe", risPath, nbibPath, "--check")
		if code := exitCode(t, err); code != 1 {
			t.Fatalf("exit code = %d, want 1\nOutput: %s", code, output)
		}
	})

	t.Run("clean input", func(t *testing.T) {
		output, err := runRefdup(t, dir, "dedupe", risPath, "--check")
		if err != nil {
			t.Fatalf("dedupe --check on clean input failed: %v\nOutput: %s", err, output)
		}
	})
}

func TestConfigFileDefaults(t *testing.T) {
	dir := t.TempDir()
	configDir := filepath.Join(dir, "config", "refdup")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatal(err)
	}
	// group_by_year separates the two matching records into different
	// buckets, so no duplicates are reported.
	configContent := "group_by_year: true\n"
	if err := os.WriteFile(filepath.Join(configDir, "config.yml"), []byte(configContent), 0644); err != nil {
		t.Fatal(err)
	}

	input := `TY  - JOUR
TI  - Annual influenza vaccination coverage
PY  - 2022
ER  -
TY  - JOUR
TI  - Annual influenza vaccination coverage
PY  - 2023
ER  -
`
	path := writeInput(t, dir, "years.ris", input)

	output, err := runRefdup(t, dir, "dedupe", path)
	if err != nil {
		t.Fatalf("dedupe failed: %v\nOutput: %s", err, output)
	}
	var result struct {
		Groups []json.RawMessage `json:"groups"`
	}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("failed to parse JSON output: %v\nOutput: %s", err, output)
	}
	if len(result.Groups) != 0 {
		t.Errorf("groups = %d, want 0 with group_by_year configured", len(result.Groups))
	}

	// An explicit flag must override the config default.
	output, err = runRefdup(t, dir, "dedupe", path, "--by-year=false")
	if err != nil {
		t.Fatalf("dedupe failed: %v\nOutput: %s", err, output)
	}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("failed to parse JSON output: %v\nOutput: %s", err, output)
	}
	if len(result.Groups) != 1 {
		t.Errorf("groups = %d, want 1 with --by-year=false", len(result.Groups))
	}
}

func TestHumanOutput(t *testing.T) {
	dir := t.TempDir()
	path := writeInput(t, dir, "sample.ris", risSample)

	output, err := runRefdup(t, dir, "detect", path, "--human")
	if err != nil {
		t.Fatalf("detect failed: %v\nOutput: %s", err, output)
	}
	if strings.TrimSpace(output) != "ris" {
		t.Errorf("human detect output = %q, want bare format name", output)
	}
}
