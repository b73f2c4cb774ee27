// Package main is a benchmarking tool for the debtspot CLI.
// It times scans of real Python repositories without a cache, then with a
// SQLite metric cache (first run cold, the rest warm), for each git backend,
// and writes the averages to a CSV file.
//
// Prerequisites:
// - debtspot binary installed and available in PATH
// - Test repositories cloned to the specified base directory
// - Git repositories: requests, flask, black, django
//
// Usage: go run benchmark/main.go [repo-base-dir]
//
//	repo-base-dir: Directory containing test repositories
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Repository  string
	Backend     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	RepoBase    string
	Timeout     time.Duration
	Workers     int
	NoCacheRuns int
	CacheRuns   int
	TestRepos   []string
	Backends    []string
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [repo-base-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		RepoBase:    os.Args[1],
		Timeout:     5 * time.Minute,
		Workers:     8,
		NoCacheRuns: 3,
		CacheRuns:   4,
		TestRepos:   []string{"requests", "flask", "black", "django"},
		Backends:    []string{"exec", "native"},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	cacheDir, err := os.MkdirTemp("", "debtspot-benchmark-*")
	if err != nil {
		fmt.Printf("Failed to create cache dir: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = os.RemoveAll(cacheDir) }()

	results := runBenchmarks(config, cacheDir)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that debtspot binary and test repositories exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("debtspot"); err != nil {
		return errors.New("debtspot binary not found in PATH")
	}
	for _, repo := range config.TestRepos {
		repoPath := filepath.Join(config.RepoBase, repo)
		if _, err := os.Stat(repoPath); os.IsNotExist(err) {
			return fmt.Errorf("repository %s not found at %s", repo, repoPath)
		}
	}
	return nil
}

// runBenchmarks executes the scan suite for every repository and git backend.
func runBenchmarks(config BenchmarkConfig, cacheDir string) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d repos, %v timeout, %d workers, no-cache: %d runs, cache: %d runs\n",
		len(config.TestRepos), config.Timeout, config.Workers, config.NoCacheRuns, config.CacheRuns)

	for _, repo := range config.TestRepos {
		repoPath := filepath.Join(config.RepoBase, repo)
		for _, backend := range config.Backends {
			cacheFile := filepath.Join(cacheDir, fmt.Sprintf("%s-%s.db", repo, backend))
			results = append(results, runBenchmarkSuite(config, repo, repoPath, backend, cacheFile))
		}
	}

	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for one backend.
func runBenchmarkSuite(config BenchmarkConfig, repo, repoPath, backend, cacheFile string) BenchmarkResult {
	fmt.Printf("Benchmarking %s with the %s git backend\n", repo, backend)

	runPhase := func(cacheArgs []string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		args := append([]string{"scan", "--output", "csv", "--git-backend", backend, "--workers", fmt.Sprint(config.Workers)}, cacheArgs...)
		cold, times := runBenchmark(config, repoPath, args, numRuns)
		return cold, formatAverage(times)
	}

	_, noCacheAvg := runPhase([]string{"--cache-backend", "none"}, config.NoCacheRuns, "No-cache")
	coldTime, warmAvg := runPhase([]string{"--cache-backend", "sqlite", "--cache-db-connect", cacheFile}, config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Repository:  repo,
		Backend:     backend,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark runs debtspot numRuns times and returns the first successful time and the rest.
// Failed and timed-out runs are dropped.
func runBenchmark(config BenchmarkConfig, repoPath string, args []string, numRuns int) (coldTime float64, warmTimes []float64) {
	var times []float64
	for range numRuns {
		ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
		cmd := exec.CommandContext(ctx, "debtspot", args...)
		cmd.Dir = repoPath

		start := time.Now()
		output, err := cmd.CombinedOutput()
		elapsed := time.Since(start).Seconds()
		cancel()

		if err != nil {
			fmt.Printf("    run failed: %v\n%s\n", err, lastLines(output, 5))
			continue
		}
		times = append(times, elapsed)
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// formatAverage renders the mean of times, or TIMEOUT when every run failed.
func formatAverage(times []float64) string {
	if len(times) == 0 {
		return "TIMEOUT"
	}
	var sum float64
	for _, t := range times {
		sum += t
	}
	return fmt.Sprintf("%.3fs", sum/float64(len(times)))
}

// lastLines returns at most n trailing lines of output.
func lastLines(output []byte, n int) string {
	end := len(output)
	for end > 0 && output[end-1] == '\n' {
		end--
	}
	start := end
	for lines := 0; start > 0; start-- {
		if output[start-1] == '\n' {
			lines++
			if lines == n {
				break
			}
		}
	}
	return string(output[start:end])
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("debtspot_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"repo", "git_backend", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Repository, result.Backend, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results grouped by git backend.
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, backend := range []string{"exec", "native"} {
		fmt.Printf("Git backend %s:\n", backend)
		for _, result := range results {
			if result.Backend == backend {
				fmt.Printf("  %-12s: No-cache: %s, Cold: %s, Warm: %s\n", result.Repository, result.NoCacheTime, result.ColdTime, result.WarmTime)
			}
		}
	}
}
