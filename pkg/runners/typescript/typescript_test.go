package typescript

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sdkbench/pkg/executor"
	"sdkbench/pkg/executor/executortest"
	"sdkbench/pkg/runners"
	"sdkbench/pkg/runners/runnertest"
	"sdkbench/pkg/runtime"
)

const jestFailingOutput = `FAIL src/client.test.ts
  Client
    ✓ initializes (3 ms)
    ✕ authenticates (5 ms)
    ✓ retries (1 ms)

  ● Client › authenticates

    expect(received).toBe(expected) // Object.is equality

    Expected: "abc"
    Received: undefined

       9 |   it('authenticates', async () => {
      10 |     const client = new Client();
    > 11 |     expect(client.token).toBe('abc');
         |                          ^

      at Object.<anonymous> (src/client.test.ts:11:26)

  ● Client › uploads

    TypeError: Cannot read properties of undefined (reading 'put')

      at Client.upload (src/client.ts:42:18)
      at Object.<anonymous> (src/client.test.ts:20:5)

Test Suites: 1 failed, 1 total
Tests:       2 failed, 5 passed, 7 total
Snapshots:   0 total
Time:        1.234 s
Ran all test suites.
`

const vitestFailingOutput = ` ❯ src/client.test.ts  (4 tests | 1 failed | 1 skipped) 8ms
   ❯ src/client.test.ts > Client > authenticates
     → expected undefined to be 'abc'

⎯⎯⎯⎯⎯⎯⎯ Failed Tests 1 ⎯⎯⎯⎯⎯⎯⎯

 FAIL  src/client.test.ts > Client > authenticates
AssertionError: expected undefined to be 'abc'
 ❯ src/client.test.ts:11:26
      9|   it('authenticates', () => {
     10|     const client = new Client()
     11|     expect(client.token).toBe('abc')
       |                          ^

⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯⎯[1/1]⎯

 Test Files  1 failed (1)
      Tests  1 failed | 2 passed | 1 skipped (4)
   Start at  10:12:01
   Duration  412ms
`

const mochaFailingOutput = `

  Client
    ✓ initializes
    1) authenticates
    - streams
    ✓ retries


  2 passing (12ms)
  1 pending
  1 failing

  1) Client
       authenticates:

      AssertionError [ERR_ASSERTION]: Expected values to be strictly equal:

undefined !== 'abc'

      at Context.<anonymous> (test/client.test.js:11:12)
      at process.processImmediate (node:internal/timers:476:21)

`

func TestParseJest(t *testing.T) {
	res := runners.Finalize(ParseJest(jestFailingOutput), 1)

	assert.True(t, res.SummaryFound)
	assert.Equal(t, 5, res.Passed)
	assert.Equal(t, 2, res.Failed)
	assert.Equal(t, 7, res.Total)
	assert.False(t, res.Success)
	require.Len(t, res.Failures, 2)

	auth := res.Failures[0]
	assert.Equal(t, "Client › authenticates", auth.TestName)
	assert.Equal(t, "expect(received).toBe(expected) // Object.is equality", auth.ErrorMessage)
	assert.Equal(t, "src/client.test.ts", auth.FilePath)
	require.NotNil(t, auth.LineNumber)
	assert.Equal(t, 11, *auth.LineNumber)

	upload := res.Failures[1]
	assert.Equal(t, "TypeError: Cannot read properties of undefined (reading 'put')", upload.ErrorMessage)
	assert.Equal(t, "src/client.ts", upload.FilePath)
}

func TestParseJest_SummaryVariants(t *testing.T) {
	tests := []struct {
		line                           string
		passed, failed, skipped, total int
	}{
		{"Tests:       3 passed, 3 total", 3, 0, 0, 3},
		{"Tests:       1 failed, 2 skipped, 4 passed, 7 total", 4, 1, 2, 7},
		{"Tests:       1 todo, 2 passed, 3 total", 2, 0, 1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			res := runners.Finalize(ParseJest(tt.line+"\n"), 0)
			assert.Equal(t, tt.passed, res.Passed)
			assert.Equal(t, tt.failed, res.Failed)
			assert.Equal(t, tt.skipped, res.Skipped)
			assert.Equal(t, tt.total, res.Total)
		})
	}
}

func TestParseJest_SuiteFailedToRun(t *testing.T) {
	output := `FAIL src/client.test.ts
  ● Test suite failed to run

    Cannot find module './client' from 'src/client.test.ts'

Test Suites: 1 failed, 1 total
Tests:       0 total
`
	res := runners.Finalize(ParseJest(output), 1)

	assert.False(t, res.Success)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "Test suite failed to run", res.Failures[0].TestName)
}

func TestParseVitest(t *testing.T) {
	res := runners.Finalize(ParseVitest(vitestFailingOutput), 1)

	assert.True(t, res.SummaryFound)
	assert.Equal(t, 2, res.Passed)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 4, res.Total)
	require.Len(t, res.Failures, 1)

	f := res.Failures[0]
	assert.Equal(t, "Client > authenticates", f.TestName)
	assert.Equal(t, "AssertionError: expected undefined to be 'abc'", f.ErrorMessage)
	assert.Equal(t, "src/client.test.ts", f.FilePath)
	require.NotNil(t, f.LineNumber)
	assert.Equal(t, 11, *f.LineNumber)
}

func TestParseVitest_AllPassing(t *testing.T) {
	output := " ✓ src/client.test.ts  (3 tests) 4ms\n\n Test Files  1 passed (1)\n      Tests  3 passed (3)\n"
	res := runners.Finalize(ParseVitest(output), 0)

	assert.True(t, res.Success)
	assert.Equal(t, 3, res.Total)
	assert.Empty(t, res.Failures)
}

func TestParseMocha(t *testing.T) {
	res := runners.Finalize(ParseMocha(mochaFailingOutput), 1)

	assert.True(t, res.SummaryFound)
	assert.Equal(t, 2, res.Passed)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 4, res.Total)
	require.Len(t, res.Failures, 1)

	f := res.Failures[0]
	assert.Equal(t, "Client authenticates", f.TestName)
	assert.Equal(t, "AssertionError [ERR_ASSERTION]: Expected values to be strictly equal:", f.ErrorMessage)
	assert.Equal(t, "test/client.test.js", f.FilePath)
	require.NotNil(t, f.LineNumber)
	assert.Equal(t, 11, *f.LineNumber)
}

func TestParsers_NoSummaryNeverSucceeds(t *testing.T) {
	for name, parse := range map[string]func(string) *runners.TestResult{
		"jest":   ParseJest,
		"vitest": ParseVitest,
		"mocha":  ParseMocha,
	} {
		t.Run(name, func(t *testing.T) {
			res := runners.Finalize(parse("sh: 1: tsc: not found\n"), 0)
			assert.False(t, res.SummaryFound)
			assert.False(t, res.Success)
			assert.Equal(t, res.Failed, res.Total)
			assert.Positive(t, res.Total)
		})
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name          string
		files         map[string]string
		wantDetected  bool
		wantLanguage  runtime.Language
		wantFramework runtime.Framework
	}{
		{
			name:          "jest dependency",
			files:         map[string]string{"package.json": `{"devDependencies": {"jest": "^29.7.0"}}`},
			wantDetected:  true,
			wantLanguage:  runtime.LanguageJavaScript,
			wantFramework: runtime.FrameworkJest,
		},
		{
			name: "typescript with vitest",
			files: map[string]string{
				"package.json":       `{"devDependencies": {"vitest": "^1.2.0", "typescript": "^5.3.0"}}`,
				"tsconfig.json":      "{}",
				"src/client.test.ts": "",
			},
			wantDetected:  true,
			wantLanguage:  runtime.LanguageTypeScript,
			wantFramework: runtime.FrameworkVitest,
		},
		{
			name:         "bare package.json",
			files:        map[string]string{"package.json": `{"name": "x"}`},
			wantDetected: false,
		},
		{
			name:         "test files without manifest",
			files:        map[string]string{"tsconfig.json": "{}", "a.test.ts": ""},
			wantDetected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := runnertest.CreateProject(t, tt.files)
			res := New(dir, runners.Env{Exec: executortest.New()}).Detect()

			assert.Equal(t, tt.wantDetected, res.Detected, "evidence: %v", res.Evidence)
			if tt.wantDetected {
				assert.Equal(t, tt.wantLanguage, res.Language)
				assert.Equal(t, tt.wantFramework, res.Framework)
				assert.Contains(t, res.Evidence, "package.json")
			}
		})
	}
}

func TestInstallDependencies_Idempotent(t *testing.T) {
	dir := runnertest.CreateProject(t, map[string]string{
		"package.json":      `{"devDependencies": {"jest": "^29.7.0", "ts-jest": "^29.1.0"}}`,
		"package-lock.json": "{}",
	})
	fake := executortest.New().On("npm install", func(cmd executor.Command) *executor.Result {
		require.NoError(t, os.MkdirAll(filepath.Join(cmd.Dir, "node_modules", "jest"), 0755))
		return &executor.Result{ExitCode: 0, Stdout: "added 312 packages in 9s"}
	})
	runner := New(dir, runners.Env{Exec: fake})

	first := runner.InstallDependencies(context.Background())
	require.True(t, first.Success, first.ErrorString())
	assert.False(t, first.Skipped)
	assert.Equal(t, 2, first.PackageCount)

	second := runner.InstallDependencies(context.Background())
	assert.True(t, second.Success)
	assert.True(t, second.Skipped)
	assert.Zero(t, second.Duration)
	assert.Len(t, fake.Calls(), 1)
}

func TestInstallDependencies_PackageManagerAndFailures(t *testing.T) {
	t.Run("yarn lockfile", func(t *testing.T) {
		dir := runnertest.CreateProject(t, map[string]string{"package.json": "{}", "yarn.lock": ""})
		fake := executortest.New().OnOutput("yarn install", "Done in 3.2s", 0)

		res := New(dir, runners.Env{Exec: fake}).InstallDependencies(context.Background())
		assert.True(t, res.Success)
		assert.True(t, fake.Ran("yarn install"))
	})

	t.Run("install timeout", func(t *testing.T) {
		dir := runnertest.CreateProject(t, map[string]string{"package.json": "{}"})
		fake := executortest.New().On("npm install", executortest.TimedOut(""))

		res := New(dir, runners.Env{Exec: fake}).InstallDependencies(context.Background())
		assert.False(t, res.Success)
		assert.True(t, errors.Is(res.Err, runners.ErrTimeout))
	})
}

func TestRunTests_ScenarioB(t *testing.T) {
	dir := runnertest.CreateProject(t, map[string]string{
		"package.json": `{"devDependencies": {"jest": "^29.7.0"}, "scripts": {"test": "jest"}}`,
	})
	fake := executortest.New().On("npx jest", executortest.Stderr("Tests:       2 failed, 5 passed, 7 total\n", 1))

	res, err := New(dir, runners.Env{Exec: fake}).RunTests(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 5, res.Passed)
	assert.Equal(t, 2, res.Failed)
	assert.Equal(t, 7, res.Total)
	assert.False(t, res.Success)
}

func TestRunTests_FrameworkCommands(t *testing.T) {
	tests := []struct {
		manifest string
		want     string
	}{
		{`{"devDependencies": {"vitest": "^1.0.0"}}`, "npx vitest run"},
		{`{"devDependencies": {"mocha": "^10.0.0"}}`, "npx mocha"},
		{`{"devDependencies": {"jest": "^29.0.0"}}`, "npx jest --ci"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			dir := runnertest.CreateProject(t, map[string]string{"package.json": tt.manifest})
			fake := executortest.New().OnOutput("npx", "", 0)

			_, err := New(dir, runners.Env{Exec: fake}).RunTests(context.Background(), "test")
			require.NoError(t, err)
			require.Len(t, fake.Calls(), 1)
			assert.Contains(t, fake.Calls()[0].String(), tt.want)
			assert.Equal(t, "test", fake.Calls()[0].Args[len(fake.Calls()[0].Args)-1])
		})
	}
}
