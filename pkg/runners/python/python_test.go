package python

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sdkbench/pkg/executor"
	"sdkbench/pkg/executor/executortest"
	"sdkbench/pkg/runners"
	"sdkbench/pkg/runners/runnertest"
	"sdkbench/pkg/runtime"
)

const passingOutput = `============================= test session starts ==============================
platform linux -- Python 3.11.6, pytest-7.4.3, pluggy-1.3.0 -- /usr/bin/python3
cachedir: .pytest_cache
rootdir: /tmp/sample
collecting ... collected 3 items

tests/test_client.py::test_init PASSED                                   [ 33%]
tests/test_client.py::test_auth PASSED                                   [ 66%]
tests/test_client.py::test_retry PASSED                                  [100%]

============================== 3 passed in 0.12s ===============================
`

const failingOutput = `============================= test session starts ==============================
collecting ... collected 5 items

tests/test_client.py::test_init PASSED                                   [ 20%]
tests/test_client.py::TestClient::test_auth FAILED                       [ 40%]
tests/test_client.py::test_retry PASSED                                  [ 60%]
tests/test_client.py::test_stream SKIPPED (no network)                   [ 80%]
tests/test_client.py::test_upload ERROR                                  [100%]

==================================== ERRORS ====================================
________________________ ERROR at setup of test_upload _________________________
tests/conftest.py:8: in bucket
    raise RuntimeError("bucket missing")
E   RuntimeError: bucket missing
=================================== FAILURES ===================================
____________________________ TestClient.test_auth ______________________________
tests/test_client.py:21: in test_auth
    assert client.token == "abc"
E   AssertionError: assert None == 'abc'
=========================== short test summary info ============================
FAILED tests/test_client.py::TestClient::test_auth - AssertionError: assert None == 'abc'
ERROR tests/test_client.py::test_upload - RuntimeError: bucket missing
============ 1 failed, 2 passed, 1 skipped, 1 error in 0.48s ==============
`

func TestParseOutput_AllPassing(t *testing.T) {
	res := runners.Finalize(ParseOutput(passingOutput), 0)

	assert.True(t, res.SummaryFound)
	assert.True(t, res.Success)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 3, res.Passed)
	assert.Empty(t, res.Failures)
}

func TestParseOutput_FailuresAndErrors(t *testing.T) {
	res := runners.Finalize(ParseOutput(failingOutput), 1)

	assert.False(t, res.Success)
	assert.Equal(t, 2, res.Passed)
	assert.Equal(t, 2, res.Failed)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 5, res.Total)
	require.Len(t, res.Failures, 2)

	auth := res.Failures[0]
	assert.Equal(t, "TestClient::test_auth", auth.TestName)
	assert.Equal(t, "AssertionError: assert None == 'abc'", auth.ErrorMessage)
	assert.Equal(t, "tests/test_client.py", auth.FilePath)
	require.NotNil(t, auth.LineNumber)
	assert.Equal(t, 21, *auth.LineNumber)
	assert.Contains(t, auth.StackTrace, "assert client.token")

	upload := res.Failures[1]
	assert.Equal(t, "test_upload", upload.TestName)
	assert.Equal(t, "RuntimeError: bucket missing", upload.ErrorMessage)
	require.NotNil(t, upload.LineNumber)
	assert.Equal(t, 8, *upload.LineNumber)
}

func TestParseOutput_LongSectionTitles(t *testing.T) {
	output := `=================================== FAILURES ===================================
__________________________________ test_short __________________________________
tests/test_a.py:5: in test_short
    helper()
_ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _ _
tests/test_a.py:2: in helper
    assert 1 == 2
E   assert 1 == 2
_ test_very_long_parametrized_name[region-eu-west-1-with-a-very-long-parameter-id] _
tests/test_b.py:99: in test_very_long_parametrized_name
    assert resp.status == 200
E   AssertionError: assert 500 == 200
=========================== short test summary info ============================
FAILED tests/test_a.py::test_short - assert 1 == 2
FAILED tests/test_b.py::test_very_long_parametrized_name[region-eu-west-1-with-a-very-long-parameter-id] - AssertionError: assert 500 == 200
============================== 2 failed in 0.30s ===============================
`
	res := runners.Finalize(ParseOutput(output), 1)

	require.Len(t, res.Failures, 2)
	short, long := res.Failures[0], res.Failures[1]

	assert.Equal(t, "test_short", short.TestName)
	assert.Equal(t, "tests/test_a.py", short.FilePath)
	require.NotNil(t, short.LineNumber)
	assert.Equal(t, 2, *short.LineNumber)
	assert.NotContains(t, short.StackTrace, "test_b.py")

	assert.Equal(t, "tests/test_b.py", long.FilePath)
	require.NotNil(t, long.LineNumber)
	assert.Equal(t, 99, *long.LineNumber)
	assert.Equal(t, "AssertionError: assert 500 == 200", long.ErrorMessage)
}

func TestParseOutput_TruncatedCaptureKeepsSummary(t *testing.T) {
	env := runners.Env{Exec: executor.New(executor.WithMaxOutputBytes(256))}.WithDefaults()
	script := `for i in $(seq 1 20); do echo "tests/test_api.py::test_case_$i PASSED"; done; ` +
		`echo "============================== 20 passed in 0.12s =============================="`

	res, err := runners.Execute(context.Background(), env, executor.Shell(script, t.TempDir(), 10*time.Second), ParseOutput)

	require.NoError(t, err)
	assert.True(t, res.Truncated)
	assert.True(t, res.SummaryFound)
	assert.True(t, res.Success)
	assert.Equal(t, 20, res.Passed)
	assert.Equal(t, 20, res.Total)
}

func TestParseOutput_NoSummary(t *testing.T) {
	output := "FAILED tests/test_a.py::test_one - assert False\nFAILED tests/test_a.py::test_two\nKilled\n"
	res := runners.Finalize(ParseOutput(output), 137)

	assert.False(t, res.SummaryFound)
	assert.False(t, res.Success)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 2, res.Failed)
	assert.Equal(t, 0, res.Passed)
}

func TestParseOutput_Parametrized(t *testing.T) {
	output := "FAILED tests/test_a.py::test_div[zero case] - ZeroDivisionError\n" +
		"========================= 1 failed, 3 passed in 0.05s =========================\n"
	res := runners.Finalize(ParseOutput(output), 1)

	require.Len(t, res.Failures, 1)
	want := runners.TestFailure{
		TestName:     "test_div[zero case]",
		ErrorMessage: "ZeroDivisionError",
		FilePath:     "tests/test_a.py",
	}
	if diff := cmp.Diff(want, res.Failures[0]); diff != "" {
		t.Errorf("failure mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 4, res.Total)
}

func TestParseOutput_NoTestsRan(t *testing.T) {
	res := runners.Finalize(ParseOutput("============================ no tests ran in 0.01s ============================\n"), 5)

	assert.True(t, res.SummaryFound)
	assert.Equal(t, 0, res.Total)
	assert.False(t, res.Success)
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name         string
		files        map[string]string
		wantDetected bool
		wantConf     float64
	}{
		{
			name:         "requirements only",
			files:        map[string]string{"requirements.txt": "requests\n"},
			wantDetected: true,
			wantConf:     0.25,
		},
		{
			name: "full pytest project",
			files: map[string]string{
				"requirements.txt":     "requests\n",
				"pyproject.toml":       "[project]\nname = \"x\"\n",
				"conftest.py":          "",
				"tests/test_client.py": "def test_x(): pass\n",
			},
			wantDetected: true,
			wantConf:     1.0,
		},
		{
			name:         "javascript project",
			files:        map[string]string{"package.json": "{}", "index.test.js": ""},
			wantDetected: false,
			wantConf:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := runnertest.CreateProject(t, tt.files)
			res := New(dir, runners.Env{Exec: executortest.New()}).Detect()

			assert.Equal(t, tt.wantDetected, res.Detected)
			assert.Equal(t, tt.wantConf, res.Confidence)
			if tt.wantDetected {
				assert.Equal(t, runtime.LanguagePython, res.Language)
				assert.Equal(t, runtime.FrameworkPytest, res.Framework)
			}
		})
	}
}

func TestInstallDependencies(t *testing.T) {
	t.Run("requirements file", func(t *testing.T) {
		dir := runnertest.CreateProject(t, map[string]string{
			"requirements.txt": "# deps\nrequests==2.31.0\npytest>=7\n\n-r dev.txt\n",
		})
		fake := executortest.New().OnOutput("pip install -r requirements.txt", "Successfully installed requests-2.31.0 pytest-7.4.3 urllib3-2.1.0\n", 0)

		res := New(dir, runners.Env{Exec: fake}).InstallDependencies(context.Background())
		require.True(t, res.Success, res.ErrorString())
		assert.Equal(t, 3, res.PackageCount)
	})

	t.Run("editable install from pyproject", func(t *testing.T) {
		dir := runnertest.CreateProject(t, map[string]string{"pyproject.toml": "[project]\nname = \"x\"\n"})
		fake := executortest.New().OnOutput("pip install -e .", "", 0)

		res := New(dir, runners.Env{Exec: fake}).InstallDependencies(context.Background())
		require.True(t, res.Success)
		assert.Equal(t, 1, res.PackageCount)
		assert.True(t, fake.Ran("pip install -e ."))
	})

	t.Run("nothing to install", func(t *testing.T) {
		dir := runnertest.CreateProject(t, map[string]string{"tests/test_x.py": ""})
		fake := executortest.New()

		res := New(dir, runners.Env{Exec: fake}).InstallDependencies(context.Background())
		assert.True(t, res.Success)
		assert.Equal(t, 0, res.PackageCount)
		assert.Empty(t, fake.Calls())
	})

	t.Run("bad requirement line", func(t *testing.T) {
		dir := runnertest.CreateProject(t, map[string]string{"requirements.txt": "not-a-real-pkg===\n"})
		fake := executortest.New().On("pip install", executortest.Stderr("ERROR: Invalid requirement: 'not-a-real-pkg==='", 1))

		res := New(dir, runners.Env{Exec: fake}).InstallDependencies(context.Background())
		assert.False(t, res.Success)
		assert.True(t, errors.Is(res.Err, runners.ErrInstallFailed))
		assert.Contains(t, res.ErrorString(), "Invalid requirement")
	})

	t.Run("pip missing", func(t *testing.T) {
		dir := runnertest.CreateProject(t, map[string]string{"requirements.txt": "requests\n"})

		res := New(dir, runners.Env{Exec: executortest.New()}).InstallDependencies(context.Background())
		assert.False(t, res.Success)
		assert.True(t, errors.Is(res.Err, runners.ErrToolNotFound))
	})
}

func TestRunTests_UsesTestsDirAndTimeout(t *testing.T) {
	dir := runnertest.CreateProject(t, map[string]string{
		"requirements.txt":     "requests\n",
		"tests/test_client.py": "",
	})
	fake := executortest.New().On("-m pytest", executortest.TimedOut("tests/test_client.py::test_init PASSED\n"))

	res, err := New(dir, runners.Env{Exec: fake}).RunTests(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, res.Success)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "timeout", res.Failures[0].TestName)
	assert.Equal(t, 0, res.Passed)

	calls := fake.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "tests", calls[0].Args[len(calls[0].Args)-1])
}

func TestNew_FallsBackToPythonBinary(t *testing.T) {
	bin := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(bin, "python"), []byte("#!/bin/sh\n"), 0755))
	t.Setenv("PATH", bin)

	dir := runnertest.CreateProject(t, map[string]string{"requirements.txt": "requests\n"})
	fake := executortest.New().OnOutput("-m pytest", passingOutput, 0)

	_, err := New(dir, runners.Env{Exec: fake}).RunTests(context.Background(), "")
	require.NoError(t, err)

	calls := fake.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "python", calls[0].Name)
}
