package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rosterCSV = "uid,s0_name,gender,phone_number,schoolname,school_role,Target.Group,cohort_assignment\n" +
	"U1,Ayesha,F,0300 1234567,GGS,Student,Grade 6,C1\n" +
	"U2,Bilal,M,+1-202-555-0123,,Teacher,Grade 7,C2\n" +
	"U3,Sana,F,12345,GGS,Student,Grade 6,C1\n"

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestValidate_PrintsReport(t *testing.T) {
	path := writeFile(t, "roster.csv", rosterCSV)

	out, err := run(t, "", "validate", "--file", path, "--rows")

	require.NoError(t, err)
	assert.Contains(t, out, "Import report for roster.csv")
	assert.Regexp(t, `Total rows\s+3`, out)
	assert.Regexp(t, `Valid\s+2`, out)
	assert.Regexp(t, `Invalid phones\s+1`, out)
	assert.Contains(t, out, `invalid phone number format: "12345"`)
	assert.Contains(t, out, "+923001234567")
	assert.Contains(t, out, "+12025550123")
}

func TestValidate_JSON(t *testing.T) {
	path := writeFile(t, "roster.csv", rosterCSV)

	out, err := run(t, "", "validate", "--file", path, "--json")
	require.NoError(t, err)

	var report struct {
		TotalRows  int `json:"total_rows"`
		ValidUsers []struct {
			UID string `json:"uid"`
		} `json:"valid_users"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 3, report.TotalRows)
	assert.Len(t, report.ValidUsers, 2)
}

func TestValidate_FileLevelFailures(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		code    int
		message string
	}{
		{"empty", "roster.csv", "", exitValidation, "file is empty"},
		{"missing column", "roster.csv", "uid,s0_name\nU1,A\n", exitValidation, "missing required columns: gender"},
		{"unsupported", "roster.txt", rosterCSV, exitUsage, "unsupported file format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.content)

			_, err := run(t, "", "validate", "--file", path)

			require.Error(t, err)
			assert.Equal(t, tt.code, exitCodeOf(err))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestValidate_MissingFile(t *testing.T) {
	_, err := run(t, "", "validate", "--file", filepath.Join(t.TempDir(), "nope.csv"))

	require.Error(t, err)
	assert.Equal(t, exitUsage, exitCodeOf(err))
}

func TestUpload_ConfirmedSendsOnce(t *testing.T) {
	var calls int32
	var received []map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_ = json.NewDecoder(r.Body).Decode(&received)
	}))
	defer srv.Close()
	path := writeFile(t, "roster.csv", rosterCSV)

	out, err := run(t, "y\n", "upload", "--file", path, "--endpoint", srv.URL)

	require.NoError(t, err)
	assert.Contains(t, out, "Upload 2 users to "+srv.URL+"? [y/N]")
	assert.Contains(t, out, "Uploaded 2 users.")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	require.Len(t, received, 2)
	assert.Equal(t, "U1", received[0]["uid"])
}

func TestUpload_DeclinedSendsNothing(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()
	path := writeFile(t, "roster.csv", rosterCSV)

	out, err := run(t, "n\n", "upload", "--file", path, "--endpoint", srv.URL)

	require.NoError(t, err)
	assert.Contains(t, out, "Upload cancelled.")
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestUpload_RejectedByBackend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"message":"Cohort 'C2' does not exist"}`)
	}))
	defer srv.Close()
	path := writeFile(t, "roster.csv", rosterCSV)

	_, err := run(t, "", "upload", "--file", path, "--endpoint", srv.URL, "--yes")

	require.Error(t, err)
	assert.Equal(t, exitUpload, exitCodeOf(err))
	assert.Contains(t, err.Error(), "Cohort 'C2' does not exist")
}

func TestUpload_NoValidRows(t *testing.T) {
	path := writeFile(t, "roster.csv",
		"uid,s0_name,gender,phone_number,schoolname,school_role,Target.Group,cohort_assignment\nU1,A,F,42,,S,G,C\n")

	_, err := run(t, "", "upload", "--file", path, "--endpoint", "http://127.0.0.1:1", "--yes")

	require.Error(t, err)
	assert.Equal(t, exitValidation, exitCodeOf(err))
}

func TestUpload_RequiresEndpoint(t *testing.T) {
	t.Setenv("BATCH_UPLOAD_URL", "")
	path := writeFile(t, "roster.csv", rosterCSV)

	_, err := run(t, "", "upload", "--file", path)

	require.Error(t, err)
	assert.Equal(t, exitUsage, exitCodeOf(err))
}

func TestConfirm(t *testing.T) {
	tests := map[string]bool{"y\n": true, "YES\n": true, " yes ": true, "\n": false, "no\n": false, "": false}
	for in, want := range tests {
		got, err := confirm(strings.NewReader(in), io.Discard, "go?")
		require.NoError(t, err)
		assert.Equal(t, want, got, "input %q", in)
	}
}

func TestExitCodeOf(t *testing.T) {
	assert.Equal(t, exitOK, exitCodeOf(nil))
	assert.Equal(t, exitFailure, exitCodeOf(errors.New("boom")))
	assert.Equal(t, exitUpload, exitCodeOf(withCode(exitUpload, errors.New("boom"))))
}
