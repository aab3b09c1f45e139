package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qcform/internal/sheetstore"
	"github.com/roach88/qcform/internal/testutil"
)

const testSpecs = `[
	{"Linea": "L1", "Tipo": "Torque", "Puesto": "A", "Fixture": "", "Min": 10, "Max": 20},
	{"Linea": "L1", "Tipo": "Prensa", "Puesto": "B", "Fixture": "F1", "Punto": "P1",
	 "Min": "", "Max": "", "Min_Seg": 2, "Max_Seg": 4, "Ciclos": 5},
	{"Linea": 205, "Tipo": "Pulsera", "Puesto": 3}
]`

// sheetFixture is a seeded local sheet plus a config file pointing at it.
type sheetFixture struct {
	store  *sheetstore.Store
	url    string
	config string
}

func newSheetFixture(t *testing.T, extraConfig string) sheetFixture {
	t.Helper()
	return newSheetFixtureWithSpecs(t, testSpecs, extraConfig)
}

func newSheetFixtureWithSpecs(t *testing.T, specs, extraConfig string) sheetFixture {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	st, err := sheetstore.Open(filepath.Join(t.TempDir(), "sheet.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	srv := sheetstore.NewServer(st, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, srv.Seed(context.Background(), sheetstore.Seed{
		Specs:     []byte(specs),
		Allowlist: []string{"known@newsan.com.ar"},
	}))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return sheetFixture{store: st, url: ts.URL, config: writeConfig(t, ts.URL, extraConfig)}
}

func writeConfig(t *testing.T, baseURL, extra string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "qcform.yaml")
	content := fmt.Sprintf(`endpoints:
  specs: %[1]s/specs
  submit: %[1]s/records
  allowlist: %[1]s/allowlist
timestamp:
  location: UTC
%[2]s`, baseURL, extra)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writeReadings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "readings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// run executes cmd with args and returns stdout.
func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// runRoot executes the full command tree.
func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return run(t, NewRootCommand(), args...)
}

func submitCommand(format, config string) *cobra.Command {
	return newSubmitCommand(&SubmitOptions{
		RootOptions: &RootOptions{Format: format, Config: config},
		Clock:       testutil.NewDeterministicClock(),
		IDs:         testutil.NewFixedIDGenerator("session-1"),
	})
}

// decodeResponse parses a JSON envelope and, for ok responses, its data into v.
func decodeResponse(t *testing.T, out string, v any) CLIResponse {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	if v != nil && resp.Data != nil {
		raw, err := json.Marshal(resp.Data)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, v))
	}
	return resp
}

func TestLinesCommand(t *testing.T) {
	fx := newSheetFixture(t, "")

	out, err := runRoot(t, "--config", fx.config, "--format", "json", "lines")
	require.NoError(t, err)

	var result LinesResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, []string{"205", "L1"}, result.Lines)

	out, err = runRoot(t, "--config", fx.config, "lines")
	require.NoError(t, err)
	assert.Equal(t, "205\nL1\n", out)
}

func TestSpecsCommand_Text(t *testing.T) {
	fx := newSheetFixture(t, "")

	out, err := runRoot(t, "--config", fx.config, "specs", "--line", "L1", "--type", "press")
	require.NoError(t, err)
	assert.Contains(t, out, "[0] B")
	assert.Contains(t, out, "P1 / F1")
	assert.Contains(t, out, "Result: OK | NG")
	assert.Contains(t, out, "Cycles (ref: 5)")
	assert.Contains(t, out, "Seconds (spec: 2 - 4)")
	assert.NotContains(t, out, "Allowed range")

	out, err = runRoot(t, "--config", fx.config, "specs", "--line", "L1", "--type", "Torque")
	require.NoError(t, err)
	assert.Contains(t, out, "[0] A")
	assert.Contains(t, out, "Allowed range: 10 - 20")
}

func TestSpecsCommand_NoStations(t *testing.T) {
	fx := newSheetFixture(t, "")

	out, err := runRoot(t, "--config", fx.config, "--format", "json", "specs", "--line", "L9", "--type", "Torque")
	require.NoError(t, err)

	var result SpecsResult
	decodeResponse(t, out, &result)
	assert.Equal(t, "L9", result.Line)
	assert.Empty(t, result.Rows)
}

func TestSpecsCommand_UnknownControlType(t *testing.T) {
	fx := newSheetFixture(t, "")

	out, err := runRoot(t, "--config", fx.config, "--format", "json", "specs", "--line", "L1", "--type", "Laser")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	resp := decodeResponse(t, out, nil)
	assert.Equal(t, ErrCodeUsage, resp.Error.Code)
}

func TestSubmitCommand_Torque(t *testing.T) {
	fx := newSheetFixture(t, "")
	readings := writeReadings(t, "readings:\n  - station: A\n    result: 15\n")

	out, err := run(t, submitCommand("json", fx.config), "--line", "L1", "--type", "Torque", "--readings", readings)
	require.NoError(t, err)

	var result SubmitResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "session-1", result.Session)
	assert.Equal(t, "usuario@newsan.com.ar", result.Operator)
	assert.Equal(t, 1, result.Records)
	assert.Equal(t, 1, result.Accepted)

	records, err := fx.store.ListRecords(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	r := records[0]
	assert.Equal(t, fmt.Sprintf("%d0", testutil.Epoch.UnixMilli()), r.ID)
	assert.Equal(t, "14/3/2025, 09:30:00", r.Timestamp)
	assert.Equal(t, "Torque", r.ControlType)
	assert.Equal(t, "L1", r.Line)
	assert.Equal(t, "A", r.Station)
	assert.Equal(t, "15", r.Result)
	assert.Equal(t, "10", string(r.Min.Raw()))
	assert.Equal(t, "20", string(r.Max.Raw()))
}

func TestSubmitCommand_PressWithSeconds(t *testing.T) {
	fx := newSheetFixture(t, "")
	readings := writeReadings(t, `readings:
  - station: B
    fixture: F1
    result: ok
    cycles: 5
    seconds: "3,5"
`)

	out, err := run(t, submitCommand("text", fx.config), "--line", "L1", "--type", "Prensa", "--readings", readings)
	require.NoError(t, err)
	assert.Equal(t, "Submitted 2 record(s) for line L1 (Prensa).\n", out)

	records, err := fx.store.ListRecords(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "F1", records[0].Fixture)
	assert.Equal(t, "OK", records[0].Result)
	assert.Equal(t, "F1.Segundos", records[1].Fixture)
	assert.Equal(t, "2", string(records[1].Min.Raw()))
	assert.True(t, strings.Contains(records[1].ID, "_s_0"))
}

func TestSubmitCommand_PointsUnderOneFixture(t *testing.T) {
	fx := newSheetFixtureWithSpecs(t, `[
		{"Linea": "L1", "Tipo": "Prensa", "Puesto": "B", "Fixture": "F1", "Punto": "P1"},
		{"Linea": "L1", "Tipo": "Prensa", "Puesto": "B", "Fixture": "F1", "Punto": "P2"},
		{"Linea": "L1", "Tipo": "Prensa", "Puesto": "C", "Fixture": "F2", "Punto": "P1"}
	]`, "")
	readings := writeReadings(t, `readings:
  - station: B
    fixture: F1
    point: P2
    result: NG
  - station: B
    point: P1
    result: OK
  - index: 2
    result: OK
`)

	out, err := run(t, submitCommand("json", fx.config), "--line", "L1", "--type", "Prensa", "--readings", readings)
	require.NoError(t, err)

	var result SubmitResult
	decodeResponse(t, out, &result)
	assert.Equal(t, 3, result.Records)
	assert.Equal(t, 3, result.Accepted)

	records, err := fx.store.ListRecords(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "OK", records[0].Result)
	assert.Equal(t, "NG", records[1].Result)
	assert.Equal(t, "C", records[2].Station)
}

func TestSubmitCommand_AmbiguousReading(t *testing.T) {
	fx := newSheetFixtureWithSpecs(t, `[
		{"Linea": "L1", "Tipo": "Prensa", "Puesto": "B", "Fixture": "F1", "Punto": "P1"},
		{"Linea": "L1", "Tipo": "Prensa", "Puesto": "B", "Fixture": "F1", "Punto": "P2"}
	]`, "")
	tests := []struct {
		name     string
		readings string
		code     string
	}{
		{"station and fixture only", "readings:\n  - station: B\n    fixture: F1\n    result: OK\n", ErrCodeValidation},
		{"index out of range", "readings:\n  - index: 5\n    result: OK\n", ErrCodeValidation},
		{"index with station", "readings:\n  - index: 0\n    station: B\n    result: OK\n", ErrCodeUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, submitCommand("json", fx.config),
				"--line", "L1", "--type", "Prensa", "--readings", writeReadings(t, tt.readings))
			require.Error(t, err)
			assert.Equal(t, tt.code, decodeResponse(t, out, nil).Error.Code)
		})
	}
}

func TestSubmitCommand_Incomplete(t *testing.T) {
	fx := newSheetFixture(t, "")
	readings := writeReadings(t, "readings:\n  - station: B\n    result: OK\n")

	out, err := run(t, submitCommand("json", fx.config), "--line", "L1", "--type", "Prensa", "--readings", readings)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp := decodeResponse(t, out, nil)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "cycles")

	records, err := fx.store.ListRecords(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSubmitCommand_InvalidReading(t *testing.T) {
	fx := newSheetFixture(t, "")
	tests := []struct {
		name     string
		readings string
	}{
		{"verdict outside vocabulary", "readings:\n  - station: B\n    result: TNG\n"},
		{"unknown station", "readings:\n  - station: Z\n    result: OK\n"},
		{"negative seconds", "readings:\n  - station: B\n    seconds: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, submitCommand("json", fx.config),
				"--line", "L1", "--type", "Prensa", "--readings", writeReadings(t, tt.readings))
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))
			assert.Equal(t, ErrCodeValidation, decodeResponse(t, out, nil).Error.Code)
		})
	}
}

func TestSubmitCommand_UnknownReadingsField(t *testing.T) {
	fx := newSheetFixture(t, "")
	readings := writeReadings(t, "readings:\n  - station: A\n    resultado: 15\n")

	out, err := run(t, submitCommand("json", fx.config), "--line", "L1", "--type", "Torque", "--readings", readings)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Equal(t, ErrCodeUsage, decodeResponse(t, out, nil).Error.Code)
}

func TestSubmitCommand_DryRun(t *testing.T) {
	fx := newSheetFixture(t, "")
	readings := writeReadings(t, "readings:\n  - station: A\n    result: \"15,5\"\n")

	out, err := run(t, submitCommand("json", fx.config),
		"--line", "L1", "--type", "Torque", "--readings", readings, "--dry-run")
	require.NoError(t, err)

	var result SubmitResult
	decodeResponse(t, out, &result)
	assert.True(t, result.DryRun)
	assert.Equal(t, 1, result.Records)
	assert.Zero(t, result.Accepted)
	require.Len(t, result.Payload, 1)
	assert.Equal(t, "15,5", result.Payload[0].Result)

	records, err := fx.store.ListRecords(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSubmitCommand_Stdin(t *testing.T) {
	fx := newSheetFixture(t, "")

	cmd := submitCommand("json", fx.config)
	cmd.SetIn(strings.NewReader("readings:\n  - station: A\n    result: 12\n"))
	_, err := run(t, cmd, "--line", "L1", "--type", "Torque", "--readings", "-")
	require.NoError(t, err)

	records, err := fx.store.ListRecords(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestSubmitCommand_MarkupReply(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	mux := http.NewServeMux()
	mux.HandleFunc("/specs", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testSpecs))
	})
	mux.HandleFunc("/records", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("  <!DOCTYPE html><html><body>Script error</body></html>"))
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	readings := writeReadings(t, "readings:\n  - station: A\n    result: 15\n")
	out, err := run(t, submitCommand("json", writeConfig(t, ts.URL, "")),
		"--line", "L1", "--type", "Torque", "--readings", readings)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, ErrCodeMalformed, decodeResponse(t, out, nil).Error.Code)
}

func TestSubmitCommand_Unreachable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	readings := writeReadings(t, "readings:\n  - station: A\n    result: 15\n")
	out, err := run(t, submitCommand("json", writeConfig(t, url, "")),
		"--line", "L1", "--type", "Torque", "--readings", readings)
	require.Error(t, err)
	assert.Equal(t, ErrCodeTransport, decodeResponse(t, out, nil).Error.Code)
}

func TestSubmitCommand_AccessGate(t *testing.T) {
	fx := newSheetFixture(t, "access:\n  enabled: true\n")
	readings := writeReadings(t, "readings:\n  - station: A\n    result: 15\n")

	out, err := run(t, submitCommand("json", fx.config),
		"--line", "L1", "--type", "Torque", "--readings", readings, "--operator", "x@gmail.com")
	require.Error(t, err)
	assert.Equal(t, ErrCodeAccess, decodeResponse(t, out, nil).Error.Code)

	out, err = run(t, submitCommand("json", fx.config),
		"--line", "L1", "--type", "Torque", "--readings", readings, "--operator", " Known@NEWSAN.com.ar")
	require.NoError(t, err)

	var result SubmitResult
	decodeResponse(t, out, &result)
	assert.Equal(t, "known@newsan.com.ar", result.Operator)

	records, err := fx.store.ListRecords(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "known@newsan.com.ar", records[0].Operator)
}

func TestLoginCommand(t *testing.T) {
	fx := newSheetFixture(t, "")

	out, err := runRoot(t, "--config", fx.config, "login", "KNOWN@newsan.com.ar")
	require.NoError(t, err)
	assert.Contains(t, out, "Welcome, known!")

	out, err = runRoot(t, "--config", fx.config, "--format", "json", "login", "known@newsan.com.ar")
	require.NoError(t, err)
	var result LoginResult
	decodeResponse(t, out, &result)
	assert.Equal(t, "authenticated", result.State)
	assert.Equal(t, "remote", result.Allowlist)
	assert.Equal(t, "known", result.Name)
}

func TestLoginCommand_Denied(t *testing.T) {
	fx := newSheetFixture(t, "")

	tests := []struct {
		name      string
		candidate string
	}{
		{"foreign domain", "known@gmail.com"},
		{"not listed", "stranger@newsan.com.ar"},
		{"malformed", "known"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runRoot(t, "--config", fx.config, "--format", "json", "login", tt.candidate)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))
			assert.Equal(t, ErrCodeAccess, decodeResponse(t, out, nil).Error.Code)
		})
	}
}

func TestLoginCommand_FallbackAllowlist(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": false, "error": "sheet locked"}`))
	}))
	t.Cleanup(ts.Close)

	out, err := runRoot(t, "--config", writeConfig(t, ts.URL, ""), "--format", "json",
		"login", "joaquin.acevedo@newsan.com.ar")
	require.NoError(t, err)

	var result LoginResult
	decodeResponse(t, out, &result)
	assert.Equal(t, "fallback", result.Allowlist)
	assert.Equal(t, "joaquin.acevedo", result.Name)
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(good, []byte(testSpecs), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte(`[{"Linea": "L1", "Puesto": {"nested": true}}]`), 0o644))

	out, err := runRoot(t, "--format", "json", "validate", good)
	require.NoError(t, err)
	var result ValidationResult
	decodeResponse(t, out, &result)
	assert.True(t, result.Valid)
	assert.Equal(t, 3, result.Rows)
	assert.Equal(t, map[string]int{"Torque": 1, "Prensa": 1, "Pulsera": 1}, result.Counts)

	out, err = runRoot(t, "validate", good)
	require.NoError(t, err)
	assert.Equal(t, "✓ 3 row(s), 2 line(s) valid\n", out)

	out, err = runRoot(t, "--format", "json", "validate", bad)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, ErrCodeSchema, decodeResponse(t, out, nil).Error.Code)

	_, err = runRoot(t, "validate", filepath.Join(dir, "missing.json"))
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestInvalidConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "qcform.yaml")
	require.NoError(t, os.WriteFile(path, []byte("endpoints:\n  submit: ftp://nowhere\n"), 0o644))

	out, err := runRoot(t, "--config", path, "--format", "json", "lines")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Equal(t, ErrCodeConfig, decodeResponse(t, out, nil).Error.Code)
}

func TestServeSheetCommand(t *testing.T) {
	dir := t.TempDir()
	specs := filepath.Join(dir, "specs.json")
	require.NoError(t, os.WriteFile(specs, []byte(testSpecs), 0o644))

	ready := make(chan string, 1)
	cmd := newServeSheetCommand(&ServeSheetOptions{
		RootOptions: &RootOptions{Format: "text"},
		Ready:       ready,
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cmd.SetContext(ctx)

	errCh := make(chan error, 1)
	go func() {
		_, err := run(t, cmd, "--db", filepath.Join(dir, "sheet.db"), "--addr", "127.0.0.1:0", "--specs", specs)
		errCh <- err
	}()

	var addr string
	select {
	case addr = <-ready:
	case err := <-errCh:
		t.Fatalf("serve-sheet exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve-sheet did not start")
	}

	resp, err := http.Get("http://" + addr + "/specs")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"Puesto":"B"`)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve-sheet did not stop")
	}
}
