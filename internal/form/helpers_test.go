package form

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/qcform/internal/catalog"
	"github.com/roach88/qcform/internal/testutil"
)

const testOperator = "usuario@newsan.com.ar"

// decodeRows decodes sheet rows for tests.
func decodeRows(t *testing.T, payload string) []catalog.Row {
	t.Helper()
	rows, err := catalog.Decode([]byte(payload))
	require.NoError(t, err)
	return rows
}

// loadedSession returns a session with line/control selected and rows installed.
func loadedSession(t *testing.T, line string, ct catalog.ControlType, rows []catalog.Row) Session {
	t.Helper()
	s := NewSession(testOperator, testutil.NewFixedIDGenerator("session-1"))
	s = s.SelectLine(line).SelectControl(ct)

	ticket, err := s.BeginLoad()
	require.NoError(t, err)

	s, err = s.WithCatalog(ticket, catalog.Filter(rows, line, ct))
	require.NoError(t, err)
	return s
}

// fill applies result/cycles/seconds to the row at index; empty strings are skipped.
func fill(t *testing.T, s Session, index int, result, cycles, seconds string) Session {
	t.Helper()
	key, err := s.Key(index)
	require.NoError(t, err)

	if result != "" {
		s, err = s.SetResult(key, result)
		require.NoError(t, err)
	}
	if cycles != "" {
		s, err = s.SetCycleCount(key, cycles)
		require.NoError(t, err)
	}
	if seconds != "" {
		s, err = s.SetSeconds(key, seconds)
		require.NoError(t, err)
	}
	return s
}

const torqueRow = `[{"Linea": "L1", "Tipo": "Torque", "Puesto": "A", "Fixture": "", "Min": 10, "Max": 20}]`

const pressRow = `[{"Linea": "L1", "Tipo": "Prensa", "Puesto": "B", "Fixture": "F1", "Punto": "P1",
	"Min": "", "Max": "", "Min_Seg": 2, "Max_Seg": 4, "Ciclos": 5}]`

const pressRows = `[
	{"Linea": "L1", "Tipo": "Prensa", "Puesto": "B", "Fixture": "F1", "Punto": "P1", "Min": "", "Max": "", "Min_Seg": 2, "Max_Seg": 4, "Ciclos": 5},
	{"Linea": "L1", "Tipo": "Prensa", "Puesto": "C", "Fixture": "F2", "Punto": "P2", "Min": 100, "Max": 200, "Min_Seg": "", "Max_Seg": "", "Ciclos": ""}
]`
