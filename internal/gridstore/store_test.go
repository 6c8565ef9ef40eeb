package gridstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/banshee-data/occupancy.report/internal/mapping"
	"github.com/banshee-data/occupancy.report/internal/testutil"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(testutil.TempDBPath(t))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testSessionRecord(id string) SessionRecord {
	return SessionRecord{
		SessionID:          id,
		Label:              "hallway run",
		CellSize:           0.2,
		Rows:               50,
		Cols:               80,
		OriginX:            -4,
		OriginY:            -2,
		FreeConfidence:     0.3,
		OccupiedConfidence: 0.9,
		StartedAt:          time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}
}

func TestOpen_CreatesSchema(t *testing.T) {
	s := openTestStore(t)

	// schema applied: inserting a session must work straight away
	err := s.InsertSession(testSessionRecord(NewSessionID()))
	require.NoError(t, err)
}

func TestSessionRoundTrip(t *testing.T) {
	s := openTestStore(t)
	id := NewSessionID()
	rec := testSessionRecord(id)
	require.NoError(t, s.InsertSession(rec))

	got, err := s.GetSession(id)
	require.NoError(t, err)
	require.Equal(t, rec.Label, got.Label)
	require.Equal(t, rec.CellSize, got.CellSize)
	require.Equal(t, rec.Rows, got.Rows)
	require.Equal(t, rec.Cols, got.Cols)
	require.True(t, rec.StartedAt.Equal(got.StartedAt))
	require.Nil(t, got.CompletedAt)
}

func TestCompleteSession_StoresDiagnostics(t *testing.T) {
	s := openTestStore(t)
	id := NewSessionID()
	require.NoError(t, s.InsertSession(testSessionRecord(id)))

	d := mapping.Diagnostics{
		StepsProcessed: 120,
		RaysProcessed:  42000,
		RaysSkipped:    17,
		RaysClamped:    3,
		RaysTruncated:  900,
	}
	done := time.Date(2026, 3, 14, 9, 45, 0, 0, time.UTC)
	require.NoError(t, s.CompleteSession(id, done, d))

	got, err := s.GetSession(id)
	require.NoError(t, err)
	require.NotNil(t, got.CompletedAt)
	require.True(t, done.Equal(*got.CompletedAt))
	require.Equal(t, int64(42000), got.RaysProcessed)
	require.Equal(t, int64(17), got.RaysSkipped)
}

func TestCompleteSession_UnknownIDIsError(t *testing.T) {
	s := openTestStore(t)
	err := s.CompleteSession("no-such-session", time.Now(), mapping.Diagnostics{})
	require.Error(t, err)
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := openTestStore(t)
	id := NewSessionID()
	require.NoError(t, s.InsertSession(testSessionRecord(id)))

	grid, err := mapping.NewOccupancyGrid(mapping.Point{X: -4, Y: -2}, 10, 12, 0.2)
	require.NoError(t, err)
	model, err := mapping.NewSensorModel(0.3, 0.9)
	require.NoError(t, err)
	grid.Update([]mapping.GridIndex{{Row: 0, Col: 0}, {Row: 3, Col: 7}}, model, true)

	snapID, err := s.SaveSnapshot(id, "final", grid.Snapshot())
	require.NoError(t, err)

	loaded, err := s.LoadSnapshot(snapID)
	require.NoError(t, err)
	restored, err := mapping.RestoreGrid(loaded)
	require.NoError(t, err)

	for row := 0; row < grid.Rows; row++ {
		for col := 0; col < grid.Cols; col++ {
			want, err := grid.LogOdds(row, col)
			require.NoError(t, err)
			got, err := restored.LogOdds(row, col)
			require.NoError(t, err)
			require.Equal(t, want, got, "cell (%d,%d)", row, col)
		}
	}
}

func TestLatestSnapshot_PicksNewest(t *testing.T) {
	s := openTestStore(t)
	id := NewSessionID()
	require.NoError(t, s.InsertSession(testSessionRecord(id)))

	grid, err := mapping.NewOccupancyGrid(mapping.Point{}, 4, 4, 1)
	require.NoError(t, err)
	model, err := mapping.NewSensorModel(0.3, 0.9)
	require.NoError(t, err)

	_, err = s.SaveSnapshot(id, "periodic", grid.Snapshot())
	require.NoError(t, err)

	grid.Update([]mapping.GridIndex{{Row: 2, Col: 2}}, model, true)
	_, err = s.SaveSnapshot(id, "final", grid.Snapshot())
	require.NoError(t, err)

	latest, err := s.LatestSnapshot(id)
	require.NoError(t, err)
	restored, err := mapping.RestoreGrid(latest)
	require.NoError(t, err)
	l, err := restored.LogOdds(2, 2)
	require.NoError(t, err)
	require.Greater(t, l, 0.0)
}

func TestLatestSnapshot_EmptySessionIsError(t *testing.T) {
	s := openTestStore(t)
	id := NewSessionID()
	require.NoError(t, s.InsertSession(testSessionRecord(id)))
	_, err := s.LatestSnapshot(id)
	require.Error(t, err)
}

func TestListSessions_NewestFirst(t *testing.T) {
	s := openTestStore(t)

	a := testSessionRecord(NewSessionID())
	a.StartedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	b := testSessionRecord(NewSessionID())
	b.StartedAt = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.InsertSession(a))
	require.NoError(t, s.InsertSession(b))

	got, err := s.ListSessions()
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, b.SessionID, got[0].SessionID)
	require.Equal(t, a.SessionID, got[1].SessionID)
}
