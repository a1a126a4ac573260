package history

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecordAndRecent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(dbPath)
	require.NoError(t, err)
	defer s.Close()

	id, err := s.Record(Run{
		InputCount:      4,
		Complexity:      0,
		ThreadCount:     2,
		JoinType:        1,
		TotalIterations: 100,
		TotalHardWaits:  1,
		TotalSoftWaits:  3,
		ElapsedTicks:    1000,
		ElapsedMS:       5,
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	runs, err := s.Recent(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, id, runs[0].ID)
	require.Equal(t, 4, runs[0].InputCount)
}
