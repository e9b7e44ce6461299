package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/tmon/pkg/proto"
	"github.com/robotalks/tmon/pkg/reading"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "tmon.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInsertAndRecent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	t0 := time.Unix(1700000000, 0)
	first := reading.FromTemps(t0, 3, proto.Temps{235, -198, proto.Invalid, 0})
	second := reading.FromTemps(t0.Add(time.Minute), 4, proto.AllInvalid())
	require.NoError(t, s.Insert(ctx, first))
	require.NoError(t, s.Insert(ctx, second))

	got, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, second.Address, got[0].Address)
	require.True(t, second.Time.Equal(got[0].Time))
	require.Equal(t, second.Channels, got[0].Channels)
	require.Equal(t, first.Channels, got[1].Channels)
	require.Equal(t, proto.Temps{235, -198, proto.Invalid, 0}, got[1].Temps())

	got, err = s.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)

	got, err = s.RecentFrom(ctx, 3, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, byte(3), got[0].Address)
}

func TestInvalidChannelsAreNull(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Insert(ctx, reading.FromTemps(time.Unix(1, 0), 7, proto.Temps{1, proto.Invalid, 3, proto.Invalid})))
	var nulls int
	require.NoError(t, s.db.QueryRow(
		"SELECT (temp_0 IS NULL) + (temp_1 IS NULL) + (temp_2 IS NULL) + (temp_3 IS NULL) FROM readings").Scan(&nulls))
	require.Equal(t, 2, nulls)
}

func TestConcurrentInserts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	var wg sync.WaitGroup
	errs := make(chan error, 40)
	for n := 0; n < 40; n++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			r := reading.FromTemps(time.Unix(int64(n), 0), byte(n%4+1), proto.Temps{int16(n), 0, 0, 0})
			errs <- s.Insert(ctx, r)
		}(n)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	got, err := s.Recent(ctx, 100)
	require.NoError(t, err)
	require.Len(t, got, 40)
}

func TestBuildDSN(t *testing.T) {
	dsn, err := buildDSN("file::memory:?cache=shared")
	require.NoError(t, err)
	require.Equal(t, "file::memory:?cache=shared&_busy_timeout=5000&_journal_mode=WAL", dsn)

	path := filepath.Join(t.TempDir(), "x.db")
	dsn, err = buildDSN(path)
	require.NoError(t, err)
	require.Equal(t, fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path), dsn)
}
