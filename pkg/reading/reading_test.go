package reading

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/tmon/pkg/proto"
)

func TestFromTemps(t *testing.T) {
	ts := time.Unix(1700000000, 0)
	r := FromTemps(ts, 3, proto.Temps{235, -198, proto.Invalid, 0})
	require.Equal(t, Channel{Tenths: 235, Valid: true}, r.Channels[0])
	require.Equal(t, Channel{Tenths: -198, Valid: true}, r.Channels[1])
	require.Equal(t, Channel{}, r.Channels[2])
	require.True(t, r.Channels[3].Valid)
	require.Equal(t, "addr 3: temps=[23.5, -19.8, --.-, 0.0]", r.String())
	require.Equal(t, proto.Temps{235, -198, proto.Invalid, 0}, r.Temps())
}

func TestMultiSink(t *testing.T) {
	var mu sync.Mutex
	var got []byte
	record := SinkFunc(func(_ context.Context, r Reading) error {
		mu.Lock()
		got = append(got, r.Address)
		mu.Unlock()
		return nil
	})
	failing := SinkFunc(func(context.Context, Reading) error { return errors.New("disk full") })

	m := MultiSink{record, failing, record}
	err := m.Insert(context.Background(), Reading{Address: 7})
	require.Error(t, err)
	require.Contains(t, err.Error(), "disk full")
	require.Equal(t, []byte{7, 7}, got)

	require.NoError(t, MultiSink{record, Discard}.Insert(context.Background(), Reading{Address: 8}))
}
