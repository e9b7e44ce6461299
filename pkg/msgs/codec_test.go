package msgs

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/tmon/pkg/proto"
	"github.com/robotalks/tmon/pkg/reading"
)

func TestEncodeDecode(t *testing.T) {
	r := reading.FromTemps(time.Unix(1700000000, 0).UTC(), 3, proto.Temps{235, -198, proto.Invalid, 0})
	for _, enc := range []Encoding{JSON, Proto} {
		t.Run(string(enc), func(t *testing.T) {
			data, err := Encode(r, enc)
			require.NoError(t, err)
			got, err := Decode(data, enc)
			require.NoError(t, err)
			require.True(t, r.Time.Equal(got.Time))
			require.Equal(t, r.Address, got.Address)
			require.Equal(t, r.Channels, got.Channels)
		})
	}
}

func TestTelemetryJSON(t *testing.T) {
	r := reading.FromTemps(time.Unix(1700000000, 0), 3, proto.Temps{235, proto.Invalid, proto.Invalid, -5})
	data, err := Encode(r, JSON)
	require.NoError(t, err)
	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Equal(t, "2023-11-14T22:13:20Z", raw["ts"])
	require.Equal(t, 3.0, raw["addr"])
	require.Equal(t, []interface{}{23.5, nil, nil, -0.5}, raw["temps"])
}

func TestReadingMsgOmitsInvalidChannels(t *testing.T) {
	r := reading.FromTemps(time.Unix(10, 0), 9, proto.Temps{proto.Invalid, 0, proto.Invalid, proto.Invalid})
	m, err := NewReadingMsg(r)
	require.NoError(t, err)
	require.Nil(t, m.Temp0)
	require.NotNil(t, m.Temp1)
	require.Equal(t, int32(0), m.Temp1.Value)
	require.Nil(t, m.Temp2)
	require.Nil(t, m.Temp3)
}

func TestDecodeRejects(t *testing.T) {
	_, err := Decode([]byte(`{"ts":"2023-11-14T22:13:20Z","addr":0}`), JSON)
	require.Error(t, err)
	_, err = Decode([]byte(`{`), JSON)
	require.Error(t, err)
	_, err = Decode([]byte{0xff}, Proto)
	require.Error(t, err)
}

func TestParseEncoding(t *testing.T) {
	enc, err := ParseEncoding("")
	require.NoError(t, err)
	require.Equal(t, JSON, enc)
	enc, err = ParseEncoding("proto")
	require.NoError(t, err)
	require.Equal(t, Proto, enc)
	_, err = ParseEncoding("xml")
	require.Error(t, err)
}
