package ws

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInbound(t *testing.T) {
	in, err := ParseInbound([]byte(`{"cmd":"chat","text":"hi"}`))
	require.NoError(t, err)
	assert.Equal(t, "chat", in.Cmd)

	text, ok := in.String("text")
	assert.True(t, ok)
	assert.Equal(t, "hi", text)
}

func TestParseInboundRejectsBadFrames(t *testing.T) {
	for _, raw := range []string{
		`not json`,
		`[1,2,3]`,
		`null`,
		`{}`,
		`{"cmd":5}`,
		`{"cmd":""}`,
	} {
		_, err := ParseInbound([]byte(raw))
		assert.Error(t, err, raw)
	}
}

func TestInboundTypedAccessors(t *testing.T) {
	in, err := ParseInbound([]byte(`{
		"cmd": "dumb",
		"nick": 5,
		"userid": 42,
		"float": 3.0,
		"half": 3.5,
		"big": 1e30,
		"allies": ["bob", 7, "carol", null],
		"notArray": "bob",
		"nothing": null
	}`))
	require.NoError(t, err)

	_, ok := in.String("nick")
	assert.False(t, ok, "number is not a string")

	id, ok := in.Int("userid")
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)

	id, ok = in.Int("float")
	assert.True(t, ok)
	assert.Equal(t, int64(3), id)

	_, ok = in.Int("half")
	assert.False(t, ok)

	_, ok = in.Int("big")
	assert.False(t, ok)

	_, ok = in.Int("nick")
	assert.True(t, ok, "nick is a numeric field in this frame")

	n, ok := in.Number("half")
	assert.True(t, ok)
	assert.Equal(t, 3.5, n)

	allies, ok := in.Strings("allies")
	assert.True(t, ok)
	assert.Equal(t, []string{"bob", "carol"}, allies)

	_, ok = in.Strings("notArray")
	assert.False(t, ok)

	_, ok = in.String("nothing")
	assert.False(t, ok)
	_, ok = in.String("missing")
	assert.False(t, ok)
}

func TestInboundEmptyArrayIsStillArray(t *testing.T) {
	in, err := ParseInbound([]byte(`{"cmd":"dumb","allies":[]}`))
	require.NoError(t, err)

	allies, ok := in.Strings("allies")
	assert.True(t, ok)
	assert.Empty(t, allies)
	assert.NotNil(t, allies)
}

func TestInboundIntRange(t *testing.T) {
	in, err := ParseInbound([]byte(`{"cmd":"dumb","max":9223372036854775807,"over":9223372036854775808,"overExp":9.223372036854775808e18,"min":-9223372036854775808,"exp":1e18}`))
	require.NoError(t, err)

	n, ok := in.Int("max")
	assert.True(t, ok)
	assert.Equal(t, int64(math.MaxInt64), n)

	n, ok = in.Int("min")
	assert.True(t, ok)
	assert.Equal(t, int64(math.MinInt64), n)

	n, ok = in.Int("exp")
	assert.True(t, ok)
	assert.Equal(t, int64(1e18), n)

	_, ok = in.Int("over")
	assert.False(t, ok, "2^63 does not fit in int64")

	_, ok = in.Int("overExp")
	assert.False(t, ok)
}
