package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/hush/models"
)

func mustParse(t *testing.T, raw string) *Inbound {
	t.Helper()
	in, err := ParseInbound([]byte(raw))
	require.NoError(t, err)
	return in
}

func TestHookRegistryOrdersByPriorityThenRegistration(t *testing.T) {
	r := NewHookRegistry()
	var order []string

	record := func(name string) HookFunc {
		return func(*models.ChatUser, *Inbound) HookResult {
			order = append(order, name)
			return Continue(nil)
		}
	}

	require.NoError(t, r.Register(HookIn, "chat", record("late"), 20))
	require.NoError(t, r.Register(HookIn, "chat", record("first-10"), 10))
	require.NoError(t, r.Register(HookIn, "chat", record("second-10"), 10))
	require.NoError(t, r.Register(HookIn, "chat", record("early"), 0))

	in := mustParse(t, `{"cmd":"chat","text":"x"}`)
	result := r.Run(HookIn, "chat", &models.ChatUser{}, in)

	assert.True(t, result.Continued())
	assert.Same(t, in, result.Payload)
	assert.Equal(t, []string{"early", "first-10", "second-10", "late"}, order)
	assert.Equal(t, 4, r.Count(HookIn, "chat"))
}

func TestHookRegistryStopsOnSuppressAndReject(t *testing.T) {
	r := NewHookRegistry()
	called := false

	require.NoError(t, r.Register(HookIn, "chat", func(*models.ChatUser, *Inbound) HookResult {
		return Suppress()
	}, 10))
	require.NoError(t, r.Register(HookIn, "chat", func(*models.ChatUser, *Inbound) HookResult {
		called = true
		return Continue(nil)
	}, 20))
	require.NoError(t, r.Register(HookIn, "invite", func(*models.ChatUser, *Inbound) HookResult {
		return Reject("bad")
	}, 10))

	result := r.Run(HookIn, "chat", &models.ChatUser{}, mustParse(t, `{"cmd":"chat"}`))
	assert.True(t, result.Suppressed())
	assert.False(t, called)

	result = r.Run(HookIn, "invite", &models.ChatUser{}, mustParse(t, `{"cmd":"invite"}`))
	assert.True(t, result.Rejected())
	assert.Equal(t, "bad", result.Reason)
	assert.Equal(t, "reject(bad)", result.String())
}

func TestHookRegistryPassesReplacedPayload(t *testing.T) {
	r := NewHookRegistry()
	replacement := mustParse(t, `{"cmd":"chat","text":"rewritten"}`)

	require.NoError(t, r.Register(HookIn, "chat", func(*models.ChatUser, *Inbound) HookResult {
		return Continue(replacement)
	}, 1))

	var seen string
	require.NoError(t, r.Register(HookIn, "chat", func(_ *models.ChatUser, in *Inbound) HookResult {
		seen, _ = in.String("text")
		return Continue(in)
	}, 2))

	result := r.Run(HookIn, "chat", &models.ChatUser{}, mustParse(t, `{"cmd":"chat","text":"orig"}`))
	assert.Equal(t, "rewritten", seen)
	assert.Same(t, replacement, result.Payload)
}

func TestHookRegistryRegisterValidation(t *testing.T) {
	r := NewHookRegistry()
	noop := func(*models.ChatUser, *Inbound) HookResult { return Continue(nil) }

	assert.ErrorIs(t, r.Register("out", "chat", noop, 10), ErrUnknownDirection)
	assert.ErrorIs(t, r.Register(HookIn, "", noop, 10), ErrInvalidHook)
	assert.ErrorIs(t, r.Register(HookIn, "chat", nil, 10), ErrInvalidHook)
}

func TestHookRegistryNoHooksContinues(t *testing.T) {
	r := NewHookRegistry()
	in := mustParse(t, `{"cmd":"whisper"}`)

	result := r.Run(HookIn, "whisper", &models.ChatUser{}, in)
	assert.True(t, result.Continued())
	assert.Same(t, in, result.Payload)
}
