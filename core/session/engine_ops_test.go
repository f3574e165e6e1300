package session_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionkit/core/session"
	"github.com/dmitrymomot/sessionkit/store/memory"
)

func TestEngineNotStarted(t *testing.T) {
	t.Parallel()

	mgr := newManager(t, memory.New())
	eng := mgr.NewEngine()
	ctx := context.Background()

	_, err := eng.State()
	assert.ErrorIs(t, err, session.ErrNotStarted)
	_, err = eng.Get("k", nil)
	assert.ErrorIs(t, err, session.ErrNotStarted)
	assert.ErrorIs(t, eng.Set("k", "v"), session.ErrNotStarted)
	assert.ErrorIs(t, eng.Remove("k"), session.ErrNotStarted)
	assert.ErrorIs(t, eng.Clear(), session.ErrNotStarted)
	_, err = eng.RegenerateID(ctx)
	assert.ErrorIs(t, err, session.ErrNotStarted)
	assert.ErrorIs(t, eng.Destroy(ctx), session.ErrNotStarted)
	assert.ErrorIs(t, eng.Commit(ctx, httptest.NewRecorder()), session.ErrNotStarted)
	_, err = eng.GenerateCSRFToken()
	assert.ErrorIs(t, err, session.ErrNotStarted)
	assert.False(t, eng.IsCSRFTokenValid(strings.Repeat("a", 64)))
}

func TestEngineDataOps(t *testing.T) {
	t.Parallel()

	t.Run("get returns fallback for absent keys", func(t *testing.T) {
		t.Parallel()

		mgr := newManager(t, memory.New())
		eng := mgr.NewEngine()
		_, err := eng.Start(newRequest(t, mgr, ""))
		require.NoError(t, err)

		v, err := eng.Get("missing", "fallback")
		require.NoError(t, err)
		assert.Equal(t, "fallback", v)
	})

	t.Run("set then get", func(t *testing.T) {
		t.Parallel()

		mgr := newManager(t, memory.New())
		eng := mgr.NewEngine()
		_, err := eng.Start(newRequest(t, mgr, ""))
		require.NoError(t, err)

		require.NoError(t, eng.Set("user", "alice"))
		v, err := eng.Get("user", nil)
		require.NoError(t, err)
		assert.Equal(t, "alice", v)

		state, err := eng.State()
		require.NoError(t, err)
		assert.True(t, state.IsDirty())
	})

	t.Run("reserved namespace rejected", func(t *testing.T) {
		t.Parallel()

		mgr := newManager(t, memory.New())
		eng := mgr.NewEngine()
		_, err := eng.Start(newRequest(t, mgr, ""))
		require.NoError(t, err)

		assert.ErrorIs(t, eng.Set("_created_at", "x"), session.ErrReservedKey)
		assert.ErrorIs(t, eng.Set("_anything", "x"), session.ErrReservedKey)
		assert.ErrorIs(t, eng.Remove("_csrf_token"), session.ErrReservedKey)
	})

	t.Run("state snapshots are immutable", func(t *testing.T) {
		t.Parallel()

		mgr := newManager(t, memory.New())
		eng := mgr.NewEngine()
		before, err := eng.Start(newRequest(t, mgr, ""))
		require.NoError(t, err)

		require.NoError(t, eng.Set("user", "alice"))

		_, ok := before.Value("user")
		assert.False(t, ok, "earlier snapshot must not see later mutations")
		after, err := eng.State()
		require.NoError(t, err)
		_, ok = after.Value("user")
		assert.True(t, ok)
	})

	t.Run("clear drops all user data", func(t *testing.T) {
		t.Parallel()

		mgr := newManager(t, memory.New())
		eng := mgr.NewEngine()
		_, err := eng.Start(newRequest(t, mgr, ""))
		require.NoError(t, err)

		require.NoError(t, eng.Set("a", "1"))
		require.NoError(t, eng.Set("b", "2"))
		require.NoError(t, eng.Clear())

		state, err := eng.State()
		require.NoError(t, err)
		assert.Zero(t, state.Len())
		assert.True(t, state.IsDirty())
	})
}

func TestCommit(t *testing.T) {
	t.Parallel()

	t.Run("read-only request writes nothing", func(t *testing.T) {
		t.Parallel()

		store := &countingStore{inner: memory.New()}
		mgr := newManager(t, store)
		eng := mgr.NewEngine()
		_, err := eng.Start(newRequest(t, mgr, ""))
		require.NoError(t, err)

		_, err = eng.Get("anything", nil)
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		require.NoError(t, eng.Commit(context.Background(), rec))
		assert.Zero(t, store.writes)
		assert.NotEmpty(t, sessionCookie(t, mgr, rec), "cookie still emitted")
	})

	t.Run("dirty state writes once and becomes clean", func(t *testing.T) {
		t.Parallel()

		store := &countingStore{inner: memory.New()}
		mgr := newManager(t, store)
		eng := mgr.NewEngine()
		_, err := eng.Start(newRequest(t, mgr, ""))
		require.NoError(t, err)

		require.NoError(t, eng.Set("user", "alice"))
		require.NoError(t, eng.Commit(context.Background(), httptest.NewRecorder()))
		assert.Equal(t, 1, store.writes)

		state, err := eng.State()
		require.NoError(t, err)
		assert.False(t, state.IsDirty())

		// Nothing mutated since: the second commit is write-free.
		require.NoError(t, eng.Commit(context.Background(), httptest.NewRecorder()))
		assert.Equal(t, 1, store.writes)
	})

	t.Run("remove of absent key stays clean", func(t *testing.T) {
		t.Parallel()

		store := &countingStore{inner: memory.New()}
		mgr := newManager(t, store)
		eng := mgr.NewEngine()
		_, err := eng.Start(newRequest(t, mgr, ""))
		require.NoError(t, err)

		require.NoError(t, eng.Remove("never-set"))
		require.NoError(t, eng.Commit(context.Background(), httptest.NewRecorder()))
		assert.Zero(t, store.writes)
	})

	t.Run("replaces prior Set-Cookie of the same name", func(t *testing.T) {
		t.Parallel()

		mgr := newManager(t, memory.New())
		eng := mgr.NewEngine()
		state, err := eng.Start(newRequest(t, mgr, ""))
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		rec.Header().Add("Set-Cookie", mgr.CookieName()+"=stale; Path=/")
		rec.Header().Add("Set-Cookie", "other=1; Path=/")

		require.NoError(t, eng.Commit(context.Background(), rec))

		headers := rec.Header()["Set-Cookie"]
		assert.Len(t, headers, 2)
		assert.Equal(t, state.ID().String(), sessionCookie(t, mgr, rec))
	})
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	roundTrip := func(t *testing.T, opts ...session.Option) {
		t.Helper()

		store := memory.New()
		mgr := newManager(t, store, opts...)

		eng := mgr.NewEngine()
		_, err := eng.Start(newRequest(t, mgr, ""))
		require.NoError(t, err)

		require.NoError(t, eng.Set("user", "alice"))
		require.NoError(t, eng.Set("count", float64(42)))
		require.NoError(t, eng.Set("flags", map[string]any{"beta": true}))

		rec := httptest.NewRecorder()
		require.NoError(t, eng.Commit(context.Background(), rec))
		cookieValue := sessionCookie(t, mgr, rec)

		next := mgr.NewEngine()
		state, err := next.Start(newRequest(t, mgr, cookieValue))
		require.NoError(t, err)
		assert.Equal(t, cookieValue, state.ID().String())

		user, err := next.Get("user", nil)
		require.NoError(t, err)
		assert.Equal(t, "alice", user)
		count, err := next.Get("count", nil)
		require.NoError(t, err)
		assert.Equal(t, float64(42), count)
		flags, err := next.Get("flags", nil)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"beta": true}, flags)

		// Reserved metadata never leaks into user-visible data.
		for _, key := range state.Keys() {
			assert.False(t, strings.HasPrefix(key, "_"), "leaked key %q", key)
		}
	}

	t.Run("plaintext payloads", func(t *testing.T) {
		t.Parallel()
		roundTrip(t)
	})

	t.Run("enveloped payloads", func(t *testing.T) {
		t.Parallel()
		roundTrip(t, session.WithEncryptionKey(testEncryptionKey))
	})
}

func TestEnvelopeAtRest(t *testing.T) {
	t.Parallel()

	t.Run("store never sees plaintext", func(t *testing.T) {
		t.Parallel()

		store := memory.New()
		mgr := newManager(t, store, session.WithEncryptionKey(testEncryptionKey))

		eng := mgr.NewEngine()
		state, err := eng.Start(newRequest(t, mgr, ""))
		require.NoError(t, err)
		require.NoError(t, eng.Set("user", "alice"))
		require.NoError(t, eng.Commit(context.Background(), httptest.NewRecorder()))

		raw, err := store.Read(context.Background(), state.ID())
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "alice")
		assert.NotContains(t, string(raw), "_created_at")
	})

	t.Run("tampered payload falls back to fresh", func(t *testing.T) {
		t.Parallel()

		store := memory.New()
		mgr := newManager(t, store, session.WithEncryptionKey(testEncryptionKey))

		eng := mgr.NewEngine()
		state, err := eng.Start(newRequest(t, mgr, ""))
		require.NoError(t, err)
		require.NoError(t, eng.Set("user", "alice"))
		require.NoError(t, eng.Commit(context.Background(), httptest.NewRecorder()))

		raw, err := store.Read(context.Background(), state.ID())
		require.NoError(t, err)
		raw[len(raw)/2] ^= 0x01
		require.NoError(t, store.Write(context.Background(), state.ID(), raw, time.Hour))

		next := mgr.NewEngine()
		resumed, err := next.Start(newRequest(t, mgr, state.ID().String()))
		require.NoError(t, err)
		assert.False(t, resumed.ID().Equal(state.ID()))

		_, err = store.Read(context.Background(), state.ID())
		assert.ErrorIs(t, err, session.ErrNotFound)
	})
}
