package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/stock-ledger/internal/domain/ledger"
	"github.com/example/stock-ledger/internal/infrastructure/store"
)

func newTestSession() *Session {
	return NewRegistry().Open("user", store.RoleUser)
}

func TestSession_AddLine_In(t *testing.T) {
	s := newTestSession()

	line, err := s.AddLine(store.RequestIn, "Bolt", 5, "ProjA")

	require.NoError(t, err)
	assert.Equal(t, ledger.RequestLine{Item: "Bolt", Qty: 5, Event: "-"}, line)
	assert.Equal(t, []ledger.RequestLine{line}, s.Lines(store.RequestIn))
	assert.Empty(t, s.Lines(store.RequestOut))
}

func TestSession_AddLine_Out(t *testing.T) {
	s := newTestSession()

	line, err := s.AddLine(store.RequestOut, "Bolt", 30, " ProjA ")

	require.NoError(t, err)
	assert.Equal(t, "ProjA", line.Event)
	assert.Len(t, s.Lines(store.RequestOut), 1)
}

func TestSession_AddLine_Validation(t *testing.T) {
	tests := []struct {
		name    string
		reqType store.RequestType
		item    string
		qty     int
		event   string
		wantErr error
	}{
		{"bad type", store.RequestType("X"), "Bolt", 1, "", ledger.ErrInvalidRequestType},
		{"empty item", store.RequestIn, " ", 1, "", ledger.ErrInvalidName},
		{"zero qty", store.RequestIn, "Bolt", 0, "", ledger.ErrInvalidQuantity},
		{"out without event", store.RequestOut, "Bolt", 1, "", ErrEventRequired},
		{"out with dash event", store.RequestOut, "Bolt", 1, "-", ErrEventRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession()

			_, err := s.AddLine(tt.reqType, tt.item, tt.qty, tt.event)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, s.Lines(store.RequestIn))
			assert.Empty(t, s.Lines(store.RequestOut))
		})
	}
}

func TestSession_RemoveLine(t *testing.T) {
	s := newTestSession()
	for _, item := range []string{"A", "B", "C"} {
		_, err := s.AddLine(store.RequestIn, item, 1, "")
		require.NoError(t, err)
	}

	require.NoError(t, s.RemoveLine(store.RequestIn, 2))

	lines := s.Lines(store.RequestIn)
	require.Len(t, lines, 2)
	assert.Equal(t, "A", lines[0].Item)
	assert.Equal(t, "C", lines[1].Item)

	assert.ErrorIs(t, s.RemoveLine(store.RequestIn, 0), ErrLineNotFound)
	assert.ErrorIs(t, s.RemoveLine(store.RequestIn, 3), ErrLineNotFound)
	assert.ErrorIs(t, s.RemoveLine(store.RequestOut, 1), ErrLineNotFound)
}

func TestSession_LinesReturnsCopy(t *testing.T) {
	s := newTestSession()
	_, err := s.AddLine(store.RequestIn, "Bolt", 1, "")
	require.NoError(t, err)

	lines := s.Lines(store.RequestIn)
	lines[0].Qty = 99

	assert.Equal(t, 1, s.Lines(store.RequestIn)[0].Qty)
}

func TestSession_Clear(t *testing.T) {
	s := newTestSession()
	_, err := s.AddLine(store.RequestIn, "Bolt", 1, "")
	require.NoError(t, err)
	_, err = s.AddLine(store.RequestOut, "Bolt", 1, "E")
	require.NoError(t, err)

	s.Clear(store.RequestIn)

	assert.Empty(t, s.Lines(store.RequestIn))
	assert.Len(t, s.Lines(store.RequestOut), 1)
}

func TestRegistry_OpenGetDrop(t *testing.T) {
	registry := NewRegistry()

	first := registry.Open("user", store.RoleUser)
	second := registry.Open("user", store.RoleUser)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 2, registry.Len())

	got, err := registry.Get(first.ID)
	require.NoError(t, err)
	assert.Same(t, first, got)

	registry.Drop(first.ID)
	_, err = registry.Get(first.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = registry.Get(second.ID)
	assert.NoError(t, err)

	registry.Drop("unknown")
	assert.Equal(t, 1, registry.Len())
}

func TestRegistry_ExpiredSessionEvictedOnGet(t *testing.T) {
	now := time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC)
	registry := NewRegistry()
	registry.now = func() time.Time { return now }

	s := registry.Open("user", store.RoleUser)
	s.ExpireAt(now.Add(time.Hour))

	_, err := registry.Get(s.ID)
	require.NoError(t, err)

	now = now.Add(time.Hour)
	_, err = registry.Get(s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Equal(t, 0, registry.Len())
}

func TestRegistry_OpenSweepsExpiredSessions(t *testing.T) {
	now := time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC)
	registry := NewRegistry()
	registry.now = func() time.Time { return now }

	stale := registry.Open("user", store.RoleUser)
	stale.ExpireAt(now.Add(time.Minute))
	keep := registry.Open("admin", store.RoleAdmin)

	now = now.Add(2 * time.Minute)
	registry.Open("user", store.RoleUser)

	assert.Equal(t, 2, registry.Len())
	_, err := registry.Get(keep.ID)
	assert.NoError(t, err)
}
