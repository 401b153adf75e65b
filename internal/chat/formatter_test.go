package chat

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/wirechat-peer/internal/store"
	"github.com/vovakirdan/wirechat-peer/internal/store/sqlite"
)

func TestRender(t *testing.T) {
	morning := time.Date(2026, 3, 14, 9, 5, 0, 0, time.UTC)

	tests := []struct {
		name  string
		entry store.Entry
		want  string
	}{
		{
			name:  "presence",
			entry: store.Entry{Kind: store.EntryPresence, Peer: "bob", Text: "entered", CreatedAt: fixedNow},
			want:  "3:04 pm bob entered",
		},
		{
			name:  "shout",
			entry: store.Entry{Kind: store.EntryMessage, Channel: "dev", Peer: "bob", Text: "hi", CreatedAt: fixedNow},
			want:  "3:04 pm #dev          @bob                  hi",
		},
		{
			name:  "whisper in the morning",
			entry: store.Entry{Kind: store.EntryMessage, Channel: store.ChannelPrivate, Peer: "alice", Text: "psst", CreatedAt: morning},
			want:  "9:05 am #private      @alice                psst",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(&tt.entry))
		})
	}
}

func TestFormatterRecordsTranscript(t *testing.T) {
	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	out := &syncBuffer{}
	f := NewFormatter(out, discardLogger(), WithClock(fixedClock), WithRecorder(st))
	ctx := context.Background()

	f.Presence(ctx, "bob", "entered")
	f.Message(ctx, "dev", "bob", "hi", false)
	f.Notice("not recorded")
	f.Info("not recorded either")

	entries, err := st.ListEntries(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, store.EntryPresence, entries[0].Kind)
	assert.Equal(t, "hi", entries[1].Text)

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	assert.Equal(t, []string{
		"3:04 pm bob entered",
		"3:04 pm #dev          @bob                  hi",
		"not recorded",
		"not recorded either",
	}, lines)

	replayed := &syncBuffer{}
	NewFormatter(replayed, discardLogger()).Replay(entries)
	assert.Equal(t, "3:04 pm bob entered\n3:04 pm #dev          @bob                  hi\n", replayed.String())
}

func TestFormatterTable(t *testing.T) {
	f, out := newTestFormatter(t)
	f.Table([]string{"Name", "Peer"}, [][]string{{"bob", "p1"}})

	assert.Contains(t, out.String(), "NAME")
	assert.Contains(t, out.String(), "bob")
	assert.Contains(t, out.String(), "p1")
}
