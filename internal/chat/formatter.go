package chat

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-peer/internal/store"
)

// TimeLayout renders transcript timestamps, e.g. "3:04 pm".
const TimeLayout = "3:04 pm"

// Formatter renders the transcript. Every line goes to out; message and presence lines
// are also recorded to the transcript store when one is configured.
type Formatter struct {
	out    io.Writer
	now    func() time.Time
	rec    store.TranscriptStore
	color  bool
	log    *zerolog.Logger
	notice color.Style
}

// FormatterOption configures a Formatter.
type FormatterOption func(*Formatter)

// WithClock overrides the time source.
func WithClock(now func() time.Time) FormatterOption {
	return func(f *Formatter) { f.now = now }
}

// WithRecorder records transcript entries to rec.
func WithRecorder(rec store.TranscriptStore) FormatterOption {
	return func(f *Formatter) { f.rec = rec }
}

// WithColor highlights notices.
func WithColor(enabled bool) FormatterOption {
	return func(f *Formatter) { f.color = enabled }
}

// NewFormatter builds a formatter writing to out.
func NewFormatter(out io.Writer, logger *zerolog.Logger, opts ...FormatterOption) *Formatter {
	f := &Formatter{
		out:    out,
		now:    time.Now,
		log:    logger,
		notice: color.New(color.FgYellow),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Presence prints "<time> <peer> <action>", e.g. "3:04 pm bob joined dev".
func (f *Formatter) Presence(ctx context.Context, peer, action string) {
	f.emit(ctx, &store.Entry{
		Kind:      store.EntryPresence,
		Peer:      peer,
		Text:      action,
		CreatedAt: f.now(),
	})
}

// Message prints a chat line. channel is a group name or store.ChannelPrivate.
func (f *Formatter) Message(ctx context.Context, channel, peer, text string, outgoing bool) {
	f.emit(ctx, &store.Entry{
		Kind:      store.EntryMessage,
		Channel:   channel,
		Peer:      peer,
		Text:      text,
		Outgoing:  outgoing,
		CreatedAt: f.now(),
	})
}

// Info prints an untimestamped line addressed to the local user. It is not recorded.
func (f *Formatter) Info(format string, args ...any) {
	f.println(fmt.Sprintf(format, args...))
}

// Notice prints a highlighted untimestamped line addressed to the local user. It is not recorded.
func (f *Formatter) Notice(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	if f.color {
		line = f.notice.Render(line)
	}
	f.println(line)
}

// Replay prints stored entries without recording them again.
func (f *Formatter) Replay(entries []*store.Entry) {
	for _, e := range entries {
		f.println(Render(e))
	}
}

// Table prints rows under header as an aligned borderless table.
func (f *Formatter) Table(header []string, rows [][]string) {
	table := tablewriter.NewWriter(f.out)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.AppendBulk(rows)
	table.Render()
}

// Render formats one transcript entry as a single line without a trailing newline.
func Render(e *store.Entry) string {
	ts := e.CreatedAt.Format(TimeLayout)
	if e.Kind == store.EntryPresence {
		return fmt.Sprintf("%s %s %s", ts, e.Peer, e.Text)
	}
	return fmt.Sprintf("%s #%-12s @%-20s %s", ts, e.Channel, e.Peer, e.Text)
}

func (f *Formatter) emit(ctx context.Context, e *store.Entry) {
	f.println(Render(e))
	if f.rec == nil {
		return
	}
	if err := f.rec.SaveEntry(ctx, e); err != nil {
		f.log.Warn().Err(err).Str("kind", string(e.Kind)).Msg("failed to record transcript entry")
	}
}

func (f *Formatter) println(line string) {
	_, _ = fmt.Fprintln(f.out, line)
}
