package integration

import (
	"context"
	"encoding/xml"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/flexigpt/turnblock-go"
	"github.com/flexigpt/turnblock-go/spec"
)

// hostLoop stands in for a GUI main loop: a single goroutine draining a
// queue of posted functions.
type hostLoop struct {
	mu     sync.Mutex
	closed bool
	queue  chan func()
	done   chan struct{}
}

func newHostLoop(t *testing.T) *hostLoop {
	t.Helper()
	h := &hostLoop{queue: make(chan func(), 1024), done: make(chan struct{})}
	go func() {
		defer close(h.done)
		for fn := range h.queue {
			fn()
		}
	}()
	t.Cleanup(h.close)
	return h
}

func (h *hostLoop) Post(fn func()) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.queue <- fn
	return true
}

// sync waits until everything posted so far has run.
func (h *hostLoop) sync(t *testing.T) {
	t.Helper()
	ran := make(chan struct{})
	if !h.Post(func() { close(ran) }) {
		t.Fatalf("host loop closed")
	}
	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatalf("host loop stalled")
	}
}

func (h *hostLoop) close() {
	h.mu.Lock()
	if !h.closed {
		h.closed = true
		close(h.queue)
	}
	h.mu.Unlock()
	<-h.done
}

type shownTurn struct {
	view   spec.TurnView
	submit spec.SubmitFunc
}

// widgetHost is a presenter that keeps what a panel would display.
type widgetHost struct {
	mu       sync.Mutex
	title    map[spec.EngineKind]string
	header   map[spec.EngineKind]string
	feedback []spec.Feedback
	ends     []spec.EndScreen

	turns chan shownTurn
}

func newWidgetHost() *widgetHost {
	return &widgetHost{
		title:  map[spec.EngineKind]string{},
		header: map[spec.EngineKind]string{},
		turns:  make(chan shownTurn, 64),
	}
}

func (w *widgetHost) OpenPanel(p spec.Panel) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.title[p.Kind] = p.Title
}

func (w *widgetHost) RenderState(v spec.StateView) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.header[v.Kind] = v.Summary
}

func (w *widgetHost) PresentTurn(t spec.TurnView, submit spec.SubmitFunc) {
	w.turns <- shownTurn{view: t, submit: submit}
}

func (w *widgetHost) ShowFeedback(f spec.Feedback) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.feedback = append(w.feedback, f)
}

func (w *widgetHost) ShowEnd(e spec.EndScreen) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ends = append(w.ends, e)
}

func (w *widgetHost) Title(k spec.EngineKind) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.title[k]
}

func (w *widgetHost) Header(k spec.EngineKind) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.header[k]
}

func (w *widgetHost) Feedback() []spec.Feedback {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]spec.Feedback(nil), w.feedback...)
}

func (w *widgetHost) Ends() []spec.EndScreen {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]spec.EndScreen(nil), w.ends...)
}

func (w *widgetHost) next(t *testing.T) shownTurn {
	t.Helper()
	select {
	case st := <-w.turns:
		return st
	case <-time.After(2 * time.Second):
		t.Fatalf("no turn presented")
		return shownTurn{}
	}
}

type blockResult struct {
	out string
	err error
}

func handleAsync(ctx context.Context, rt *turnblock.Runtime, sid spec.SessionID, lang spec.Lang, text string) <-chan blockResult {
	ch := make(chan blockResult, 1)
	go func() {
		out, err := rt.HandleBlock(ctx, sid, lang, text)
		ch <- blockResult{out, err}
	}()
	return ch
}

func waitResult(t *testing.T, ch <-chan blockResult) blockResult {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(2 * time.Second):
		t.Fatalf("caller was never released")
		return blockResult{}
	}
}

func mustNewRuntime(t *testing.T, opts ...turnblock.Option) *turnblock.Runtime {
	t.Helper()
	rt, err := turnblock.New(opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if rt == nil {
		t.Fatalf("New: got nil runtime")
	}
	t.Cleanup(rt.Close)
	return rt
}

// newHostedRuntime returns a runtime whose presenter calls run on a host
// loop, plus one session drawn by a widgetHost.
func newHostedRuntime(t *testing.T) (*turnblock.Runtime, *hostLoop, spec.SessionID, *widgetHost) {
	t.Helper()
	host := newHostLoop(t)
	rt := mustNewRuntime(t, turnblock.WithDispatcher(host))
	w := newWidgetHost()
	sid, err := rt.NewSession(t.Context(), w)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if sid == "" {
		t.Fatalf("NewSession: got empty session id")
	}
	return rt, host, sid, w
}

func mustHandle(t *testing.T, rt *turnblock.Runtime, sid spec.SessionID, lang spec.Lang, text string) string {
	t.Helper()
	out, err := rt.HandleBlock(t.Context(), sid, lang, text)
	if err != nil {
		t.Fatalf("HandleBlock(%s): %v", lang, err)
	}
	return out
}

type blockFormatsDoc struct {
	XMLName xml.Name `xml:"blockFormats"`
	Formats []struct {
		Lang  string `xml:"lang,attr"`
		Title string `xml:"title,attr"`
		Body  string `xml:",chardata"`
	} `xml:"format"`
}

func xmlRootName(t *testing.T, s string) string {
	t.Helper()
	dec := xml.NewDecoder(strings.NewReader(s))
	for {
		tok, err := dec.Token()
		if err != nil {
			t.Fatalf("xmlRootName token: %v\nxml=%s", err, s)
		}
		if se, ok := tok.(xml.StartElement); ok {
			return se.Name.Local
		}
	}
}

func mustUnmarshalFormats(t *testing.T, s string) blockFormatsDoc {
	t.Helper()
	var doc blockFormatsDoc
	if err := xml.Unmarshal([]byte(s), &doc); err != nil {
		t.Fatalf("unmarshal blockFormats: %v\nxml=%s", err, s)
	}
	return doc
}
