package manager

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"chatd/internal/engine"
	"chatd/pkg/types"
)

// fakeEngine is a configurable engine double. It records call counts so tests
// can assert the engine is never invoked when the model is not ready.
type fakeEngine struct {
	mu            sync.Mutex
	generateCalls int
	streamCalls   int
	lastPrompt    string
	lastParams    engine.Params
	closed        bool

	reply     string
	fragments []string
	err       error // returned after reply/fragments are exhausted

	delay     time.Duration
	active    atomic.Int32
	maxActive int32
}

func (f *fakeEngine) Generate(ctx context.Context, prompt string, p engine.Params) (string, error) {
	cur := f.active.Add(1)
	defer f.active.Add(-1)
	f.mu.Lock()
	if cur > f.maxActive {
		f.maxActive = cur
	}
	f.generateCalls++
	f.lastPrompt = prompt
	f.lastParams = p
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeEngine) GenerateStream(ctx context.Context, prompt string, p engine.Params, onToken func(string) error) error {
	f.mu.Lock()
	f.streamCalls++
	f.lastPrompt = prompt
	f.lastParams = p
	f.mu.Unlock()
	for _, tok := range f.fragments {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := onToken(tok); err != nil {
			return err
		}
	}
	return f.err
}

func (f *fakeEngine) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeEngine) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.generateCalls + f.streamCalls
}

// newReadyManager builds a Manager whose load immediately succeeds with eng.
func newReadyManager(t *testing.T, eng engine.Engine, cfg Config) *Manager {
	t.Helper()
	m := New(cfg, zerolog.Nop())
	m.newEngine = func(string, engine.Config) (engine.Engine, error) { return eng, nil }
	m.Load("fake.gguf")
	if m.Status() != StatusReady {
		t.Fatalf("expected ready after load, got %s", m.Status())
	}
	return m
}

func TestStatusStartsUnloaded(t *testing.T) {
	m := New(Config{}, zerolog.Nop())
	if m.Status() != StatusUnloaded {
		t.Fatalf("status=%s", m.Status())
	}
	if m.ModelLoaded() {
		t.Fatalf("model reported loaded before Load")
	}
}

func TestLoadSuccess(t *testing.T) {
	eng := &fakeEngine{}
	m := newReadyManager(t, eng, Config{})
	if !m.ModelLoaded() {
		t.Fatalf("expected ModelLoaded true")
	}
	if m.LastError() != "" {
		t.Fatalf("unexpected load error: %q", m.LastError())
	}
}

func TestLoadFailureDegrades(t *testing.T) {
	m := New(Config{}, zerolog.Nop())
	m.newEngine = func(string, engine.Config) (engine.Engine, error) {
		return nil, errors.New("bad checkpoint")
	}
	m.Load("fake.gguf")
	if m.Status() != StatusFailed {
		t.Fatalf("status=%s", m.Status())
	}
	if m.ModelLoaded() {
		t.Fatalf("ModelLoaded true after failed load")
	}
	if m.LastError() != "bad checkpoint" {
		t.Fatalf("last error=%q", m.LastError())
	}
}

func TestLoadOnlyOnce(t *testing.T) {
	var loads int
	m := New(Config{}, zerolog.Nop())
	m.newEngine = func(string, engine.Config) (engine.Engine, error) {
		loads++
		return &fakeEngine{}, nil
	}
	m.Load("a.gguf")
	m.Load("b.gguf")
	if loads != 1 {
		t.Fatalf("expected 1 load, got %d", loads)
	}
}

func TestLoadPassesFixedConfig(t *testing.T) {
	var got engine.Config
	m := New(Config{}, zerolog.Nop())
	m.newEngine = func(_ string, cfg engine.Config) (engine.Engine, error) {
		got = cfg
		return &fakeEngine{}, nil
	}
	m.Load("fake.gguf")
	if got.CtxSize != 2048 {
		t.Fatalf("ctx size=%d", got.CtxSize)
	}
	if got.GPULayers != -1 {
		t.Fatalf("gpu layers=%d", got.GPULayers)
	}
}

func TestChatNotReadyNeverCallsEngine(t *testing.T) {
	eng := &fakeEngine{reply: "hi"}
	m := New(Config{}, zerolog.Nop())
	m.eng = eng // would be usable, but status is not Ready

	_, err := m.Chat(context.Background(), types.ChatRequest{Message: "Hi"})
	if !IsModelNotLoaded(err) {
		t.Fatalf("expected model-not-loaded, got %v", err)
	}
	err = m.ChatStream(context.Background(), types.ChatRequest{Message: "Hi"}, func(string) error { return nil })
	if !IsModelNotLoaded(err) {
		t.Fatalf("expected model-not-loaded, got %v", err)
	}
	if eng.calls() != 0 {
		t.Fatalf("engine invoked %d times while not ready", eng.calls())
	}
}

func TestChatTrimsReply(t *testing.T) {
	eng := &fakeEngine{reply: "  there \n"}
	m := newReadyManager(t, eng, Config{})
	reply, err := m.Chat(context.Background(), types.ChatRequest{Message: "Hi"})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if reply != "there" {
		t.Fatalf("reply=%q", reply)
	}
}

func TestChatUsesPromptTemplateAndDefaults(t *testing.T) {
	eng := &fakeEngine{reply: "ok"}
	m := newReadyManager(t, eng, Config{})
	if _, err := m.Chat(context.Background(), types.ChatRequest{Message: "Hi"}); err != nil {
		t.Fatalf("chat: %v", err)
	}
	if eng.lastPrompt != "User: Hi\nAssistant: " {
		t.Fatalf("prompt=%q", eng.lastPrompt)
	}
	if eng.lastParams.MaxTokens != DefaultMaxTokens {
		t.Fatalf("max tokens=%d", eng.lastParams.MaxTokens)
	}
	if eng.lastParams.Temperature != DefaultTemperature {
		t.Fatalf("temperature=%v", eng.lastParams.Temperature)
	}
	if strings.Join(eng.lastParams.Stop, "|") != "User:|\nUser" {
		t.Fatalf("stop=%q", eng.lastParams.Stop)
	}
}

func TestChatHonorsExplicitParams(t *testing.T) {
	eng := &fakeEngine{reply: "ok"}
	m := newReadyManager(t, eng, Config{})
	zero := 0.0
	req := types.ChatRequest{Message: "Hi", MaxTokens: 64, Temperature: &zero}
	if _, err := m.Chat(context.Background(), req); err != nil {
		t.Fatalf("chat: %v", err)
	}
	if eng.lastParams.MaxTokens != 64 {
		t.Fatalf("max tokens=%d", eng.lastParams.MaxTokens)
	}
	if eng.lastParams.Temperature != 0 {
		t.Fatalf("temperature=%v, want explicit 0", eng.lastParams.Temperature)
	}
}

func TestChatStreamConcatenatesFragments(t *testing.T) {
	eng := &fakeEngine{fragments: []string{"Hel", "lo"}}
	m := newReadyManager(t, eng, Config{})
	var b strings.Builder
	err := m.ChatStream(context.Background(), types.ChatRequest{Message: "Hi"}, func(tok string) error {
		b.WriteString(tok)
		return nil
	})
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	if b.String() != "Hello" {
		t.Fatalf("concatenated=%q", b.String())
	}
}

func TestChatStreamMidstreamError(t *testing.T) {
	eng := &fakeEngine{fragments: []string{"Hel"}, err: errors.New("engine blew up")}
	m := newReadyManager(t, eng, Config{})
	var tokens int
	err := m.ChatStream(context.Background(), types.ChatRequest{Message: "Hi"}, func(string) error {
		tokens++
		return nil
	})
	if err == nil || err.Error() != "engine blew up" {
		t.Fatalf("err=%v", err)
	}
	if tokens != 1 {
		t.Fatalf("tokens=%d", tokens)
	}
}

func TestChatCanceledContext(t *testing.T) {
	eng := &fakeEngine{reply: "ok"}
	m := newReadyManager(t, eng, Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := m.Chat(ctx, types.ChatRequest{Message: "Hi"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v", err)
	}
	if eng.calls() != 0 {
		t.Fatalf("engine invoked despite canceled context")
	}
}

func TestConcurrentGenerationSerialized(t *testing.T) {
	eng := &fakeEngine{reply: "ok", delay: 5 * time.Millisecond}
	m := newReadyManager(t, eng, Config{})
	const n = 4
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = m.Chat(context.Background(), types.ChatRequest{Message: "Hi"})
		}(i)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
	}
	eng.mu.Lock()
	maxActive := eng.maxActive
	calls := eng.generateCalls
	eng.mu.Unlock()
	if maxActive > 1 {
		t.Fatalf("generation interleaved: max active=%d", maxActive)
	}
	if calls != n {
		t.Fatalf("calls=%d", calls)
	}
}

func TestBeginGenerationTooBusy(t *testing.T) {
	eng := &fakeEngine{reply: "ok"}
	m := newReadyManager(t, eng, Config{MaxWait: 10 * time.Millisecond})
	// Occupy the single in-flight slot.
	m.genCh <- struct{}{}
	defer func() { <-m.genCh }()
	_, err := m.Chat(context.Background(), types.ChatRequest{Message: "Hi"})
	if !IsTooBusy(err) {
		t.Fatalf("expected too-busy, got %v", err)
	}
}

func TestCloseReleasesEngine(t *testing.T) {
	eng := &fakeEngine{}
	m := newReadyManager(t, eng, Config{})
	if err := m.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	eng.mu.Lock()
	defer eng.mu.Unlock()
	if !eng.closed {
		t.Fatalf("engine not closed")
	}
}

func TestBuildPrompt(t *testing.T) {
	if got := BuildPrompt("Hi"); got != "User: Hi\nAssistant: " {
		t.Fatalf("prompt=%q", got)
	}
}

func TestStatusString(t *testing.T) {
	cases := map[Status]string{
		StatusUnloaded: "unloaded",
		StatusLoading:  "loading",
		StatusReady:    "ready",
		StatusFailed:   "failed",
		Status(42):     "unknown",
	}
	for s, want := range cases {
		if s.String() != want {
			t.Fatalf("%d.String()=%q want %q", s, s.String(), want)
		}
	}
}
