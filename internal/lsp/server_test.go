package lsp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// newTestServer returns a server whose debounce never fires during a test,
// so runs are driven explicitly through lintNow and runLint.
func newTestServer(t *testing.T) (*Server, *bytes.Buffer, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	var out bytes.Buffer
	server := NewServer(bytes.NewReader(nil), &out, ServerOptions{
		Debounce: time.Hour,
		Logger:   zap.New(core).Sugar(),
	})
	t.Cleanup(server.stopTimers)
	return server, &out, logs
}

// safeBuffer is written from timer goroutines.
type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Len()
}

func (b *safeBuffer) Snapshot() *bytes.Buffer {
	b.mu.Lock()
	defer b.mu.Unlock()
	return bytes.NewBuffer(append([]byte(nil), b.buf.Bytes()...))
}

func testURI(t *testing.T, name string) string {
	t.Helper()
	return pathToURI(filepath.Join(t.TempDir(), name))
}

func notify(t *testing.T, s *Server, method string, params any) {
	t.Helper()
	payload, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("marshal %s params: %v", method, err)
	}
	if err := s.handleMessage(&rpcMessage{JSONRPC: "2.0", Method: method, Params: payload}); err != nil {
		t.Fatalf("%s: %v", method, err)
	}
}

func request(t *testing.T, s *Server, id int, method string, params any) {
	t.Helper()
	payload, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("marshal %s params: %v", method, err)
	}
	rawID, _ := json.Marshal(id)
	if err := s.handleMessage(&rpcMessage{JSONRPC: "2.0", ID: rawID, Method: method, Params: payload}); err != nil {
		t.Fatalf("%s: %v", method, err)
	}
}

func openDoc(t *testing.T, s *Server, uri, languageID, text string) {
	t.Helper()
	notify(t, s, "textDocument/didOpen", didOpenTextDocumentParams{
		TextDocument: textDocumentItem{URI: uri, LanguageID: languageID, Version: 1, Text: text},
	})
}

func readAll(t *testing.T, out *bytes.Buffer) []rpcMessage {
	t.Helper()
	reader := bufio.NewReader(bytes.NewReader(out.Bytes()))
	var msgs []rpcMessage
	for {
		payload, err := readMessage(reader)
		if errors.Is(err, io.EOF) {
			return msgs
		}
		if err != nil {
			t.Fatalf("read message: %v", err)
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			t.Fatalf("decode message: %v", err)
		}
		msgs = append(msgs, msg)
	}
}

func publishes(t *testing.T, out *bytes.Buffer) []publishDiagnosticsParams {
	t.Helper()
	var list []publishDiagnosticsParams
	for _, msg := range readAll(t, out) {
		if msg.Method != "textDocument/publishDiagnostics" {
			continue
		}
		var params publishDiagnosticsParams
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			t.Fatalf("decode params: %v", err)
		}
		list = append(list, params)
	}
	return list
}

func docSeq(s *Server, uri string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc, ok := s.docs[uri]; ok {
		return doc.seq
	}
	return 0
}

func TestInitialize(t *testing.T) {
	server, out, _ := newTestServer(t)
	request(t, server, 1, "initialize", map[string]any{
		"rootUri":               "file:///tmp/project",
		"initializationOptions": map[string]any{"withNotes": true},
	})

	msgs := readAll(t, out)
	if len(msgs) != 1 {
		t.Fatalf("expected 1 response, got %d", len(msgs))
	}
	var result initializeResult
	if err := json.Unmarshal(msgs[0].Result, &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.ServerInfo.Name != "sclint" {
		t.Errorf("server name = %q", result.ServerInfo.Name)
	}
	if !result.Capabilities.TextDocumentSync.OpenClose || result.Capabilities.TextDocumentSync.Change != 2 {
		t.Errorf("unexpected sync options %+v", result.Capabilities.TextDocumentSync)
	}
	cmds := result.Capabilities.ExecuteCommandProvider
	if cmds == nil || len(cmds.Commands) != 1 || cmds.Commands[0] != LintCommand {
		t.Errorf("unexpected executeCommandProvider %+v", cmds)
	}
	if !server.withNotes {
		t.Error("initializationOptions.withNotes was not applied")
	}
}

func TestPublishDiagnosticsMapping(t *testing.T) {
	server, out, _ := newTestServer(t)
	uri := testURI(t, "app.js")
	openDoc(t, server, uri, "javascript", "const ok = 1;\nok && run(\"😀\", v);\n")

	if n, ok := server.lintNow(uri); !ok || n != 1 {
		t.Fatalf("lintNow = %d, %v; want 1, true", n, ok)
	}

	list := publishes(t, out)
	if len(list) != 1 {
		t.Fatalf("expected 1 publish, got %d", len(list))
	}
	params := list[0]
	if params.URI != uri {
		t.Fatalf("expected uri %q, got %q", uri, params.URI)
	}
	if params.Version == nil || *params.Version != 1 {
		t.Errorf("expected version 1, got %v", params.Version)
	}
	if len(params.Diagnostics) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(params.Diagnostics))
	}
	got := params.Diagnostics[0]
	wantRange := lspRange{Start: position{Line: 1, Character: 6}, End: position{Line: 1, Character: 18}}
	if got.Range != wantRange {
		t.Errorf("range = %+v, want %+v", got.Range, wantRange)
	}
	if got.Message != "Warning: Short-circuit may skip evaluation of 'run(\"😀\", v)'" {
		t.Errorf("unexpected message: %q", got.Message)
	}
	if got.Severity != 2 || got.Code != "SCL1001" || got.Source != "sclint" {
		t.Errorf("unexpected severity/code/source: %d %q %q", got.Severity, got.Code, got.Source)
	}
	if len(got.RelatedInformation) != 0 {
		t.Errorf("notes are off by default, got %+v", got.RelatedInformation)
	}
}

func TestWithNotesSetting(t *testing.T) {
	server, out, _ := newTestServer(t)
	uri := testURI(t, "notes.js")
	openDoc(t, server, uri, "javascript", "a || f();")
	notify(t, server, "workspace/didChangeConfiguration", map[string]any{
		"settings": map[string]any{"sclint": map[string]any{"withNotes": true}},
	})

	if _, ok := server.lintNow(uri); !ok {
		t.Fatal("lintNow failed")
	}
	list := publishes(t, out)
	if len(list) != 1 || len(list[0].Diagnostics) != 1 {
		t.Fatalf("unexpected publishes %+v", list)
	}
	related := list[0].Diagnostics[0].RelatedInformation
	if len(related) != 1 {
		t.Fatalf("expected 1 related entry, got %d", len(related))
	}
	wantRange := lspRange{Start: position{Line: 0, Character: 0}, End: position{Line: 0, Character: 8}}
	if related[0].Location.URI != uri || related[0].Location.Range != wantRange {
		t.Errorf("unexpected related location %+v", related[0].Location)
	}
	if related[0].Message != "skipped when the left operand of || already decides the result" {
		t.Errorf("unexpected note %q", related[0].Message)
	}
}

func TestLatestRunWins(t *testing.T) {
	server, out, _ := newTestServer(t)
	uri := testURI(t, "edit.js")
	openDoc(t, server, uri, "javascript", "a && b;\n")
	first := docSeq(server, uri)

	notify(t, server, "textDocument/didChange", didChangeTextDocumentParams{
		TextDocument:   versionedTextDocumentIdentifier{URI: uri, Version: 2},
		ContentChanges: []textDocumentContentChangeEvent{{Range: rangeAt(0, 5, 0, 6), Text: "f()"}},
	})
	second := docSeq(server, uri)
	if second <= first {
		t.Fatalf("didChange must start a new run: %d -> %d", first, second)
	}

	// устаревший прогон ничего не публикует
	server.runLint(uri, first)
	if got := publishes(t, out); len(got) != 0 {
		t.Fatalf("superseded run published %+v", got)
	}

	server.runLint(uri, second)
	list := publishes(t, out)
	if len(list) != 1 {
		t.Fatalf("expected 1 publish, got %d", len(list))
	}
	if *list[0].Version != 2 || len(list[0].Diagnostics) != 1 {
		t.Fatalf("unexpected publish %+v", list[0])
	}
	if list[0].Diagnostics[0].Message != "Warning: Short-circuit may skip evaluation of 'f()'" {
		t.Errorf("unexpected message %q", list[0].Diagnostics[0].Message)
	}

	// старый номер по-прежнему отбрасывается
	server.runLint(uri, first)
	if got := publishes(t, out); len(got) != 1 {
		t.Fatalf("expected no further publishes, got %d", len(got))
	}
}

func TestDebounceFires(t *testing.T) {
	var out safeBuffer
	server := NewServer(bytes.NewReader(nil), &out, ServerOptions{Debounce: time.Millisecond})
	t.Cleanup(server.stopTimers)
	uri := testURI(t, "debounce.js")
	openDoc(t, server, uri, "javascript", "x || (y + 1);")

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if out.Len() > 0 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	list := publishes(t, out.Snapshot())
	if len(list) != 1 || len(list[0].Diagnostics) != 1 {
		t.Fatalf("expected one debounced publish with one diagnostic, got %+v", list)
	}
	if list[0].Diagnostics[0].Message != "Warning: Short-circuit may skip evaluation of 'y + 1'" {
		t.Errorf("unexpected message %q", list[0].Diagnostics[0].Message)
	}
}

func TestParseFailureClearsDiagnostics(t *testing.T) {
	server, out, logs := newTestServer(t)
	uri := testURI(t, "broken.js")
	openDoc(t, server, uri, "javascript", "a && f();")
	if n, _ := server.lintNow(uri); n != 1 {
		t.Fatalf("expected 1 finding, got %d", n)
	}

	notify(t, server, "textDocument/didChange", didChangeTextDocumentParams{
		TextDocument:   versionedTextDocumentIdentifier{URI: uri, Version: 2},
		ContentChanges: []textDocumentContentChangeEvent{{Text: "a && ("}},
	})
	if n, ok := server.lintNow(uri); !ok || n != 0 {
		t.Fatalf("lintNow on broken text = %d, %v", n, ok)
	}

	list := publishes(t, out)
	if len(list) != 2 {
		t.Fatalf("expected 2 publishes, got %d", len(list))
	}
	if len(list[1].Diagnostics) != 0 {
		t.Errorf("broken document must clear diagnostics, got %+v", list[1].Diagnostics)
	}
	warnings := logs.FilterMessage("document does not parse").All()
	if len(warnings) != 1 || warnings[0].Level != zapcore.WarnLevel {
		t.Errorf("expected one parse warning, got %+v", warnings)
	}
}

func TestNonJavaScriptIgnored(t *testing.T) {
	server, out, _ := newTestServer(t)
	uri := testURI(t, "types.ts")
	openDoc(t, server, uri, "typescript", "a && f();")

	if docSeq(server, uri) != 0 {
		t.Error("typescript documents must not be scheduled")
	}
	if _, ok := server.lintNow(uri); ok {
		t.Error("lintNow must skip typescript documents")
	}
	if out.Len() != 0 {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestDidCloseClearsDiagnostics(t *testing.T) {
	server, out, _ := newTestServer(t)
	uri := testURI(t, "close.js")
	openDoc(t, server, uri, "javascriptreact", "const el = ok && render();")
	server.lintNow(uri)
	notify(t, server, "textDocument/didClose", didCloseTextDocumentParams{
		TextDocument: textDocumentIdentifier{URI: uri},
	})

	list := publishes(t, out)
	if len(list) != 2 {
		t.Fatalf("expected 2 publishes, got %d", len(list))
	}
	if len(list[0].Diagnostics) != 1 {
		t.Errorf("expected the jsx document to be linted, got %+v", list[0])
	}
	if list[1].URI != uri || len(list[1].Diagnostics) != 0 || list[1].Version != nil {
		t.Errorf("unexpected clear %+v", list[1])
	}
	if _, ok := server.lintNow(uri); ok {
		t.Error("closed documents must not be linted")
	}
}

func TestDidSaveReplacesText(t *testing.T) {
	server, out, _ := newTestServer(t)
	uri := testURI(t, "save.js")
	openDoc(t, server, uri, "javascript", "a && b;")
	text := "a && save();"
	notify(t, server, "textDocument/didSave", didSaveTextDocumentParams{
		TextDocument: textDocumentIdentifier{URI: uri},
		Text:         &text,
	})
	server.lintNow(uri)

	list := publishes(t, out)
	if len(list) == 0 {
		t.Fatal("expected a publish")
	}
	last := list[len(list)-1]
	if len(last.Diagnostics) != 1 || last.Diagnostics[0].Message != "Warning: Short-circuit may skip evaluation of 'save()'" {
		t.Errorf("unexpected publish %+v", last)
	}
}

func TestExecuteCommand(t *testing.T) {
	server, out, _ := newTestServer(t)
	first := testURI(t, "a.js")
	second := testURI(t, "b.js")
	openDoc(t, server, first, "javascript", "a && f(); b || g();")
	openDoc(t, server, second, "javascript", "a && b;")

	request(t, server, 7, "workspace/executeCommand", executeCommandParams{Command: LintCommand})
	request(t, server, 8, "workspace/executeCommand", executeCommandParams{Command: "sclint.fix"})

	var responses []rpcMessage
	for _, msg := range readAll(t, out) {
		if len(msg.ID) > 0 {
			responses = append(responses, msg)
		}
	}
	if len(responses) != 2 {
		t.Fatalf("expected 2 responses, got %d", len(responses))
	}
	var results []lintCommandResult
	if err := json.Unmarshal(responses[0].Result, &results); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	want := []lintCommandResult{{URI: first, Findings: 2}, {URI: second, Findings: 0}}
	if first > second {
		want[0], want[1] = want[1], want[0]
	}
	if len(results) != 2 || results[0] != want[0] || results[1] != want[1] {
		t.Errorf("results = %+v, want %+v", results, want)
	}
	if responses[1].Error == nil || responses[1].Error.Code != codeInvalidParams {
		t.Errorf("unknown command must fail with invalid params, got %+v", responses[1].Error)
	}
}

func TestMethodNotFound(t *testing.T) {
	server, out, _ := newTestServer(t)
	request(t, server, 3, "textDocument/hover", map[string]any{})
	notify(t, server, "$/setTrace", map[string]any{"value": "off"})

	msgs := readAll(t, out)
	if len(msgs) != 1 {
		t.Fatalf("notifications must not be answered, got %d messages", len(msgs))
	}
	if msgs[0].Error == nil || msgs[0].Error.Code != codeMethodNotFound {
		t.Errorf("expected method not found, got %+v", msgs[0])
	}
}

func framed(t *testing.T, messages ...string) io.Reader {
	t.Helper()
	var buf bytes.Buffer
	for _, msg := range messages {
		if err := writeMessage(&buf, []byte(msg)); err != nil {
			t.Fatalf("frame: %v", err)
		}
	}
	return &buf
}

func TestRunLifecycle(t *testing.T) {
	tests := []struct {
		name     string
		messages []string
		wantErr  error
	}{
		{
			name: "shutdown then exit",
			messages: []string{
				`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`,
				`{"jsonrpc":"2.0","method":"initialized","params":{}}`,
				`{"jsonrpc":"2.0","id":2,"method":"shutdown"}`,
				`{"jsonrpc":"2.0","method":"exit"}`,
			},
			wantErr: ErrExit,
		},
		{
			name: "exit without shutdown",
			messages: []string{
				`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`,
				`{"jsonrpc":"2.0","method":"exit"}`,
			},
			wantErr: ErrExitWithoutShutdown,
		},
		{
			name: "end of input",
			messages: []string{
				`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`,
				`not json`,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			server := NewServer(framed(t, tt.messages...), &out, ServerOptions{Debounce: time.Hour})
			err := server.Run(context.Background())
			if !errors.Is(err, tt.wantErr) || (tt.wantErr == nil && err != nil) {
				t.Fatalf("Run() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRequestsAfterShutdown(t *testing.T) {
	var out bytes.Buffer
	server := NewServer(framed(t,
		`{"jsonrpc":"2.0","id":1,"method":"shutdown"}`,
		`{"jsonrpc":"2.0","id":2,"method":"workspace/executeCommand","params":{"command":"sclint.lint"}}`,
		`{"jsonrpc":"2.0","method":"exit"}`,
	), &out, ServerOptions{Debounce: time.Hour})
	if err := server.Run(context.Background()); !errors.Is(err, ErrExit) {
		t.Fatalf("Run() = %v, want ErrExit", err)
	}
	msgs := readAll(t, &out)
	if len(msgs) != 2 {
		t.Fatalf("expected 2 responses, got %d", len(msgs))
	}
	if msgs[1].Error == nil || msgs[1].Error.Code != codeInvalidRequest {
		t.Errorf("request after shutdown must fail, got %+v", msgs[1])
	}
}
