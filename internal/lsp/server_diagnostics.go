package lsp

import (
	"context"
	"time"

	"sclint/internal/diag"
	"sclint/internal/jsparse"
	"sclint/internal/lint"
	"sclint/internal/source"
)

// lintableLanguages lists the languageId values the server checks.
var lintableLanguages = map[string]bool{
	"javascript":      true,
	"javascriptreact": true,
}

// lintRun is a copy of a document taken when a run starts.
type lintRun struct {
	uri     string
	version int
	text    string
	seq     uint64
}

// beginRunLocked supersedes any pending run of doc and returns the new
// sequence number. Callers hold s.mu.
func (s *Server) beginRunLocked(doc *document) uint64 {
	s.lintSeq++
	doc.seq = s.lintSeq
	if t := s.timers[doc.uri]; t != nil {
		t.Stop()
		delete(s.timers, doc.uri)
	}
	return doc.seq
}

func (s *Server) scheduleLint(uri string, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[uri]
	if !ok || !lintableLanguages[doc.languageID] {
		return
	}
	seq := s.beginRunLocked(doc)
	s.timers[uri] = time.AfterFunc(delay, func() {
		s.runLint(uri, seq)
	})
}

func (s *Server) runLint(uri string, seq uint64) {
	run, ok := s.snapshot(uri, seq)
	if !ok {
		return
	}
	list := s.lintDocument(run)
	s.publish(run, list)
}

// lintNow runs a document synchronously and returns the number of published
// diagnostics.
func (s *Server) lintNow(uri string) (int, bool) {
	s.mu.Lock()
	doc, ok := s.docs[uri]
	if !ok || !lintableLanguages[doc.languageID] {
		s.mu.Unlock()
		return 0, false
	}
	seq := s.beginRunLocked(doc)
	s.mu.Unlock()

	run, ok := s.snapshot(uri, seq)
	if !ok {
		return 0, false
	}
	list := s.lintDocument(run)
	if !s.publish(run, list) {
		return 0, false
	}
	return len(list), true
}

func (s *Server) snapshot(uri string, seq uint64) (lintRun, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[uri]
	if !ok || doc.seq != seq {
		return lintRun{}, false
	}
	delete(s.timers, uri)
	return lintRun{uri: uri, version: doc.version, text: doc.text, seq: seq}, true
}

func (s *Server) currentContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baseCtx
}

// lintDocument parses and checks one document. A document that does not
// parse yields an empty list, which clears whatever was shown before.
func (s *Server) lintDocument(run lintRun) []lspDiagnostic {
	root, err := jsparse.ParseString(s.currentContext(), run.text)
	if err != nil {
		s.log.Warnw("document does not parse", "uri", run.uri, "version", run.version, "error", err)
		return nil
	}
	findings := lint.Detect(run.text, root)
	if len(findings) == 0 {
		return nil
	}

	s.mu.Lock()
	withNotes, maxDiagnostics := s.withNotes, s.maxDiagnostics
	s.mu.Unlock()

	fs, id := documentFile(documentName(run.uri), run.text)
	bag := diag.NewBag(maxDiagnostics)
	lint.Report(diag.BagReporter{Bag: bag}, id, findings, withNotes)
	return toLSPDiagnostics(fs, run.uri, bag.Items())
}

func toLSPDiagnostics(fs *source.FileSet, uri string, items []*diag.Diagnostic) []lspDiagnostic {
	out := make([]lspDiagnostic, 0, len(items))
	for _, d := range items {
		file, ok := fs.Lookup(d.Primary.File)
		if !ok {
			continue
		}
		ld := lspDiagnostic{
			Range:    rangeForSpan(file, d.Primary),
			Severity: d.Severity.LSP(),
			Code:     d.Code.ID(),
			Source:   "sclint",
			Message:  d.Message,
		}
		for _, note := range d.Notes {
			ld.RelatedInformation = append(ld.RelatedInformation, diagnosticRelatedInformation{
				Location: location{URI: uri, Range: rangeForSpan(file, note.Span)},
				Message:  note.Msg,
			})
		}
		out = append(out, ld)
	}
	return out
}

// publish sends the results of run unless a newer run of the same document
// was started meanwhile or the document was closed. publishMu keeps the
// check and the send atomic, so an older run can never overwrite a newer one.
func (s *Server) publish(run lintRun, list []lspDiagnostic) bool {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	s.mu.Lock()
	doc, ok := s.docs[run.uri]
	current := ok && doc.seq == run.seq && s.baseCtx.Err() == nil
	if current {
		s.published[run.uri] = struct{}{}
	}
	s.mu.Unlock()

	if !current {
		s.log.Debugw("discarding superseded lint run", "uri", run.uri, "seq", run.seq)
		return false
	}
	// пустой список тоже отправляется: он стирает прежние результаты
	version := run.version
	if err := s.sendPublish(run.uri, &version, list); err != nil {
		s.log.Warnw("failed to publish diagnostics", "uri", run.uri, "error", err)
	}
	return true
}

func (s *Server) clearPublishedDiagnostics() {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()
	s.mu.Lock()
	if len(s.published) == 0 {
		s.mu.Unlock()
		return
	}
	prev := s.published
	s.published = make(map[string]struct{})
	s.mu.Unlock()
	for uri := range prev {
		if err := s.sendPublish(uri, nil, nil); err != nil {
			s.log.Warnw("failed to clear diagnostics", "uri", uri, "error", err)
		}
	}
}
