// Package diag defines the diagnostic model shared by the linter, the CLI and
// the language server.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity: Info, Warning or Error (severity.go). Lint findings are warnings.
//   - Code: compact numeric identifier with a stable string form (codes.go),
//     e.g. SCL1001 for the short-circuit rule and IO4001 for unreadable files.
//   - Message: the human readable text, reported verbatim.
//   - Primary: the source.Span the diagnostic points at.
//   - Notes: optional secondary spans with extra context.
//
// # Emitting diagnostics
//
// Producers talk to a Reporter. BagReporter collects into a Bag, which supports
// sorting and deduplication; DedupReporter drops repeats before they
// reach the next reporter. ReportBuilder is available when notes have to be
// attached before emitting.
//
// Package diag performs no IO and no rendering. Formatting lives in
// internal/diagfmt; FormatShortDiagnostics is the only textual form kept here
// because the short CLI output and test fixtures share it.
package diag
