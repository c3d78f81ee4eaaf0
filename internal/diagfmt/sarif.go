package diagfmt

import (
	"encoding/json"
	"io"
	"net/url"
	"path/filepath"
	"strings"

	"sclint/internal/diag"
	"sclint/internal/source"
)

const (
	sarifVersion = "2.1.0"
	sarifSchema  = "https://json.schemastore.org/sarif-2.1.0.json"
)

type SarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []SarifRun `json:"runs"`
}

type SarifRun struct {
	Tool        SarifTool         `json:"tool"`
	Invocations []SarifInvocation `json:"invocations,omitempty"`
	Results     []SarifResult     `json:"results"`
}

type SarifTool struct {
	Driver SarifDriver `json:"driver"`
}

type SarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version,omitempty"`
	Rules   []SarifRule `json:"rules,omitempty"`
}

type SarifRule struct {
	ID               string       `json:"id"`
	Name             string       `json:"name,omitempty"`
	ShortDescription SarifMessage `json:"shortDescription"`
}

type SarifInvocation struct {
	Arguments           []string `json:"arguments,omitempty"`
	ExecutionSuccessful bool     `json:"executionSuccessful"`
}

type SarifResult struct {
	RuleID           string          `json:"ruleId"`
	RuleIndex        *int            `json:"ruleIndex,omitempty"`
	Level            string          `json:"level"` // error, warning, note
	Message          SarifMessage    `json:"message"`
	Locations        []SarifLocation `json:"locations"`
	RelatedLocations []SarifLocation `json:"relatedLocations,omitempty"`
}

type SarifMessage struct {
	Text string `json:"text"`
}

type SarifLocation struct {
	ID               int                   `json:"id,omitempty"`
	PhysicalLocation SarifPhysicalLocation `json:"physicalLocation"`
	Message          *SarifMessage         `json:"message,omitempty"`
}

type SarifPhysicalLocation struct {
	ArtifactLocation SarifArtifactLocation `json:"artifactLocation"`
	Region           SarifRegion           `json:"region"`
}

type SarifArtifactLocation struct {
	URI string `json:"uri"`
}

// SarifRegion uses 1-based lines and columns; columns count bytes here.
type SarifRegion struct {
	StartLine   uint32 `json:"startLine"`
	StartColumn uint32 `json:"startColumn,omitempty"`
	EndLine     uint32 `json:"endLine,omitempty"`
	EndColumn   uint32 `json:"endColumn,omitempty"`
	CharOffset  uint32 `json:"charOffset"`
	CharLength  uint32 `json:"charLength"`
}

// BuildSarif собирает SARIF-лог без сериализации.
func BuildSarif(bag *diag.Bag, fs *source.FileSet, meta SarifRunMeta) SarifLog {
	rules := make([]SarifRule, 0, len(diag.Rules()))
	ruleIndex := make(map[diag.Code]int)
	for _, code := range diag.Rules() {
		ruleIndex[code] = len(rules)
		rules = append(rules, SarifRule{
			ID:               code.ID(),
			Name:             code.RuleName(),
			ShortDescription: SarifMessage{Text: code.Title()},
		})
	}

	results := make([]SarifResult, 0, bag.Len())
	for _, d := range bag.Items() {
		res := SarifResult{
			RuleID:    d.Code.ID(),
			Level:     d.Severity.SarifLevel(),
			Message:   SarifMessage{Text: strings.TrimSpace(d.Message)},
			Locations: []SarifLocation{sarifLocation(fs, d.Primary)},
		}
		if idx, ok := ruleIndex[d.Code]; ok {
			res.RuleIndex = &idx
		}
		for i, note := range d.Notes {
			loc := sarifLocation(fs, note.Span)
			loc.ID = i + 1
			loc.Message = &SarifMessage{Text: note.Msg}
			res.RelatedLocations = append(res.RelatedLocations, loc)
		}
		results = append(results, res)
	}

	run := SarifRun{
		Tool: SarifTool{Driver: SarifDriver{
			Name:    meta.ToolName,
			Version: meta.ToolVersion,
			Rules:   rules,
		}},
		Results: results,
	}
	if len(meta.InvocationArgs) > 0 {
		run.Invocations = []SarifInvocation{{
			Arguments:           meta.InvocationArgs,
			ExecutionSuccessful: !bag.HasErrors(),
		}}
	}

	return SarifLog{
		Version: sarifVersion,
		Schema:  sarifSchema,
		Runs:    []SarifRun{run},
	}
}

// Sarif форматирует диагностики в SARIF формат (v2.1.0)
func Sarif(w io.Writer, bag *diag.Bag, fs *source.FileSet, meta SarifRunMeta) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildSarif(bag, fs, meta))
}

func sarifLocation(fs *source.FileSet, span source.Span) SarifLocation {
	region := SarifRegion{
		StartLine:  1,
		CharOffset: span.Start,
		CharLength: span.Len(),
	}
	uri := "UNKNOWN"
	if f, ok := fs.Lookup(span.File); ok {
		uri = toURI(f.FormatPath("relative", fs.BaseDir()))
		start, end := fs.Resolve(span)
		region.StartLine = start.Line
		region.StartColumn = start.Col
		region.EndLine = end.Line
		region.EndColumn = end.Col
	}
	return SarifLocation{
		PhysicalLocation: SarifPhysicalLocation{
			ArtifactLocation: SarifArtifactLocation{URI: uri},
			Region:           region,
		},
	}
}

// toURI отдаёт относительные пути как есть, абсолютные превращает в file://
func toURI(path string) string {
	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		return p
	}
	u := url.URL{Scheme: "file", Path: p}
	return u.String()
}
