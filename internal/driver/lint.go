package driver

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"sclint/internal/diag"
	"sclint/internal/jsparse"
	"sclint/internal/lint"
	"sclint/internal/logging"
	"sclint/internal/observ"
	"sclint/internal/source"
)

// DefaultMaxDiagnostics is the per-file diagnostic limit when Options leaves it unset.
const DefaultMaxDiagnostics = 100

// Options configures a lint run.
type Options struct {
	MaxDiagnostics int // на файл; 0 - DefaultMaxDiagnostics
	Jobs           int // 0 - GOMAXPROCS
	WithNotes      bool
	Extensions     []string
	Exclude        []string
	BaseDir        string
	Progress       ProgressSink
	Logger         *zap.SugaredLogger
}

// FileResult содержит результат линтинга одного файла.
type FileResult struct {
	Path     string
	FileID   source.FileID
	Bag      *diag.Bag
	Findings []lint.Finding
	ParseErr error // синтаксическая ошибка; в диагностики не попадает
	Timing   observ.Report
}

// Result is the outcome of one lint run.
type Result struct {
	FileSet *source.FileSet
	Files   []FileResult
	Timer   *observ.Timer // фазы всего прогона
}

// Bag returns all diagnostics of the run merged into one sorted bag without repeats.
func (r *Result) Bag() *diag.Bag {
	total := 0
	for _, f := range r.Files {
		if f.Bag != nil {
			total += f.Bag.Len()
		}
	}
	bag := diag.NewBag(total)
	for _, f := range r.Files {
		bag.Merge(f.Bag)
	}
	bag.Sort()
	bag.Dedup()
	return bag
}

// FindingCount returns the number of short-circuit findings across files.
func (r *Result) FindingCount() int {
	n := 0
	for _, f := range r.Files {
		n += len(f.Findings)
	}
	return n
}

// FileTimings sums per-file phase durations; with parallel jobs the total
// exceeds the wall time of the "lint" phase.
func (r *Result) FileTimings() observ.Report {
	reports := make([]observ.Report, 0, len(r.Files))
	for _, f := range r.Files {
		reports = append(reports, f.Timing)
	}
	return observ.Sum(reports...)
}

// ParseFailures returns the files that were skipped because they did not parse.
func (r *Result) ParseFailures() []FileResult {
	var out []FileResult
	for _, f := range r.Files {
		if f.ParseErr != nil {
			out = append(out, f)
		}
	}
	return out
}

// LintSource lints in-memory content registered under name (e.g. "<stdin>").
// The content is normalized like a file on disk.
func LintSource(ctx context.Context, name string, content []byte, opts Options) (*Result, error) {
	fileSet := newFileSet(opts)
	timer := observ.NewTimer()

	idx := timer.Begin(string(StageLoad))
	normalized, flags, err := source.Normalize(content)
	if err != nil {
		timer.End(idx, "")
		fileID := fileSet.AddVirtual(name, nil)
		res := loadFailure(name, fileID, err, opts)
		return &Result{FileSet: fileSet, Files: []FileResult{res}, Timer: timer}, nil
	}
	fileID := fileSet.Add(name, normalized, flags|source.FileVirtual)
	timer.End(idx, "")

	res := lintOne(ctx, fileSet, name, fileID, observ.NewTimer(), opts)
	return &Result{FileSet: fileSet, Files: []FileResult{res}, Timer: timer}, ctx.Err()
}

// LintFile lints a single file.
func LintFile(ctx context.Context, path string, opts Options) (*Result, error) {
	return LintPaths(ctx, []string{path}, opts)
}

// LintPaths lints files and directories. Directories are expanded with
// ListFiles; files are loaded sequentially and linted in parallel.
// Files that cannot be read get an IO4001 diagnostic instead of failing the run.
func LintPaths(ctx context.Context, paths []string, opts Options) (*Result, error) {
	timer := observ.NewTimer()

	idx := timer.Begin("discover")
	files, err := ListFiles(paths, opts.Extensions, opts.Exclude)
	timer.End(idx, fmt.Sprintf("%d files", len(files)))
	if err != nil {
		return nil, err
	}

	fileSet := newFileSet(opts)
	result := &Result{FileSet: fileSet, Files: make([]FileResult, len(files)), Timer: timer}
	if len(files) == 0 {
		return result, nil
	}

	for _, path := range files {
		emit(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusQueued})
	}

	// Предзагрузка: FileSet не потокобезопасен на запись
	idx = timer.Begin(string(StageLoad))
	fileIDs := make([]source.FileID, len(files))
	loadErrors := make([]error, len(files))
	fileTimers := make([]*observ.Timer, len(files))
	for i, path := range files {
		ft := observ.NewTimer()
		fidx := ft.Begin(string(StageLoad))
		fileID, err := fileSet.Load(path)
		ft.End(fidx, "")
		if err != nil {
			fileID = fileSet.AddVirtual(path, nil)
			loadErrors[i] = err
		}
		fileIDs[i] = fileID
		fileTimers[i] = ft
	}
	timer.End(idx, "")

	// Настраиваем параллелизм
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	idx = timer.Begin("lint")
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	// индексы уникальны для каждой горутины, мьютекс не нужен
	for i, path := range files {
		g.Go(func() error {
			// Проверка отмены
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			if loadErrors[i] != nil {
				result.Files[i] = loadFailure(path, fileIDs[i], loadErrors[i], opts)
				return nil
			}
			result.Files[i] = lintOne(gctx, fileSet, path, fileIDs[i], fileTimers[i], opts)
			return nil
		})
	}

	err = g.Wait()
	timer.End(idx, fmt.Sprintf("%d jobs", min(jobs, len(files))))
	return result, err
}

func lintOne(ctx context.Context, fileSet *source.FileSet, path string, fileID source.FileID, timer *observ.Timer, opts Options) FileResult {
	log := opts.Logger
	if log == nil {
		log = logging.L()
	}
	file := fileSet.Get(fileID)
	res := FileResult{
		Path:   path,
		FileID: fileID,
		Bag:    diag.NewBag(maxDiagnostics(opts)),
	}

	started := time.Now()
	emit(opts.Progress, Event{File: path, Stage: StageParse, Status: StatusWorking})
	idx := timer.Begin(string(StageParse))
	root, err := jsparse.Parse(ctx, file.Content)
	timer.End(idx, "")
	if err != nil {
		res.ParseErr = err
		res.Findings = []lint.Finding{}
		res.Timing = timer.Report()
		var se *jsparse.SyntaxError
		if errors.As(err, &se) {
			log.Debugw("skipping file that does not parse", "file", path, "error", se.Error())
		} else {
			log.Warnw("parser failure", "file", path, "error", err)
		}
		emit(opts.Progress, Event{File: path, Stage: StageParse, Status: StatusError, Err: err, Elapsed: time.Since(started)})
		return res
	}

	emit(opts.Progress, Event{File: path, Stage: StageDetect, Status: StatusWorking})
	idx = timer.Begin(string(StageDetect))
	res.Findings = lint.Detect(string(file.Content), root)
	timer.End(idx, fmt.Sprintf("%d findings", len(res.Findings)))

	lint.Report(diag.NewDedupReporter(diag.BagReporter{Bag: res.Bag}), fileID, res.Findings, opts.WithNotes)
	if len(res.Findings) > res.Bag.Len() && res.Bag.Len() == int(res.Bag.Cap()) {
		log.Debugw("diagnostic limit reached", "file", path, "findings", len(res.Findings), "limit", res.Bag.Cap())
	}
	res.Timing = timer.Report()

	emit(opts.Progress, Event{
		File:     path,
		Stage:    StageDetect,
		Status:   StatusDone,
		Findings: len(res.Findings),
		Elapsed:  time.Since(started),
	})
	return res
}

func loadFailure(path string, fileID source.FileID, err error, opts Options) FileResult {
	bag := diag.NewBag(maxDiagnostics(opts))
	diag.ReportError(diag.BagReporter{Bag: bag}, diag.IOLoadFileError, source.Span{File: fileID}, "failed to load file: "+err.Error()).Emit()
	emit(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusError, Err: err})
	return FileResult{
		Path:     path,
		FileID:   fileID,
		Bag:      bag,
		Findings: []lint.Finding{},
	}
}

func newFileSet(opts Options) *source.FileSet {
	if opts.BaseDir != "" {
		return source.NewFileSetWithBase(opts.BaseDir)
	}
	return source.NewFileSet()
}

func maxDiagnostics(opts Options) int {
	if opts.MaxDiagnostics <= 0 {
		return DefaultMaxDiagnostics
	}
	return opts.MaxDiagnostics
}
