package lint

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"sclint/internal/jsparse"
	"sclint/internal/logging"
)

// Document parses text and runs Detect on it. A document that does not parse
// yields no findings; the failure only goes to the global logger.
func Document(text string) []Finding {
	return DocumentWithLogger(text, logging.L())
}

// DocumentWithLogger is Document with an explicit logger. A nil logger drops
// parse failures.
func DocumentWithLogger(text string, log *zap.SugaredLogger) []Finding {
	return DocumentContext(context.Background(), text, log)
}

// DocumentContext is DocumentWithLogger with a context for the parse step.
func DocumentContext(ctx context.Context, text string, log *zap.SugaredLogger) []Finding {
	root, err := jsparse.ParseString(ctx, text)
	if err != nil {
		if log != nil {
			logParseFailure(log, err)
		}
		return []Finding{}
	}
	return Detect(text, root)
}

func logParseFailure(log *zap.SugaredLogger, err error) {
	var se *jsparse.SyntaxError
	if errors.As(err, &se) {
		log.Debugw("skipping document that does not parse",
			"line", se.Pos.Line,
			"column", se.Pos.Column+1,
			"error", se.Msg,
		)
		return
	}
	log.Warnw("parser failure", "error", err)
}
