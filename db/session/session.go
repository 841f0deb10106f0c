// Package session is the statement-dispatch layer a driving shell
// (cmd/nanodb's REPL, cmd/nanodbd's HTTP handlers) talks to: it splits raw
// input into individual statements and runs each one through db/engine,
// tracking the simple autocommit transaction banner BEGIN/COMMIT/ROLLBACK
// display without itself changing execution semantics.
package session

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"nanodb/db/engine"
	"nanodb/db/log"
)

// Session wraps one open Engine with per-connection dispatch state. The
// zero Session is not usable; construct with New.
type Session struct {
	Engine *engine.Engine
	ID     string
	inTxn  bool
	logger *zap.SugaredLogger
}

// New wraps an already-open engine in a session, stamping it with a fresh
// id carried in every log line this session emits — including the CRASH
// path, where it's the only thing tying a crash report back to the
// connection that triggered it.
func New(e *engine.Engine) *Session {
	id := uuid.NewString()
	return &Session{Engine: e, ID: id, logger: log.Named("session").With("session_id", id)}
}

// Open opens a database at dir and wraps it in a new session.
func Open(dir string) (*Session, error) {
	e, err := engine.Open(dir)
	if err != nil {
		return nil, err
	}
	return New(e), nil
}

func (s *Session) Close() error {
	return s.Engine.Close()
}

// Outcome reports what a dispatched batch did beyond returning results, so
// a driving shell knows whether to keep reading input.
type Outcome int

const (
	// Continue means the shell should keep reading the next statement.
	Continue Outcome = iota
	// Exit means an EXIT/QUIT statement ran; the shell should stop reading
	// and close the session.
	Exit
	// Crash means a CRASH statement ran; the shell should abort the
	// process. The session itself never calls os.Exit.
	Crash
)

// Run splits input into one or more ';'-separated statements (a semicolon
// inside a quoted string literal does not split) and executes each in
// order, stopping early on the first error or on EXIT/QUIT/CRASH.
func (s *Session) Run(ctx context.Context, input string) ([]*engine.ResultSet, Outcome, error) {
	var results []*engine.ResultSet
	for _, stmt := range splitStatements(input) {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		res, err := s.Engine.Execute(ctx, stmt)
		if engine.IsExit(err) {
			return results, Exit, nil
		}
		if engine.IsCrash(err) {
			s.logger.Warnw("crash requested", "stmt", stmt)
			return results, Crash, nil
		}
		if err != nil {
			s.logger.Errorw("statement failed", "stmt", stmt, "error", err)
			return results, Continue, err
		}
		s.trackTransaction(res.Message)
		results = append(results, res)
	}
	return results, Continue, nil
}

func (s *Session) trackTransaction(message string) {
	switch message {
	case "BEGIN":
		s.inTxn = true
	case "COMMIT", "ROLLBACK":
		s.inTxn = false
	}
}

// InTransaction reports whether the session is inside a BEGIN block, purely
// for a shell's prompt banner — NanoDB executes every statement autocommit
// regardless.
func (s *Session) InTransaction() bool { return s.inTxn }

// splitStatements splits on top-level semicolons, respecting single- and
// double-quoted string literals so a semicolon inside a string value never
// splits a statement in two.
func splitStatements(input string) []string {
	var (
		stmts    []string
		start    int
		inSingle bool
		inDouble bool
	)
	for i, r := range input {
		switch {
		case r == '\'' && !inDouble:
			inSingle = !inSingle
		case r == '"' && !inSingle:
			inDouble = !inDouble
		case r == ';' && !inSingle && !inDouble:
			stmts = append(stmts, input[start:i])
			start = i + 1
		}
	}
	if start < len(input) {
		stmts = append(stmts, input[start:])
	}
	return stmts
}
