// Command nanodb is NanoDB's interactive REPL.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"go.uber.org/zap"

	"nanodb/db/config"
	"nanodb/db/engine"
	"nanodb/db/log"
	"nanodb/db/session"
)

func main() {
	cfg, err := config.Load("nanodb")
	if err != nil {
		fmt.Fprintln(os.Stderr, "nanodb:", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "nanodb:", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log.Configure(logger)

	sess, err := session.Open(cfg.DataDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "nanodb:", err)
		os.Exit(1)
	}
	defer sess.Close()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          promptFor(sess),
		HistoryFile:     os.ExpandEnv("$HOME/.nanodb_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "nanodb:", err)
		os.Exit(1)
	}
	defer rl.Close()

	color.Green("NanoDB — type SQL statements terminated by ';', or EXIT/QUIT to leave.")

	ctx := context.Background()
	for {
		rl.SetPrompt(promptFor(sess))
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			color.Red("nanodb: %v", err)
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		results, outcome, runErr := sess.Run(ctx, line)
		for _, res := range results {
			printResult(res)
		}
		if runErr != nil {
			color.Red("error: %v", runErr)
		}
		if outcome == session.Exit {
			break
		}
		if outcome == session.Crash {
			color.Red("nanodb: crash requested, aborting")
			os.Exit(1)
		}
	}
}

func promptFor(sess *session.Session) string {
	if sess.InTransaction() {
		return "nanodb(txn)> "
	}
	return "nanodb> "
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		cfg.Level.SetLevel(zap.InfoLevel)
	}
	return cfg.Build()
}

func printResult(res *engine.ResultSet) {
	if res == nil {
		return
	}
	if res.Message != "" {
		fmt.Println(res.Message)
	}
	if len(res.Columns) == 0 {
		return
	}

	headers := make([]any, len(res.Columns))
	for i, c := range res.Columns {
		headers[i] = c
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header(headers...)
	for _, row := range res.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = v.String()
		}
		table.Append(cells)
	}
	table.Render()
}
