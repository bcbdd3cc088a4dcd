package main

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/hpungsan/passgen/internal/config"
	"github.com/hpungsan/passgen/internal/db"
	"github.com/hpungsan/passgen/internal/errors"
	"github.com/hpungsan/passgen/internal/generator"
	"github.com/hpungsan/passgen/internal/mcp"
	"github.com/hpungsan/passgen/internal/record"
	"github.com/hpungsan/passgen/internal/store"
	"github.com/hpungsan/passgen/internal/strength"
	"github.com/hpungsan/passgen/internal/web"
)

// env carries what every command needs. Tests replace the function fields.
type env struct {
	baseDir string
	cfg     *config.Config
	logger  *zap.Logger

	isTerminal      func() bool
	now             func() time.Time
	generate        func(generator.Options) (string, error)
	copyToClipboard func(string) error

	store   *store.Store
	closers []func() error
}

func newEnv(baseDir string, cfg *config.Config, logger *zap.Logger) *env {
	return &env{
		baseDir:         baseDir,
		cfg:             cfg,
		logger:          logger,
		isTerminal:      func() bool { return false },
		now:             time.Now,
		generate:        generator.Generate,
		copyToClipboard: clipboard.WriteAll,
	}
}

// openStore returns the session store, opening the selected backend on first use.
func (e *env) openStore(c *cli.Context) (*store.Store, error) {
	if e.store != nil {
		return e.store, nil
	}

	backend := c.String("backend")
	if backend == "" {
		backend = e.cfg.Backend
	}

	var b store.Backend
	switch backend {
	case "", config.BackendJSON:
		path := c.String("file")
		if path == "" {
			path = e.cfg.RecordsPath(e.baseDir)
		}
		b = store.NewJSONFile(path)
	case config.BackendSQLite:
		database, err := db.Init(e.baseDir)
		if err != nil {
			return nil, errors.NewInternal(fmt.Errorf("failed to initialize database: %w", err))
		}
		e.closers = append(e.closers, database.Close)
		b = store.NewSQLite(database)
	default:
		return nil, errors.NewInvalidRequest(fmt.Sprintf("unknown backend %q (want json or sqlite)", backend))
	}

	e.store = store.New(b, store.WithLogger(e.logger), store.WithClock(e.now))
	return e.store, nil
}

func (e *env) close() {
	for _, fn := range e.closers {
		_ = fn()
	}
	e.closers = nil
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(e *env) *cli.App {
	flags := []cli.Flag{
		&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "Saved-password JSON file (json backend)"},
		&cli.StringFlag{Name: "backend", Usage: "Record storage: json|sqlite (default from config)"},
		&cli.BoolFlag{Name: "interactive", Aliases: []string{"i"}, Usage: "Run in interactive mode"},
		&cli.BoolFlag{Name: "list", Usage: "List saved passwords"},
		&cli.BoolFlag{Name: "clear", Usage: "Clear all saved passwords"},
	}

	app := &cli.App{
		Name:    "passgen",
		Usage:   "Generate passwords, rate their strength, and keep a local list",
		Version: Version,
		Flags:   append(flags, generateFlags(e.cfg)...),
		Action:  func(c *cli.Context) error { return rootAction(c, e) },
		Commands: []*cli.Command{
			generateCmd(e),
			scoreCmd(e),
			listCmd(e),
			clearCmd(e),
			interactiveCmd(e),
			exportCmd(e),
			importCmd(e),
			uiCmd(e),
			mcpCmd(e),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// generateFlags are shared by the root command and generate.
func generateFlags(cfg *config.Config) []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "length", Aliases: []string{"l"}, Value: cfg.DefaultLength, Usage: fmt.Sprintf("Password length (%d-%d)", cfg.MinLength, cfg.MaxLength)},
		&cli.BoolFlag{Name: "no-uppercase", Usage: "Exclude uppercase letters"},
		&cli.BoolFlag{Name: "no-lowercase", Usage: "Exclude lowercase letters"},
		&cli.BoolFlag{Name: "no-numbers", Usage: "Exclude numbers"},
		&cli.BoolFlag{Name: "no-symbols", Usage: "Exclude symbols"},
		&cli.BoolFlag{Name: "exclude-similar", Usage: "Exclude similar characters (l, 1, I, O, 0)"},
		&cli.BoolFlag{Name: "exclude-ambiguous", Usage: "Exclude ambiguous characters ({}, [], (), /, \\, |, `, ~)"},
		&cli.BoolFlag{Name: "save", Usage: "Save the generated password"},
		&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Description for the saved password"},
		&cli.BoolFlag{Name: "copy", Usage: "Copy the generated password to the clipboard"},
		&cli.BoolFlag{Name: "json", Usage: "Output JSON"},
	}
}

var generateFlagNames = []string{
	"length", "no-uppercase", "no-lowercase", "no-numbers", "no-symbols",
	"exclude-similar", "exclude-ambiguous", "save", "description", "copy", "json",
}

// rootAction mirrors the classic front-end: no options on a terminal means
// interactive mode, otherwise generate.
func rootAction(c *cli.Context, e *env) error {
	if c.NArg() > 0 {
		return cli.Exit(fmt.Sprintf("unknown command %q; run 'passgen --help' for usage", c.Args().First()), 1)
	}

	switch {
	case c.Bool("list"):
		return runList(c, e)
	case c.Bool("clear"):
		return runClear(c, e)
	case c.Bool("interactive"):
		return runInteractiveCmd(c, e)
	}

	for _, name := range generateFlagNames {
		if c.IsSet(name) {
			return runGenerate(c, e)
		}
	}
	if e.isTerminal() {
		return runInteractiveCmd(c, e)
	}
	return runGenerate(c, e)
}

func generateCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:   "generate",
		Usage:  "Generate a password",
		Flags:  generateFlags(e.cfg),
		Action: func(c *cli.Context) error { return runGenerate(c, e) },
	}
}

// generateOutput is the JSON shape of generate.
type generateOutput struct {
	Password string `json:"password"`
	Length   int    `json:"length"`
	strength.Report
	Saved  *record.Record `json:"saved,omitempty"`
	Copied bool           `json:"copied,omitempty"`
}

func runGenerate(c *cli.Context, e *env) error {
	length := c.Int("length")
	if err := checkLength(e.cfg, length); err != nil {
		return outputError(err)
	}

	opts := generator.Options{
		Length:           length,
		Uppercase:        !c.Bool("no-uppercase"),
		Lowercase:        !c.Bool("no-lowercase"),
		Numbers:          !c.Bool("no-numbers"),
		Symbols:          !c.Bool("no-symbols"),
		ExcludeSimilar:   c.Bool("exclude-similar"),
		ExcludeAmbiguous: c.Bool("exclude-ambiguous"),
	}

	pw, err := e.generate(opts)
	if err != nil {
		return outputError(err)
	}

	out := generateOutput{
		Password: pw,
		Length:   record.CountChars(pw),
		Report:   strength.Evaluate(pw),
	}

	if c.Bool("save") {
		s, err := e.openStore(c)
		if err != nil {
			return outputError(err)
		}
		rec, err := s.Append(pw, c.String("description"))
		if err != nil {
			return outputError(err)
		}
		out.Saved = &rec
	}

	if c.Bool("copy") {
		if err := e.copyToClipboard(pw); err != nil {
			e.logger.Warn("could not copy to clipboard", zap.Error(err))
		} else {
			out.Copied = true
		}
	}

	w := c.App.Writer
	if c.Bool("json") {
		return outputJSON(w, out)
	}

	printGenerated(w, pw, out.Report, out.Length)
	if out.Saved != nil {
		fmt.Fprintln(w, "Password saved successfully!")
	}
	if out.Copied {
		fmt.Fprintln(w, "Copied to clipboard.")
	}
	return nil
}

func scoreCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:      "score",
		Usage:     "Rate a password (argument or stdin)",
		ArgsUsage: "[password]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Output JSON"},
		},
		Action: func(c *cli.Context) error {
			var pw string
			switch {
			case c.NArg() > 0:
				pw = c.Args().First()
			case !e.isTerminal():
				data, err := io.ReadAll(c.App.Reader)
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				pw = strings.TrimRight(string(data), "\r\n")
			default:
				return outputError(errors.NewInvalidRequest("password must be given as an argument or piped via stdin"))
			}

			report := strength.Evaluate(pw)
			if c.Bool("json") {
				return outputJSON(c.App.Writer, report)
			}

			w := c.App.Writer
			fmt.Fprintf(w, "Strength: %s (Score: %d/%d)\n", report.Category, report.Score, strength.MaxScore)
			for _, hint := range report.Hints {
				fmt.Fprintf(w, "  - %s\n", hint)
			}
			return nil
		},
	}
}

func listCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List saved passwords",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Output JSON"},
		},
		Action: func(c *cli.Context) error { return runList(c, e) },
	}
}

func runList(c *cli.Context, e *env) error {
	s, err := e.openStore(c)
	if err != nil {
		return outputError(err)
	}

	records := s.Records()
	if c.Bool("json") {
		return outputJSON(c.App.Writer, map[string]any{
			"items": records,
			"count": len(records),
		})
	}
	printRecords(c.App.Writer, records)
	return nil
}

func clearCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:   "clear",
		Usage:  "Delete all saved passwords",
		Action: func(c *cli.Context) error { return runClear(c, e) },
	}
}

func runClear(c *cli.Context, e *env) error {
	s, err := e.openStore(c)
	if err != nil {
		return outputError(err)
	}
	if err := clearSaved(c.App.Writer, s); err != nil {
		return outputError(err)
	}
	return nil
}

func interactiveCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:   "interactive",
		Usage:  "Menu-driven generation, listing and clearing",
		Action: func(c *cli.Context) error { return runInteractiveCmd(c, e) },
	}
}

func runInteractiveCmd(c *cli.Context, e *env) error {
	s, err := e.openStore(c)
	if err != nil {
		return outputError(err)
	}
	sess := newSession(c.App.Reader, c.App.Writer, s, e.cfg, e.generate)
	if err := sess.run(); err != nil {
		return outputError(errors.NewInternal(err))
	}
	return nil
}

func exportCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export saved passwords to a JSONL file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Usage: "Output path (default <base>/exports/passwords-<time>.jsonl)"},
		},
		Action: func(c *cli.Context) error {
			s, err := e.openStore(c)
			if err != nil {
				return outputError(err)
			}

			now := e.now()
			path := c.String("path")
			if path == "" {
				path = store.DefaultExportPath(e.baseDir, now)
			}

			output, err := store.Export(s, path, now)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

func importCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Append saved passwords from a JSONL export",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Required: true, Usage: "Import file path"},
		},
		Action: func(c *cli.Context) error {
			s, err := e.openStore(c)
			if err != nil {
				return outputError(err)
			}

			output, err := store.Import(s, c.String("path"))
			if err != nil {
				return outputError(err)
			}
			if err := outputJSON(c.App.Writer, output); err != nil {
				return err
			}
			if len(output.Errors) > 0 {
				return outputError(errors.NewInvalidRequest(fmt.Sprintf("import rejected: %d invalid line(s)", len(output.Errors))))
			}
			return nil
		},
	}
}

func uiCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "ui",
		Usage: "Serve the web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: e.cfg.UIBind, Usage: "Bind address"},
			&cli.IntFlag{Name: "port", Value: e.cfg.UIPort, Usage: "Port"},
		},
		Action: func(c *cli.Context) error {
			port := c.Int("port")
			if port < 1 || port > 65535 {
				return outputError(errors.NewInvalidRequest("port must be between 1 and 65535"))
			}

			s, err := e.openStore(c)
			if err != nil {
				return outputError(err)
			}

			srv, err := web.NewServer(s, e.cfg, e.logger, Version, c.String("bind"), port)
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			if e.isTerminal() {
				fmt.Fprintf(c.App.ErrWriter, "passgen UI running at http://%s (Ctrl+C to stop)\n", srv.Addr)
			}
			if err := web.Run(srv, e.logger); err != nil {
				return outputError(errors.NewInternal(err))
			}
			return nil
		},
	}
}

func mcpCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve MCP tools over stdio",
		Action: func(c *cli.Context) error {
			s, err := e.openStore(c)
			if err != nil {
				return outputError(err)
			}
			if err := mcp.Run(s, e.cfg, e.logger, Version); err != nil {
				return outputError(errors.NewInternal(err))
			}
			return nil
		},
	}
}

// Helper functions

func checkLength(cfg *config.Config, n int) error {
	if n < cfg.MinLength || n > cfg.MaxLength {
		return errors.NewInvalidRequest(fmt.Sprintf("length must be between %d and %d", cfg.MinLength, cfg.MaxLength))
	}
	return nil
}

func printGenerated(w io.Writer, pw string, report strength.Report, length int) {
	fmt.Fprintf(w, "Generated Password: %s\n", pw)
	fmt.Fprintf(w, "Strength: %s (Score: %d/%d)\n", report.Category, report.Score, strength.MaxScore)
	fmt.Fprintf(w, "Length: %d\n", length)
}

func printRecords(w io.Writer, records []record.Record) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No saved passwords found.")
		return
	}

	fmt.Fprintln(w, "Saved Passwords:")
	fmt.Fprintln(w, strings.Repeat("=", 60))
	for i, r := range records {
		fmt.Fprintf(w, "%d. %s\n", i+1, r.Description)
		fmt.Fprintf(w, "   Password: %s\n", r.Password)
		fmt.Fprintf(w, "   Length: %d | Created: %s\n", r.Length, r.Timestamp)
		fmt.Fprintln(w, strings.Repeat("-", 60))
	}
}

// clearSaved empties s, skipping the rewrite when there is nothing to clear.
func clearSaved(w io.Writer, s *store.Store) error {
	if s.Len() == 0 {
		fmt.Fprintln(w, "No saved passwords to clear.")
		return nil
	}
	if err := s.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(w, "All saved passwords cleared!")
	return nil
}

// outputJSON writes v to w as indented JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	var pErr *errors.PassgenError
	if stderrors.As(err, &pErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", pErr.Code, pErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// errMessage returns the user-facing message of err.
func errMessage(err error) string {
	var pErr *errors.PassgenError
	if stderrors.As(err, &pErr) {
		return pErr.Message
	}
	return err.Error()
}
