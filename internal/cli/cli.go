// Package cli implements registryctl, the offline maintenance tool that works
// directly against the registry workbook.
package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/isoilaj/caregiver-registry/internal/auth"
	"github.com/isoilaj/caregiver-registry/internal/backup"
	"github.com/isoilaj/caregiver-registry/internal/config"
	"github.com/isoilaj/caregiver-registry/internal/export"
	"github.com/isoilaj/caregiver-registry/internal/infrastructure/workbook"
	"github.com/isoilaj/caregiver-registry/internal/interface/presenter"
	"github.com/isoilaj/caregiver-registry/internal/registry"
	"github.com/isoilaj/caregiver-registry/internal/usecase"
)

const (
	ExitSuccess           = 0
	ExitIssuesFound       = 1
	ExitInvalidInvocation = 2
	ExitConfigError       = 3
	ExitInternalError     = 4
)

const operator = "registryctl"

const usage = `usage: registryctl [-workbook path] <command> [flags]

commands:
  check            report data-quality issues (exit 1 when any are found)
  migrate-phones   copy caregiver phone numbers onto children without one
  dedupe           merge duplicate caregivers and children
  backup           copy the workbook into the backup directory
  export           write a table as csv, json or xlsx
  import           upsert rows from a csv or xlsx file
  hash-password    print a bcrypt hash for OPERATOR_PASSWORD_HASH`

// InvocationError is returned for bad arguments and carries the exit code.
type InvocationError struct {
	ExitCode int
	Message  string
}

func (e *InvocationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func invalidInvocationf(format string, args ...any) error {
	return &InvocationError{ExitCode: ExitInvalidInvocation, Message: fmt.Sprintf(format, args...)}
}

// ExitCode maps an error returned by a command onto a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var invErr *InvocationError
	if errors.As(err, &invErr) {
		return invErr.ExitCode
	}
	return ExitInternalError
}

type env struct {
	cfg    config.Config
	stdout io.Writer
	now    func() time.Time
}

func (e *env) manager() *registry.Manager {
	logger := log.New(io.Discard, "", 0)
	return registry.NewManager(workbook.NewStore(e.cfg.WorkbookPath),
		registry.WithLogger(logger),
		registry.WithClock(e.now),
	)
}

func (e *env) maintenance() *usecase.MaintenanceService {
	return usecase.NewMaintenanceService(e.manager(), nil, log.New(io.Discard, "", 0))
}

type command func(ctx context.Context, e *env, args []string) (int, error)

var commands = map[string]command{
	"check":          runCheck,
	"migrate-phones": runMigratePhones,
	"dedupe":         runDedupe,
	"backup":         runBackup,
	"export":         runExport,
	"import":         runImport,
	"hash-password":  runHashPassword,
}

// Run executes registryctl with args (excluding argv[0]) and returns the exit
// code. Paths default to the server configuration.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return ExitConfigError
	}
	return run(ctx, &env{cfg: cfg, stdout: stdout, now: time.Now}, args, stderr)
}

func run(ctx context.Context, e *env, args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("registryctl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&e.cfg.WorkbookPath, "workbook", e.cfg.WorkbookPath, "registry workbook")
	fs.StringVar(&e.cfg.BackupDir, "backups", e.cfg.BackupDir, "backup directory")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(stderr, err)
		fmt.Fprintln(stderr, usage)
		return ExitInvalidInvocation
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, usage)
		return ExitInvalidInvocation
	}

	name := fs.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n%s\n", name, usage)
		return ExitInvalidInvocation
	}
	code, err := cmd(ctx, e, fs.Args()[1:])
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", name, err)
		return ExitCode(err)
	}
	return code
}

func parse(name string, fs *flag.FlagSet, args []string) error {
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		return invalidInvocationf("%v", err)
	}
	if fs.NArg() > 0 {
		return invalidInvocationf("%s: unexpected argument %q", name, fs.Arg(0))
	}
	return nil
}

func runCheck(ctx context.Context, e *env, args []string) (int, error) {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	asJSON := fs.Bool("json", false, "print issues as JSON")
	if err := parse("check", fs, args); err != nil {
		return 0, err
	}

	issues, err := e.maintenance().Check(ctx)
	if err != nil {
		return 0, err
	}
	if *asJSON {
		enc := json.NewEncoder(e.stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(issues); err != nil {
			return 0, err
		}
	} else {
		for _, is := range issues {
			fmt.Fprintf(e.stdout, "%s\t%s\t%s\n", is.Table, is.Kind, is.Message)
		}
		fmt.Fprintf(e.stdout, "%d issue(s)\n", len(issues))
	}
	if len(issues) > 0 {
		return ExitIssuesFound, nil
	}
	return ExitSuccess, nil
}

func runMigratePhones(ctx context.Context, e *env, args []string) (int, error) {
	fs := flag.NewFlagSet("migrate-phones", flag.ContinueOnError)
	if err := parse("migrate-phones", fs, args); err != nil {
		return 0, err
	}
	n, err := e.maintenance().MigratePhones(ctx, operator)
	if err != nil {
		return 0, err
	}
	fmt.Fprintf(e.stdout, "updated %d child record(s)\n", n)
	return ExitSuccess, nil
}

func runDedupe(ctx context.Context, e *env, args []string) (int, error) {
	fs := flag.NewFlagSet("dedupe", flag.ContinueOnError)
	if err := parse("dedupe", fs, args); err != nil {
		return 0, err
	}
	res, err := e.maintenance().Deduplicate(ctx, operator)
	if err != nil {
		return 0, err
	}
	fmt.Fprintf(e.stdout, "merged %d caregiver(s) and %d child record(s)\n", res.Caregivers, res.Children)
	return ExitSuccess, nil
}

func runBackup(ctx context.Context, e *env, args []string) (int, error) {
	fs := flag.NewFlagSet("backup", flag.ContinueOnError)
	list := fs.Bool("list", false, "list existing backups instead of creating one")
	if err := parse("backup", fs, args); err != nil {
		return 0, err
	}

	svc := backup.NewService(e.cfg.WorkbookPath, e.cfg.BackupDir, e.now)
	if *list {
		all, err := svc.List()
		if err != nil {
			return 0, err
		}
		for _, b := range all {
			fmt.Fprintf(e.stdout, "%s\t%d\t%s\n", b.Name, b.Size, b.CreatedAt.Format(time.RFC3339))
		}
		return ExitSuccess, nil
	}
	b, err := svc.Create(ctx)
	if err != nil {
		return 0, err
	}
	fmt.Fprintln(e.stdout, b.Path)
	return ExitSuccess, nil
}

func runExport(ctx context.Context, e *env, args []string) (int, error) {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	table := fs.String("table", registry.TableCaregivers, "caregivers or children")
	format := fs.String("format", export.FormatCSV, "csv, json or xlsx")
	out := fs.String("out", "", "output file (stdout when empty)")
	if err := parse("export", fs, args); err != nil {
		return 0, err
	}

	svc := export.NewService(e.manager(), presenter.NewRegistryPresenter(e.now), nil, nil)
	file, err := svc.Export(ctx, *table, *format, export.Filter{})
	if errors.Is(err, export.ErrUnknownTable) || errors.Is(err, export.ErrUnknownFormat) {
		return 0, invalidInvocationf("%v", err)
	}
	if err != nil {
		return 0, err
	}
	if *out == "" {
		_, err = e.stdout.Write(file.Body)
		return ExitSuccess, err
	}
	if err := workbook.WriteFileAtomic(*out, bytes.NewReader(file.Body), 0o644); err != nil {
		return 0, err
	}
	fmt.Fprintf(e.stdout, "wrote %s\n", *out)
	return ExitSuccess, nil
}

func runImport(ctx context.Context, e *env, args []string) (int, error) {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	path := fs.String("file", "", "csv or xlsx file to import")
	sheet := fs.String("sheet", "", "sheet to read from an xlsx file")
	if err := parse("import", fs, args); err != nil {
		return 0, err
	}
	if *path == "" {
		return 0, invalidInvocationf("import: -file is required")
	}

	f, err := os.Open(*path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	svc := export.NewService(e.manager(), presenter.NewRegistryPresenter(e.now), nil, nil)
	res, err := svc.Import(ctx, operator, *path, f, *sheet)
	if errors.Is(err, export.ErrUnknownLayout) || errors.Is(err, export.ErrEmptyFile) ||
		errors.Is(err, workbook.ErrUnsupportedFile) {
		return 0, invalidInvocationf("%v", err)
	}
	if err != nil {
		return 0, err
	}
	fmt.Fprintf(e.stdout, "%s: created %d, updated %d, skipped %d\n", res.Table, res.Created, res.Updated, res.Skipped)
	for _, w := range res.Warnings {
		fmt.Fprintf(e.stdout, "  %s\n", w)
	}
	return ExitSuccess, nil
}

func runHashPassword(_ context.Context, e *env, args []string) (int, error) {
	fs := flag.NewFlagSet("hash-password", flag.ContinueOnError)
	password := fs.String("password", "", "plain-text password")
	if err := parse("hash-password", fs, args); err != nil {
		return 0, err
	}
	if *password == "" {
		return 0, invalidInvocationf("hash-password: -password is required")
	}
	hash, err := auth.HashPassword(*password)
	if err != nil {
		return 0, err
	}
	fmt.Fprintln(e.stdout, hash)
	return ExitSuccess, nil
}
