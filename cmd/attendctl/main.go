// Command attendctl is a terminal client for the attendance API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/MANGOpali/attendance-backend/internal/client"
)

type app struct {
	api *client.Client
	out io.Writer
	now func() time.Time
}

type command struct {
	usage string
	run   func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"login":           {"login -email E -password P", runLogin},
	"logout":          {"logout", runLogout},
	"whoami":          {"whoami [-remote]", runWhoami},
	"register":        {"register -name N -email E -password P [-role Employee]", runRegister},
	"employees":       {"employees", runEmployees},
	"add-employee":    {"add-employee -name N [-linked-user-id ID]", runAddEmployee},
	"link":            {"link -employee ID -email E", runLink},
	"delete-employee": {"delete-employee -employee ID", runDeleteEmployee},
	"mark":            {"mark -date YYYY-MM-DD [-employee ID] [-time \"10:05 AM\"] [-status Present|Late]", runMark},
	"list":            {"list [-date YYYY-MM-DD]", runList},
	"summary":         {"summary -date YYYY-MM-DD", runSummary},
	"export":          {"export [-date YYYY-MM-DD] [-format csv|xlsx] [-out FILE]", runExport},
	"audit":           {"audit [-limit 100]", runAudit},
	"reset-password":  {"reset-password -email E -password P", runResetPassword},
	"lang":            {"lang [en|ne]", runLang},
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("attendctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	server := fs.String("server", envOr("ATTENDCTL_SERVER", "http://localhost:3000"), "API base URL")
	sessionFile := fs.String("session", envOr("ATTENDCTL_SESSION", defaultSessionPath()), "session file")
	fs.Usage = func() { usage(fs, stderr) }
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}
	name, rest := fs.Arg(0), fs.Args()[1:]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n", name)
		fs.Usage()
		return 2
	}

	session, err := client.NewSession(client.NewFileStorage(*sessionFile))
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	api := client.New(*server, session, client.WithReloginPrompt(func() {
		fmt.Fprintln(stderr, client.T(session.Lang(), client.MsgSessionExpired))
	}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	err = cmd.run(ctx, &app{api: api, out: stdout, now: time.Now}, rest)
	// the process exits next; show a pending re-login prompt first
	api.FlushReloginPrompt()
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 2
		}
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func usage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "usage: attendctl [-server URL] [-session FILE] <command> [flags]")
	fmt.Fprintln(w, "\ncommands:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s\n", commands[name].usage)
	}
	fmt.Fprintln(w, "\nglobal flags:")
	fs.PrintDefaults()
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".attendctl-session.json"
	}
	return filepath.Join(dir, "attendctl", "session.json")
}
