package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/MANGOpali/attendance-backend/internal/client"
	"github.com/MANGOpali/attendance-backend/internal/models"
)

func newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func (a *app) lang() client.Lang { return a.api.Session().Lang() }

func (a *app) fail(msg client.Message, err error) error {
	return errors.New(client.Failure(a.lang(), msg, err))
}

func (a *app) say(msg client.Message, suffix ...any) {
	fmt.Fprintln(a.out, client.T(a.lang(), msg)+fmt.Sprint(suffix...))
}

func (a *app) requireRole(msg client.Message, roles ...models.Role) error {
	if !a.api.Session().SignedIn() {
		return errors.New(client.T(a.lang(), client.MsgLoginRequired))
	}
	if !a.api.Session().HasRole(roles...) {
		return errors.New(client.T(a.lang(), msg))
	}
	return nil
}

func table(w io.Writer, header []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	writeRow := func(cells []string) {
		for i, cell := range cells {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, cell)
		}
		fmt.Fprintln(tw)
	}
	writeRow(header)
	for _, row := range rows {
		writeRow(row)
	}
	return tw.Flush()
}

func runLogin(ctx context.Context, a *app, args []string) error {
	fs := newFlags("login")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	result, err := a.api.Login(ctx, *email, *password)
	if err != nil {
		return a.fail(client.MsgError, err)
	}
	a.say(client.MsgSignedInAs, result.User.Name, " (", result.User.Role, ")")
	return nil
}

func runLogout(_ context.Context, a *app, _ []string) error {
	if err := a.api.Logout(); err != nil {
		return err
	}
	a.say(client.MsgSignedOut)
	return nil
}

func runWhoami(ctx context.Context, a *app, args []string) error {
	fs := newFlags("whoami")
	remote := fs.Bool("remote", false, "ask the server instead of the local session")
	if err := fs.Parse(args); err != nil {
		return err
	}
	user := a.api.Session().User()
	if *remote {
		me, err := a.api.Me(ctx)
		if err != nil {
			return a.fail(client.MsgError, err)
		}
		user = &me
	}
	if user == nil {
		a.say(client.MsgNotSignedIn)
		return nil
	}
	a.say(client.MsgSignedInAs, fmt.Sprintf("%s <%s> (%s)", user.Name, user.Email, user.Role))
	return nil
}

func runRegister(ctx context.Context, a *app, args []string) error {
	fs := newFlags("register")
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "password, at least 6 characters")
	role := fs.String("role", string(models.RoleEmployee), "Admin, Manager or Employee")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := a.api.Register(ctx, *name, *email, *password, models.Role(*role))
	if err != nil {
		return a.fail(client.MsgError, err)
	}
	a.say(client.MsgRegistered, fmt.Sprintf("%s (#%d)", *email, id))
	return nil
}

func runEmployees(ctx context.Context, a *app, _ []string) error {
	employees, err := a.api.Employees(ctx)
	if err != nil {
		return a.fail(client.MsgError, err)
	}
	rows := make([][]string, 0, len(employees))
	for _, e := range employees {
		linked := "-"
		if e.LinkedUserID != nil {
			linked = strconv.FormatUint(uint64(*e.LinkedUserID), 10)
		}
		rows = append(rows, []string{strconv.FormatUint(uint64(e.ID), 10), e.Name, linked})
	}
	if err := table(a.out, []string{"ID", "NAME", "LINKED USER"}, rows); err != nil {
		return err
	}
	a.say(client.MsgTotal, len(employees))
	return nil
}

func runAddEmployee(ctx context.Context, a *app, args []string) error {
	fs := newFlags("add-employee")
	name := fs.String("name", "", "employee name")
	linked := fs.Uint("linked-user-id", 0, "user account to link")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.requireRole(client.MsgOnlyAdminAdd, models.RoleAdmin); err != nil {
		return err
	}
	var linkedUserID *uint
	if *linked > 0 {
		linkedUserID = linked
	}
	id, err := a.api.AddEmployee(ctx, *name, linkedUserID)
	if err != nil {
		return a.fail(client.MsgAddFailed, err)
	}
	a.say(client.MsgEmployeeAdded, fmt.Sprintf(" (#%d)", id))
	return nil
}

func runLink(ctx context.Context, a *app, args []string) error {
	fs := newFlags("link")
	employee := fs.Uint("employee", 0, "employee id")
	email := fs.String("email", "", "existing user's email")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.requireRole(client.MsgOnlyAdminLink, models.RoleAdmin); err != nil {
		return err
	}
	if _, err := a.api.LinkEmployee(ctx, *employee, *email); err != nil {
		return a.fail(client.MsgLinkFailed, err)
	}
	a.say(client.MsgLinked)
	return nil
}

func runDeleteEmployee(ctx context.Context, a *app, args []string) error {
	fs := newFlags("delete-employee")
	employee := fs.Uint("employee", 0, "employee id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.api.DeleteEmployee(ctx, *employee); err != nil {
		return a.fail(client.MsgError, err)
	}
	a.say(client.MsgEmployeeDeleted, fmt.Sprintf(" (#%d)", *employee))
	return nil
}

func runMark(ctx context.Context, a *app, args []string) error {
	fs := newFlags("mark")
	employee := fs.Uint("employee", 0, "employee id; defaults to your linked employee")
	date := fs.String("date", "", "business-calendar date YYYY-MM-DD")
	clock := fs.String("time", "", "clock reading such as \"10:05 AM\"; defaults to now")
	status := fs.String("status", "", "Present or Late; derived from the time when empty")
	if err := fs.Parse(args); err != nil {
		return err
	}
	session := a.api.Session()
	if !session.SignedIn() {
		return errors.New(client.T(a.lang(), client.MsgLoginRequired))
	}

	employeeID := *employee
	if employeeID == 0 {
		own, err := a.ownEmployee(ctx)
		if err != nil {
			return a.fail(client.MsgMarkFailed, err)
		}
		employeeID = own
	}
	at := a.now()
	if *clock != "" {
		reading, err := client.ReadingOn(*clock, at)
		if err != nil {
			return a.fail(client.MsgMarkFailed, err)
		}
		at = reading
	}

	req := client.NewMarkRequest(employeeID, *date, at)
	req.Status = *status
	id, err := a.api.MarkAttendance(ctx, req)
	if err != nil {
		return a.fail(client.MsgMarkFailed, err)
	}
	a.say(client.MsgMarked, fmt.Sprintf(" (#%d, %s)", id, req.TimeDisplay))
	return nil
}

func (a *app) ownEmployee(ctx context.Context) (uint, error) {
	user := a.api.Session().User()
	employees, err := a.api.Employees(ctx)
	if err != nil {
		return 0, err
	}
	for _, e := range employees {
		if user != nil && e.LinkedTo(user.ID) {
			return e.ID, nil
		}
	}
	return 0, errors.New("no employee linked to this account; pass -employee")
}

func runList(ctx context.Context, a *app, args []string) error {
	fs := newFlags("list")
	date := fs.String("date", "", "business-calendar date YYYY-MM-DD")
	if err := fs.Parse(args); err != nil {
		return err
	}
	records, err := a.api.Attendance(ctx, *date)
	if err != nil {
		return a.fail(client.MsgError, err)
	}
	employees, err := a.api.Employees(ctx)
	if err != nil {
		return a.fail(client.MsgError, err)
	}
	names := make(map[uint]string, len(employees))
	for _, e := range employees {
		names[e.ID] = e.Name
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		name, ok := names[r.EmployeeID]
		if !ok {
			name = strconv.FormatUint(uint64(r.EmployeeID), 10)
		}
		marker := "System"
		if r.MarkedBy != nil {
			marker = "ID " + strconv.FormatUint(uint64(*r.MarkedBy), 10)
		}
		rows = append(rows, []string{name, r.DateBS, r.TimeDisplay, string(r.Status), marker})
	}
	return table(a.out, []string{"NAME", "DATE (BS)", "TIME", "STATUS", "MARKED BY"}, rows)
}

func runSummary(ctx context.Context, a *app, args []string) error {
	fs := newFlags("summary")
	date := fs.String("date", "", "business-calendar date YYYY-MM-DD")
	if err := fs.Parse(args); err != nil {
		return err
	}
	s, err := a.api.Summary(ctx, *date)
	if err != nil {
		return a.fail(client.MsgError, err)
	}
	return table(a.out, []string{"DATE (BS)", "EMPLOYEES", "PRESENT", "LATE", "ABSENT"}, [][]string{{
		s.DateBS,
		strconv.FormatInt(s.Employees, 10),
		strconv.FormatInt(s.Present, 10),
		strconv.FormatInt(s.Late, 10),
		strconv.FormatInt(s.Absent, 10),
	}})
}

func runExport(ctx context.Context, a *app, args []string) error {
	fs := newFlags("export")
	date := fs.String("date", "", "business-calendar date YYYY-MM-DD; all dates when empty")
	format := fs.String("format", "csv", "csv or xlsx")
	out := fs.String("out", "", "output file; defaults to the server-suggested name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.requireRole(client.MsgOnlySupervisors, models.RoleAdmin, models.RoleManager); err != nil {
		return err
	}
	filename, body, err := a.api.Export(ctx, *date, *format)
	if err != nil {
		return a.fail(client.MsgExportFailed, err)
	}
	if *out != "" {
		filename = *out
	}
	if err := os.WriteFile(filename, body, 0o644); err != nil {
		return a.fail(client.MsgExportFailed, err)
	}
	a.say(client.MsgExported, filename)
	return nil
}

func runAudit(ctx context.Context, a *app, args []string) error {
	fs := newFlags("audit")
	limit := fs.Int("limit", 100, "entries to show, newest first")
	if err := fs.Parse(args); err != nil {
		return err
	}
	logs, err := a.api.AuditLog(ctx, *limit)
	if err != nil {
		return a.fail(client.MsgError, err)
	}
	rows := make([][]string, 0, len(logs))
	for _, l := range logs {
		actor := "-"
		if l.UserID != nil {
			actor = strconv.FormatUint(uint64(*l.UserID), 10)
		}
		rows = append(rows, []string{
			strconv.FormatUint(uint64(l.ID), 10),
			l.Timestamp.Local().Format(time.DateTime),
			l.Action,
			actor,
			string(l.Details),
		})
	}
	return table(a.out, []string{"ID", "TIME", "ACTION", "USER", "DETAILS"}, rows)
}

func runResetPassword(ctx context.Context, a *app, args []string) error {
	fs := newFlags("reset-password")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "new password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.api.ResetPassword(ctx, *email, *password); err != nil {
		return a.fail(client.MsgError, err)
	}
	a.say(client.MsgPasswordReset)
	return nil
}

func runLang(_ context.Context, a *app, args []string) error {
	next := a.lang().Toggle()
	if len(args) > 0 {
		lang, ok := client.ParseLang(args[0])
		if !ok {
			return fmt.Errorf("unknown language %q (en, ne)", args[0])
		}
		next = lang
	}
	if err := a.api.Session().SetLang(next); err != nil {
		return err
	}
	a.say(client.MsgLanguageSwitched)
	return nil
}
