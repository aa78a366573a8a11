package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/madrasati/internal/client/services"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. The real App
// satisfies it; tests provide a lightweight stub.
type execIface interface {
	state() services.State

	Continue(ctx context.Context) error
	Login(ctx context.Context) error
	Biometric(ctx context.Context) error
	ToggleMode(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Enroll(ctx context.Context) error
	Unenroll(ctx context.Context) error
	Forget(ctx context.Context) error
	Language(ctx context.Context, args []string) error

	Children(ctx context.Context) error
	Students(ctx context.Context) error
	Payments(ctx context.Context, args []string) error
	Bus(ctx context.Context) error
	Document(ctx context.Context, args []string) error

	Notifications(ctx context.Context, args []string) error
	Read(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
}

var helpByState = map[services.State]string{
	services.StateOnboarding:      "Available commands: continue, lang [ar|fr], enroll, help, exit",
	services.StatePasswordLogin:   "Available commands: login, mode, enroll, unenroll, forget, lang [ar|fr], help, exit",
	services.StateBiometricPrompt: "Available commands: bio, mode, login, unenroll, forget, lang [ar|fr], help, exit",
	services.StateAuthenticated: "Available commands: whoami, children, students, payments [n], bus, doc <id> [path], " +
		"notifications [unread], read <id>|all, delete <id>, lang [ar|fr], enroll, unenroll, logout, help, exit",
}

// runREPL reads one command per line from reader and dispatches it to a.
//
// The prompt shows the current status (from statusFn). Which commands make
// sense depends on the login screen; "help" lists them. Handlers report
// their own failures, so returned errors are dropped here. The loop exits
// on EOF, on "exit"/"quit", or when ctx is done.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("madrasati %s> ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help", "?":
			printlnFn(helpByState[a.state()])

		case "continue":
			_ = a.Continue(ctx)
		case "login":
			_ = a.Login(ctx)
		case "bio":
			_ = a.Biometric(ctx)
		case "mode":
			_ = a.ToggleMode(ctx)
		case "logout":
			_ = a.Logout(ctx)
		case "whoami":
			_ = a.WhoAmI(ctx)
		case "enroll":
			_ = a.Enroll(ctx)
		case "unenroll":
			_ = a.Unenroll(ctx)
		case "forget":
			_ = a.Forget(ctx)
		case "lang":
			_ = a.Language(ctx, args)

		case "children", "home":
			_ = a.Children(ctx)
		case "students":
			_ = a.Students(ctx)
		case "payments", "p":
			_ = a.Payments(ctx, args)
		case "bus":
			_ = a.Bus(ctx)
		case "doc":
			_ = a.Document(ctx, args)

		case "notifications", "n":
			_ = a.Notifications(ctx, args)
		case "read":
			_ = a.Read(ctx, args)
		case "delete":
			_ = a.Delete(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
