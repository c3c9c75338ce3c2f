package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for REPL output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. *App implements
// it; tests use a stub.
type execIface interface {
	isLoggedIn() bool
	SignUp(ctx context.Context) error
	Verify(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Profile(ctx context.Context) error
	EditProfile(ctx context.Context) error
	Avatar(ctx context.Context, path string) error
	Status(ctx context.Context) error
}

// runREPL reads commands from reader until EOF, "exit" or "quit", or until
// ctx is done. Handler errors are reported by the handlers themselves.
//
//	Signed out: help, signup, verify, login, status, exit
//	Signed in:  help, profile [edit], avatar <file>, logout, status, exit
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("campushub %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: profile [edit], avatar <file>, logout, status, exit")
			} else {
				printlnFn("Available commands: signup, verify, login, status, exit")
			}

		case "signup":
			_ = a.SignUp(ctx)

		case "verify":
			_ = a.Verify(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "profile":
			if len(args) > 0 && args[0] == "edit" {
				_ = a.EditProfile(ctx)
			} else {
				_ = a.Profile(ctx)
			}

		case "avatar":
			if len(args) == 0 {
				printlnFn("Usage: avatar <file>")
				continue
			}
			_ = a.Avatar(ctx, args[0])

		case "status":
			_ = a.Status(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
