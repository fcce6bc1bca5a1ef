// Copyright (c) 2026, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package internal

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// ChildEnv is the environment variable which makes a test binary act as
// a child program via [ChildMain].
const ChildEnv = "BEN_TEST_CHILD"

// TestMainSetup is used by the tests running Ben scripts, to ensure
// a reasonably clean and consistent environment.
func TestMainSetup() {
	// Set the locale to computer-friendly English and UTF-8.
	// Some systems like macOS miss C.UTF8, so fall back to the US English locale.
	if out, _ := exec.Command("locale", "-a").Output(); strings.Contains(
		strings.ToLower(string(out)), "c.utf",
	) {
		os.Setenv("LANGUAGE", "C.UTF-8")
		os.Setenv("LC_ALL", "C.UTF-8")
	} else {
		os.Setenv("LANGUAGE", "en_US.UTF-8")
		os.Setenv("LC_ALL", "en_US.UTF-8")
	}
	os.Unsetenv("BEN_CONFIG")
}

// ChildMain makes the current test binary act as a small child program when
// [ChildEnv] is set, exiting once done. Otherwise it returns immediately.
// It must be called from TestMain before running any tests.
//
// The child programs are:
//
//	interleave N    write "outI" to stdout and "errI" to stderr, N times
//	exit N          exit with status N
//	signal          kill itself with SIGKILL
//	invalid-utf8    write bytes which are not valid UTF-8
//	getenv NAME...  print "NAME=value" or "NAME unset" per name
//	args ARGS...    print each argument as a quoted Go string
//	cat             copy stdin to stdout
func ChildMain() {
	if os.Getenv(ChildEnv) == "" {
		return
	}
	os.Exit(child(os.Args[1:]))
}

func child(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: child PROGRAM [ARGS...]")
		return 2
	}
	switch args[0] {
	case "interleave":
		n, _ := strconv.Atoi(args[1])
		for i := range n {
			// stdout and stderr are unbuffered files, so every write
			// reaches the pipe in order
			fmt.Fprintf(os.Stdout, "out%d\n", i)
			fmt.Fprintf(os.Stderr, "err%d\n", i)
		}
	case "exit":
		n, _ := strconv.Atoi(args[1])
		return n
	case "signal":
		killSelf()
		return 2
	case "invalid-utf8":
		os.Stdout.Write([]byte{'a', 0xff, 0xfe, '\n'})
	case "getenv":
		for _, name := range args[1:] {
			if value, ok := os.LookupEnv(name); ok {
				fmt.Printf("%s=%s\n", name, value)
			} else {
				fmt.Printf("%s unset\n", name)
			}
		}
	case "args":
		for _, arg := range args[1:] {
			fmt.Println(strconv.Quote(arg))
		}
	case "cat":
		io.Copy(os.Stdout, os.Stdin)
	default:
		fmt.Fprintf(os.Stderr, "unknown child program %q\n", args[0])
		return 2
	}
	return 0
}
