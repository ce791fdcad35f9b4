package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"owlistic-notes/notes/database"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		var openErr *database.StoreOpenError
		if errors.As(err, &openErr) {
			fmt.Fprintf(os.Stderr, "Cannot open notes store at %s: %v\n", openErr.Path, openErr.Err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// run executes one CLI invocation. The session is flushed and closed on
// every path, including failed commands.
func run(args []string, out io.Writer) error {
	a := &app{}
	defer a.shutdown()

	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(out)
	return root.Execute()
}
