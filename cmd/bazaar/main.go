package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/jrsteele09/localchef-bazaar/cli"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) (code int) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Recovered from panic: %v\n", r)
			debug.PrintStack()
			code = 1
		}
	}()
	return cli.Execute(args, os.Stdout, os.Stderr)
}
