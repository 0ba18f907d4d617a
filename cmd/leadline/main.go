package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

func main() {
	code := runMain(Execute, os.Stderr)
	if code != 0 {
		os.Exit(code)
	}
}

func runMain(execute func() error, stderr io.Writer) int {
	if err := execute(); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(stderr, "canceled")
			return 130
		}
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}
