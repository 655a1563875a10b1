// Command hashcode prints the bcrypt hash to set as OVERRIDE_CODE_HASH.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/playperu/proxima/internal/answers"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("hashcode", flag.ContinueOnError)
	code := fs.String("code", "", "override code to hash (read from stdin when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	c := strings.TrimSpace(*code)
	if c == "" {
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("reading code: %w", err)
		}
		c = strings.TrimSpace(line)
	}
	if c == "" {
		return errors.New("override code must not be empty")
	}

	hash, err := answers.HashCode(c)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, hash)
	return err
}
