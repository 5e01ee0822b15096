// Command client is the interactive pub/sub client. It reads commands
// from standard input and prints received deliveries to standard
// output; parse errors go to standard error.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/komurugov/publish-subscribe-assignment/internal/clientcore"
)

func main() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	c := clientcore.New(logger, func(topic, data string) {
		fmt.Printf("[Message] Topic: %s Data: %s\n", topic, data)
	})

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		cmd, err := clientcore.ParseCommand(line)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}

		if err := c.Dispatch(cmd); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}

	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
		fmt.Fprintln(os.Stderr, err)
	}

	// End of stdin is a graceful client shutdown.
	c.Disconnect()
}
