package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"spelling-bee/internal/console"
)

func main() {
	server := pflag.String("server", "http://127.0.0.1:8080", "spelling bee service base URL")
	timeout := pflag.Duration("timeout", 5*time.Second, "HTTP timeout")
	pflag.Parse()

	err := console.Run(context.Background(), os.Stdin, os.Stdout, console.Config{
		ServerURL:   *server,
		HTTPTimeout: *timeout,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
