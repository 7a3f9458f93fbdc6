package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Extra154/spectra-data-server/internal/server/admin"
)

func main() {
	if err := admin.Execute(context.Background(), os.Stdout, os.Args[1:], 5*time.Minute); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
