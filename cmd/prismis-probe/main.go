// Command prismis-probe is a diagnostic CLI around the source validator:
// given a URL and a declared type, it runs the same probe the daemon's
// add_source path would run and prints the verdict, without touching
// the store. Useful for checking a candidate source before committing
// it to config.toml.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"prismis/internal/domain/entity"
	"prismis/internal/validate"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintf(os.Stderr, "usage: %s <url> <feed|forum|video|file>\n", os.Args[0])
		os.Exit(2)
	}
	rawURL := os.Args[1]
	typ := entity.SourceType(os.Args[2])

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	v := validate.New(&http.Client{})
	ok, reason, err := v.Validate(ctx, rawURL, typ)
	if err != nil {
		fmt.Fprintf(os.Stderr, "probe failed: %v\n", err)
		os.Exit(1)
	}
	if !ok {
		fmt.Printf("rejected: %s\n", reason)
		os.Exit(1)
	}
	fmt.Println("ok")
}
