package main

import (
	"flag"
	"fmt"
	"os"

	"fireetl/internal/clean"
)

// main strips embedded thousands-separator commas from numeric CSV fields,
// writing a cleaned copy that generic tooling can ingest.
func main() {
	var input, output string
	flag.StringVar(&input, "input", "", "raw CSV path")
	flag.StringVar(&output, "output", "", "cleaned CSV path")
	flag.Parse()

	if input == "" || output == "" {
		fmt.Fprintln(os.Stderr, "usage: cleancsv -input raw.csv -output cleaned.csv")
		os.Exit(1)
	}

	if err := clean.CleanFile(input, output); err != nil {
		fmt.Fprintf(os.Stderr, "cleancsv: %v\n", err)
		os.Exit(1)
	}
}
