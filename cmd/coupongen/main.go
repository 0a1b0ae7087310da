// Command coupongen writes sample coupon registry files for local runs.
//
// A code is accepted when it appears in at least two files:
//
//	couponbase1.gz  VALIDONE1 VALIDTWO12 ALLTHREE1 ONLYONE111 SUMMER2024
//	couponbase2.gz  VALIDONE1 VALIDTWO12 ALLTHREE1 ONLYTWO222 WINTER2024
//	couponbase3.gz  WINTER2024 SUMMER2024 ALLTHREE1 ONLYTHREE3 SPRING2024
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"storefront/internal/coupon"
)

var sampleFiles = map[string][]string{
	"couponbase1.gz": {"VALIDONE1", "VALIDTWO12", "ALLTHREE1", "ONLYONE111", "SUMMER2024"},
	"couponbase2.gz": {"VALIDONE1", "VALIDTWO12", "ALLTHREE1", "ONLYTWO222", "WINTER2024"},
	"couponbase3.gz": {"WINTER2024", "SUMMER2024", "ALLTHREE1", "ONLYTHREE3", "SPRING2024"},
}

func main() {
	dir := flag.String("dir", "data/coupons", "directory to write registry files into")
	flag.Parse()

	if err := run(*dir); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	names := make([]string, 0, len(sampleFiles))
	for name := range sampleFiles {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := coupon.WriteCodeFile(path, sampleFiles[name]); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		fmt.Printf("Created %s with %d codes\n", path, len(sampleFiles[name]))
	}
	return nil
}
