package main

import (
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/letser/plotplay/pkg/game"
)

func main() {
	verbose := flag.Bool("v", false, "list every file checked, not just failures")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [-v] <game.yaml | directory> ...\n", os.Args[0])
		os.Exit(1)
	}

	files, err := collectFiles(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "No game files found")
		os.Exit(1)
	}

	failed := 0
	for _, path := range files {
		if err := validateFile(path); err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "FAIL %s\n%v\n", path, err)
			continue
		}
		if *verbose {
			fmt.Printf("ok   %s\n", path)
		}
	}

	if failed > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d game files failed validation\n", failed, len(files))
		os.Exit(1)
	}
	fmt.Printf("Validated %d game files, all valid\n", len(files))
}

// collectFiles expands directory arguments into the YAML files they
// contain. Plain file arguments pass through untouched so a misnamed
// file still gets a proper validation error.
func collectFiles(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}

		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && isYAML(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

func isYAML(path string) bool {
	ext := filepath.Ext(path)
	return ext == ".yaml" || ext == ".yml"
}

func validateFile(path string) error {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if !isYAML(path) {
		return fmt.Errorf("game file must have a .yaml or .yml extension: %s", base)
	}

	name := strings.TrimSuffix(base, ext)
	if !game.ValidID(name) {
		return fmt.Errorf("game filename %q must be lowercase snake_case (e.g. seaside_holiday.yaml)", base)
	}

	g, err := game.LoadFile(path)
	if err != nil {
		return err
	}

	if g.ID != name {
		return fmt.Errorf("game id %q does not match filename %q", g.ID, base)
	}
	return nil
}
