// Command talus evaluates a rock recipe script and writes the generated
// meshes as JSON and/or binary STL files.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/talus/pkg/kernel/sdfx"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "talus:", err)
		os.Exit(1)
	}
}

// run parses args, evaluates the recipe and writes the requested outputs.
func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("talus", flag.ContinueOnError)
	fs.SetOutput(stderr)
	recipePath := fs.String("recipe", "", "recipe script to evaluate (required)")
	outPath := fs.String("out", "", "write meshes as JSON to this file, - for stdout")
	stlDir := fs.String("stl", "", "write one binary STL file per mesh into this directory")
	verbose := fs.Bool("v", false, "log per-recipe statistics to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *recipePath == "" {
		fs.Usage()
		return errors.New("-recipe is required")
	}

	source, err := os.ReadFile(*recipePath)
	if err != nil {
		return err
	}

	app := NewApp()
	if *verbose {
		app.logger = log.New(stderr, "talus: ", 0)
	}
	result := app.Evaluate(string(source))

	for _, w := range result.Warnings {
		fmt.Fprintf(stderr, "%s: warning: %s\n", *recipePath, formatFinding(w))
	}
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			fmt.Fprintf(stderr, "%s: %s\n", *recipePath, formatFinding(e))
		}
		return fmt.Errorf("%d error(s) in %s", len(result.Errors), *recipePath)
	}

	if *outPath != "" {
		if err := writeJSON(*outPath, stdout, result.Meshes); err != nil {
			return err
		}
	}
	if *stlDir != "" {
		if err := writeSTL(*stlDir, result.Meshes); err != nil {
			return err
		}
	}
	return nil
}

// formatFinding renders an error or warning with whatever location it has.
func formatFinding(e EvalErrorData) string {
	switch {
	case e.Line > 0:
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	case e.Recipe != "":
		return fmt.Sprintf("rock %q: %s", e.Recipe, e.Message)
	default:
		return e.Message
	}
}

func writeJSON(path string, stdout io.Writer, meshes []MeshData) error {
	w := stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meshes); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func writeSTL(dir string, meshes []MeshData) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, m := range meshes {
		name := strings.ReplaceAll(m.PartName, string(filepath.Separator), "_")
		path := filepath.Join(dir, name+".stl")
		if err := sdfx.SaveSTL(path, m.kernelMesh()); err != nil {
			return err
		}
	}
	return nil
}
