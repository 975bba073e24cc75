package main

import (
	"context"
	"log"

	"github.com/chazu/talus/pkg/engine"
	"github.com/chazu/talus/pkg/generate"
	"github.com/chazu/talus/pkg/kernel"
	"github.com/chazu/talus/pkg/kernel/sdfx"
	"github.com/chazu/talus/pkg/recipe"
)

// colorPalette is a default palette used to assign distinct colors to rocks.
var colorPalette = []string{
	"#8C7B6B", "#A39171", "#6E6A64", "#B5A58F",
	"#7D6E5A", "#9A8F84", "#5F5850", "#C2B39A",
}

// App ties the recipe engine to mesh generation.
type App struct {
	engine *engine.Engine
	kernel kernel.Kernel
	logger *log.Logger // per-recipe statistics; nil is silent
}

// MeshData is the JSON-serializable mesh format written by the CLI.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
	Color    string    `json:"color"`
}

// EvalErrorData is a JSON-serializable evaluation or validation finding.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
	Recipe  string `json:"recipe,omitempty"`
}

// EvalResult is the full result of evaluating one script.
type EvalResult struct {
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

// NewApp creates a new App with an engine and the sdfx kernel.
func NewApp() *App {
	return &App{
		engine: engine.NewEngine(),
		kernel: sdfx.New(),
	}
}

// Evaluate takes recipe source and returns mesh data + errors.
func (a *App) Evaluate(source string) EvalResult {
	return a.EvaluateContext(context.Background(), source)
}

// EvaluateContext is Evaluate with a context that bounds both script
// evaluation and mesh generation.
func (a *App) EvaluateContext(ctx context.Context, source string) EvalResult {
	result := EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	// Step 1: Evaluate the Lisp source into a recipe book.
	book, evalErrs, err := a.engine.Evaluate(ctx, source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		log.Printf("Evaluate fatal error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}

	// Step 2: Convert eval errors to the result format.
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	// Step 3: Validate the book. Warnings are reported but do not block.
	blocking, advisory := recipe.Split(recipe.Validate(book))
	for _, w := range advisory {
		result.Warnings = append(result.Warnings, EvalErrorData{Message: w.Message, Recipe: w.Recipe})
	}
	if len(blocking) > 0 {
		for _, e := range blocking {
			result.Errors = append(result.Errors, EvalErrorData{Message: e.Message, Recipe: e.Recipe})
		}
		return result
	}

	// Step 4: Generate one mesh per recipe.
	meshes, err := generate.Generate(ctx, book, a.kernel, generate.Options{Logger: a.logger})
	if err != nil {
		log.Printf("Generate error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{
			Message: "generation failed: " + err.Error(),
		})
		return result
	}

	// Step 5: Convert kernel meshes to the MeshData format.
	for i, m := range meshes {
		result.Meshes = append(result.Meshes, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			PartName: m.PartName,
			Color:    colorPalette[i%len(colorPalette)],
		})
	}

	return result
}

// kernelMesh converts d back into the kernel exchange format.
func (d MeshData) kernelMesh() *kernel.Mesh {
	return &kernel.Mesh{
		Vertices: d.Vertices,
		Normals:  d.Normals,
		Indices:  d.Indices,
		PartName: d.PartName,
	}
}
