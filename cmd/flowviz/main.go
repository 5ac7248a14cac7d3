// flowviz validates a flow document and renders diagram previews.
// Run: go run ./cmd/flowviz [flow.json] [out-dir]
// Without arguments it renders a built-in sample flow.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/webtrials/flowcanvas/pkg/canvas"
	"github.com/webtrials/flowcanvas/pkg/schema"
)

func main() {
	doc := sampleFlow()
	title := "Sample checkout flow"
	outDir := "out"

	if len(os.Args) > 1 {
		loaded, err := loadFlow(os.Args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "read flow: %v\n", err)
			os.Exit(1)
		}
		doc = loaded
		title = filepath.Base(os.Args[1])
	}
	if len(os.Args) > 2 {
		outDir = os.Args[2]
	}

	cv, err := canvas.New(canvas.LoadConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "create canvas: %v\n", err)
		os.Exit(1)
	}
	if err := cv.Hydrate(doc); err != nil {
		fmt.Fprintf(os.Stderr, "hydrate flow: %v\n", err)
		os.Exit(1)
	}

	report := cv.Validate()
	printReport(report)

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create out dir: %v\n", err)
		os.Exit(1)
	}

	mermaid := cv.Mermaid(title)
	mermaidPath := filepath.Join(outDir, "flow-mermaid.md")
	os.WriteFile(mermaidPath, []byte("```mermaid\n"+mermaid+"\n```\n"), 0o644)
	fmt.Println("=== Mermaid ===")
	fmt.Println(mermaid)

	png, imgErr := cv.PNG(title)
	if imgErr != nil {
		fmt.Fprintf(os.Stderr, "image error: %v\n", imgErr)
	} else {
		pngPath := filepath.Join(outDir, "flow.png")
		os.WriteFile(pngPath, png, 0o644)
		fmt.Printf("=== Image (PNG) ===\nWritten: %s (%d bytes)\n", pngPath, len(png))
	}
}

func loadFlow(path string) (*schema.GraphDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc schema.GraphDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func printReport(report *schema.ValidationReport) {
	if report.Valid() && len(report.Warnings) == 0 {
		fmt.Println("validation: clean")
		return
	}
	for _, issue := range report.Errors {
		fmt.Printf("error   [%s] %s\n", issue.Code, issue.Message)
	}
	for _, issue := range report.Warnings {
		fmt.Printf("warning [%s] %s\n", issue.Code, issue.Message)
	}
}

// sampleFlow is a small checkout test: navigate, act, wait, extract, assert.
func sampleFlow() *schema.GraphDocument {
	return &schema.GraphDocument{
		Nodes: []schema.StepNode{
			{ID: "open-shop", Kind: schema.StepKindNavigation, ActionVerb: "navigate",
				Label:  "Open shop",
				Config: map[string]any{"url": "https://shop.example/catalog"}},
			{ID: "add-item", Kind: schema.StepKindAction, ActionVerb: "click",
				Label:    "Add first item",
				Position: schema.Position{X: 300, Y: 0},
				Config:   map[string]any{"selector": ".product:first-child .add-to-cart"},
				Status:   schema.StepStatusPassed},
			{ID: "wait-cart", Kind: schema.StepKindWait, ActionVerb: "wait",
				Label:    "Wait for cart",
				Position: schema.Position{X: 600, Y: 0},
				Config:   map[string]any{"duration": "750ms"},
				Status:   schema.StepStatusRunning},
			{ID: "read-total", Kind: schema.StepKindData, ActionVerb: "extract",
				Label:    "Read cart total",
				Position: schema.Position{X: 900, Y: 0},
				Config:   map[string]any{"query": ".cart.total", "variable": "total"}},
			{ID: "check-total", Kind: schema.StepKindAssertion, ActionVerb: "assert",
				Label:    "Cart total positive",
				Position: schema.Position{X: 1200, Y: 0},
				Config: map[string]any{
					"selector":       ".cart-total",
					"expected_value": "${{steps.read-total.output.total}}",
				}},
		},
		Connections: []schema.Connection{
			{ID: "c1", SourceID: "open-shop", TargetID: "add-item"},
			{ID: "c2", SourceID: "add-item", TargetID: "wait-cart"},
			{ID: "c3", SourceID: "wait-cart", TargetID: "read-total"},
			{ID: "c4", SourceID: "read-total", TargetID: "check-total",
				Condition: `steps["read-total"].status == "passed"`},
		},
	}
}
