// Command decide evaluates a stored conversation state offline: it prints the
// next decision, the termination verdict and the confidence analysis as JSON.
//
//	decide [-tables lookup.yaml] [state.json]
//
// The state is read from stdin when no file is given.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/JaimeStill/tariff/internal/confidence"
	"github.com/JaimeStill/tariff/internal/engine"
	"github.com/JaimeStill/tariff/internal/lookup"
	"github.com/JaimeStill/tariff/workflow"
)

type evaluation struct {
	Decision    workflow.Decision         `json:"decision"`
	Termination engine.Termination        `json:"termination"`
	Confidence  confidence.FactorAnalysis `json:"confidence"`
}

func main() {
	tablesPath := flag.String("tables", "", "Lookup tables YAML (defaults to the embedded tables)")
	flag.Parse()

	tables, err := loadTables(*tablesPath)
	if err != nil {
		log.Fatalf("failed to load lookup tables: %v", err)
	}

	state, err := readState(flag.Arg(0))
	if err != nil {
		log.Fatalf("failed to read state: %v", err)
	}

	calc := confidence.New(tables)
	eng := engine.New(tables, calc)

	out := evaluation{
		Decision:    eng.Decide(&state),
		Termination: eng.ShouldTerminate(&state),
		Confidence:  calc.Analyze(&state),
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatalf("failed to write result: %v", err)
	}
}

func loadTables(path string) (*lookup.Tables, error) {
	if path == "" {
		return lookup.Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return lookup.Load(data)
}

func readState(path string) (workflow.ConversationState, error) {
	var r io.Reader = os.Stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return workflow.ConversationState{}, err
		}
		defer f.Close()
		r = f
	}

	var s workflow.ConversationState
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return s, fmt.Errorf("decode state: %w", err)
	}
	return s, nil
}
