package main

// #region imports
import (
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/blockquest/go-engine/internal/block"
)

// #endregion imports

// #region main

func main() {
	programPath := flag.String("program", "", "path to block program JSON")
	name := flag.String("name", "program", "graph name")
	out := flag.String("out", "", "output DOT file (default: stdout)")
	flag.Parse()

	if *programPath == "" {
		fmt.Fprintln(os.Stderr, "usage: blockviz --program path/to/program.json [--name graph] [--out program.dot]")
		os.Exit(2)
	}

	seq, err := block.LoadSequenceFile(*programPath, block.NewRegistry(), block.DefaultRules())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	dot, err := block.ToDOT(seq, *name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *out == "" {
		fmt.Print(dot)
		return
	}
	if err := os.WriteFile(*out, []byte(dot), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main
