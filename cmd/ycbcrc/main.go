// Command ycbcrc lowers YCbCr texture samples in a textual IR module.
//
// Usage:
//
//	ycbcrc [options] <input.ir>
//
// Examples:
//
//	ycbcrc shader.ir                          # Parse and validate
//	ycbcrc -layout layout.yaml shader.ir      # Lower against a layout
//	ycbcrc -layout layout.toml -o out.ir in.ir
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/gogpu/ycbcr"
	"github.com/gogpu/ycbcr/conversion"
)

var (
	output     = flag.String("o", "", "output file (default: stdout)")
	layoutPath = flag.String("layout", "", "pipeline layout file (.yaml, .yml or .toml)")
	validate   = flag.Bool("validate", true, "validate IR before and after lowering")
	verbose    = flag.Bool("v", false, "log per-sample lowering decisions")
	noChroma   = flag.Bool("no-chroma-reconstruction", false, "sample subsampled planes at the original coordinate")
	version    = flag.Bool("version", false, "print version")
)

const ycbcrcVersion = "0.1.0-dev"

func main() {
	flag.Usage = usage
	flag.Parse()

	if *version {
		fmt.Printf("ycbcrc version %s\n", ycbcrcVersion)
		return
	}

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Error: no input file specified")
		usage()
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	ycbcr.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	inputPath := args[0]
	source, err := os.ReadFile(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(1)
	}

	var layout conversion.Layout
	if *layoutPath != "" {
		l, err := conversion.LoadLayout(*layoutPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading layout: %v\n", err)
			os.Exit(1)
		}
		layout = l
	}

	opts := ycbcr.DefaultOptions()
	opts.Validate = *validate
	opts.Lower.ChromaReconstruction = !*noChroma

	result, err := ycbcr.TransformWithOptions(string(source), layout, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Lowering error: %v\n", err)
		os.Exit(1)
	}

	if *output != "" {
		if err := os.WriteFile(*output, []byte(result), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			os.Exit(1)
		}
		return
	}
	if _, err := os.Stdout.WriteString(result); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: ycbcrc [options] <input.ir>\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  ycbcrc shader.ir                        Validate and print\n")
	fmt.Fprintf(os.Stderr, "  ycbcrc -layout layout.yaml shader.ir    Lower to stdout\n")
	fmt.Fprintf(os.Stderr, "  ycbcrc -v -layout l.toml -o out.ir in.ir\n")
}
