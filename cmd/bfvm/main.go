// bfvm - run tape machine programs
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/4atj/bfvm/compiler"
	"github.com/4atj/bfvm/history"
	"github.com/4atj/bfvm/manifest"
	"github.com/4atj/bfvm/server"
	"github.com/4atj/bfvm/vm"
)

func main() {
	tapeLen := flag.Int("tape", 0, "Tape length in cells (0 = default 65536)")
	cycles := flag.Uint64("cycles", 0, "Cycle budget (0 = default 16777216)")
	expr := flag.String("e", "", "Run the given program text instead of a file")
	inPath := flag.String("in", "", "File supplying input bytes (reads yield 0 once it runs out)")
	imageOut := flag.String("image", "", "Write the final tape image to this path")
	resumePath := flag.String("resume", "", "Start from a saved tape image")
	record := flag.Bool("history", false, "Record the run in the project history database")
	lspMode := flag.Bool("lsp", false, "Start the language server on stdio")
	noManifest := flag.Bool("no-manifest", false, "Skip bfvm.toml discovery")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: bfvm [options] [program-file]\n\n")
		fmt.Fprintf(os.Stderr, "Runs a tape machine program, writing its output to stdout.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  bfvm prog.bf                    # Run prog.bf\n")
		fmt.Fprintf(os.Stderr, "  bfvm -e '++[>+<-]>.'            # Run inline program text\n")
		fmt.Fprintf(os.Stderr, "  bfvm -in data.bin prog.bf       # Feed input bytes from data.bin\n")
		fmt.Fprintf(os.Stderr, "  bfvm -cycles 100000 prog.bf     # Cap the run at 100000 executions\n")
		fmt.Fprintf(os.Stderr, "  bfvm -image out.image prog.bf   # Save the final tape state\n")
		fmt.Fprintf(os.Stderr, "  bfvm -resume out.image -e '.'   # Continue from a saved tape\n")
		fmt.Fprintf(os.Stderr, "  bfvm -lsp                       # Start the language server\n")
	}
	flag.Parse()

	if *lspMode {
		if err := server.NewLSP().Run(); err != nil {
			fmt.Fprintf(os.Stderr, "bfvm: language server: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Manifest supplies defaults for anything not set on the command line.
	var proj *manifest.Manifest
	if !*noManifest {
		m, err := manifest.FindAndLoad(".")
		if err != nil {
			fmt.Fprintf(os.Stderr, "bfvm: manifest: %v\n", err)
			os.Exit(1)
		}
		proj = m
	}
	if proj != nil {
		if *tapeLen == 0 {
			*tapeLen = proj.Tape.Length
		}
		if *cycles == 0 {
			*cycles = proj.Run.CycleLimit
		}
		if *inPath == "" {
			*inPath = proj.InputPath()
		}
		if *imageOut == "" {
			*imageOut = proj.ImageOutputPath()
		}
		if proj.History.Enabled {
			*record = true
		}
	}

	source, err := loadSource(*expr, flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "bfvm: %v\n", err)
		os.Exit(1)
	}

	out := &countingWriter{w: os.Stdout}
	opts := []vm.Option{
		vm.WithTapeLength(*tapeLen),
		vm.WithCycleLimit(*cycles),
		vm.WithOutput(out),
	}

	if *inPath != "" {
		in, err := os.Open(*inPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "bfvm: opening input: %v\n", err)
			os.Exit(1)
		}
		defer in.Close()
		opts = append(opts, vm.WithInput(in))
	}

	if *resumePath != "" {
		img, err := vm.ReadImageFile(*resumePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "bfvm: %v\n", err)
			os.Exit(1)
		}
		opts = append(opts, vm.WithImage(img))
	}

	started := time.Now()
	res, runErr := vm.New(opts...).Run(source)
	finished := time.Now()

	if *record {
		if err := recordRun(proj, source, res, runErr, out.n, started, finished); err != nil {
			fmt.Fprintf(os.Stderr, "bfvm: history: %v\n", err)
		}
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "bfvm: %v\n", runErr)
		os.Exit(1)
	}

	if *imageOut != "" {
		if err := vm.WriteImageFile(*imageOut, res.Image); err != nil {
			fmt.Fprintf(os.Stderr, "bfvm: %v\n", err)
			os.Exit(1)
		}
	}
}

// loadSource picks the program text: -e wins, otherwise the file argument.
// A single trailing newline is trimmed from file sources; the language itself
// recognizes no whitespace.
func loadSource(expr string, args []string) ([]byte, error) {
	if expr != "" {
		if len(args) > 0 {
			return nil, errors.New("both -e and a program file were given")
		}
		return []byte(expr), nil
	}

	if len(args) != 1 {
		return nil, errors.New("exactly one program file (or -e) is required")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("reading program: %w", err)
	}

	text := strings.TrimSuffix(string(data), "\n")
	text = strings.TrimSuffix(text, "\r")
	return []byte(text), nil
}

// countingWriter counts bytes written so the run record can report them.
type countingWriter struct {
	w io.Writer
	n int
}

func (w *countingWriter) Write(p []byte) (int, error) {
	n, err := w.w.Write(p)
	w.n += n
	return n, err
}

func recordRun(proj *manifest.Manifest, source []byte, res *vm.Result, runErr error, outputBytes int, started, finished time.Time) error {
	path := ".bfvm/history.db"
	if proj != nil {
		path = proj.HistoryPath()
	}

	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	run := &history.Run{
		Program:     string(source),
		Status:      history.StatusOK,
		OutputBytes: outputBytes,
		StartedAt:   started,
		FinishedAt:  finished,
	}
	if res != nil {
		run.CyclesUsed = res.CyclesUsed
	}

	var synErr *compiler.SyntaxError
	var limitErr *vm.CycleLimitError
	switch {
	case errors.As(runErr, &synErr):
		run.Status = history.StatusSyntaxError
		run.Error = runErr.Error()
	case errors.As(runErr, &limitErr):
		run.Status = history.StatusCycleLimit
		run.Error = runErr.Error()
	case runErr != nil:
		run.Status = history.StatusError
		run.Error = runErr.Error()
	}

	_, err = store.Record(run)
	return err
}
