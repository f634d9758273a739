package vm

import (
	"io"

	"github.com/4atj/bfvm/compiler"
)

// ---------------------------------------------------------------------------
// VM: one-call facade over parser, context and interpreter
// ---------------------------------------------------------------------------

// VM bundles run configuration. One VM can run many programs; each run gets
// a fresh Context, so no state leaks between runs.
type VM struct {
	cfg config
}

type config struct {
	tapeLength int
	cycleLimit uint64
	input      io.Reader
	output     io.Writer
	tapeData   []byte
	image      *TapeImage
}

// Option configures a VM.
type Option func(*config)

// WithTapeLength sets the fixed tape length. Zero or negative selects the
// default of 65,536 cells.
func WithTapeLength(n int) Option {
	return func(c *config) { c.tapeLength = n }
}

// WithCycleLimit sets the cycle budget. Zero selects the default of
// 16,777,216 node executions.
func WithCycleLimit(n uint64) Option {
	return func(c *config) { c.cycleLimit = n }
}

// WithInput sets the byte source consumed by Read instructions. Without one,
// every read yields 0.
func WithInput(r io.Reader) Option {
	return func(c *config) { c.input = r }
}

// WithOutput sets the byte sink written by Print instructions. Each byte is
// flushed as it is written.
func WithOutput(w io.Writer) Option {
	return func(c *config) { c.output = w }
}

// WithTapeData preloads the front of the tape before execution starts.
func WithTapeData(data []byte) Option {
	return func(c *config) { c.tapeData = data }
}

// WithImage starts runs from a saved tape image: tape length, cell contents
// and pointer position are restored from it. The cycle budget is not; every
// run starts with a full budget. Overrides WithTapeLength and WithTapeData.
func WithImage(img *TapeImage) Option {
	return func(c *config) { c.image = img }
}

// New creates a VM with the given options.
func New(opts ...Option) *VM {
	v := &VM{}
	for _, opt := range opts {
		opt(&v.cfg)
	}
	return v
}

// Result describes a finished run. On an aborted run the Result still
// reflects the state at the point of the abort.
type Result struct {
	CyclesUsed uint64
	Pointer    int
	Image      *TapeImage
}

// Run parses source and executes it. A *compiler.SyntaxError precludes any
// execution; a *CycleLimitError means the run was cut off with its
// already-flushed output intact. In both cases the error comes back alongside
// whatever Result state exists (nil for parse failures).
func (v *VM) Run(source []byte) (*Result, error) {
	program, err := compiler.Parse(source)
	if err != nil {
		return nil, err
	}
	return v.RunProgram(program)
}

// RunProgram executes an already-parsed program against a fresh context.
func (v *VM) RunProgram(program *compiler.Block) (*Result, error) {
	ctx := v.newContext()
	err := NewInterpreter(ctx).Run(program)

	res := &Result{
		CyclesUsed: ctx.CyclesUsed(),
		Pointer:    ctx.Pointer(),
		Image:      ctx.Snapshot(),
	}
	return res, err
}

func (v *VM) newContext() *Context {
	cfg := v.cfg

	tapeLength := cfg.tapeLength
	if cfg.image != nil {
		tapeLength = cfg.image.TapeLength
	}

	ctx := NewContext(tapeLength, cfg.cycleLimit, cfg.input, cfg.output)

	switch {
	case cfg.image != nil:
		ctx.Preload(cfg.image.Cells)
		ctx.SetPointer(cfg.image.Pointer)
	case cfg.tapeData != nil:
		ctx.Preload(cfg.tapeData)
	}

	return ctx
}
