package compiler

// ---------------------------------------------------------------------------
// Parser: recursive descent over the instruction stream
// ---------------------------------------------------------------------------

// Parser builds a syntax tree from a TokenSource in a single left-to-right
// pass. Recursion depth equals loop nesting depth.
type Parser struct {
	src *TokenSource
}

// NewParser creates a parser over the given token source.
func NewParser(src *TokenSource) *Parser {
	return &Parser{src: src}
}

// Parse is a convenience wrapper: it parses a complete instruction stream
// into its top-level Block.
func Parse(code []byte) (*Block, error) {
	return NewParser(NewTokenSource(code)).ParseProgram()
}

// ParseProgram consumes the whole stream and returns the top-level Block.
func (p *Parser) ParseProgram() (*Block, error) {
	return p.parseBlock()
}

// parseBlock collects nodes until the stream ends or a ']' is seen. Both end
// a block the same way: an unmatched '[' is accepted silently (its loop body
// simply runs to end of stream), and a stray ']' terminates the current block
// as a no-op. Tests pin this behavior down; see DESIGN.md for the decision.
func (p *Parser) parseBlock() (*Block, error) {
	block := &Block{}

	for p.src.HasNext() {
		tok, off := p.src.Next()

		switch tok {
		case ByteIncrement:
			block.Nodes = append(block.Nodes, &Instruction{Op: OpIncrement, Offset: off})
		case ByteDecrement:
			block.Nodes = append(block.Nodes, &Instruction{Op: OpDecrement, Offset: off})
		case ByteMoveRight:
			block.Nodes = append(block.Nodes, &Instruction{Op: OpMoveRight, Offset: off})
		case ByteMoveLeft:
			block.Nodes = append(block.Nodes, &Instruction{Op: OpMoveLeft, Offset: off})
		case BytePrint:
			block.Nodes = append(block.Nodes, &Instruction{Op: OpPrint, Offset: off})
		case ByteRead:
			block.Nodes = append(block.Nodes, &Instruction{Op: OpRead, Offset: off})
		case ByteLoopOpen:
			body, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			block.Nodes = append(block.Nodes, &Loop{Body: body})
		case ByteLoopClose:
			return block, nil
		default:
			return nil, &SyntaxError{Byte: tok, Offset: off}
		}
	}

	return block, nil
}
