package server

import (
	"strings"
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// ---------------------------------------------------------------------------
// Diagnostics
// ---------------------------------------------------------------------------

func TestDiagnoseCleanProgram(t *testing.T) {
	if diags := diagnose("+[>+<-]."); len(diags) != 0 {
		t.Errorf("diagnose() = %d diagnostics, want 0", len(diags))
	}
}

func TestDiagnoseToleratesTrailingNewline(t *testing.T) {
	if diags := diagnose("+[-]\n"); len(diags) != 0 {
		t.Errorf("diagnose() = %d diagnostics, want 0", len(diags))
	}
}

func TestDiagnoseUnrecognizedByte(t *testing.T) {
	diags := diagnose("++#")
	if len(diags) != 1 {
		t.Fatalf("diagnose() = %d diagnostics, want 1", len(diags))
	}

	d := diags[0]
	if *d.Severity != protocol.DiagnosticSeverityError {
		t.Errorf("Severity = %v, want Error", *d.Severity)
	}
	if d.Range.Start.Character != 2 || d.Range.Start.Line != 0 {
		t.Errorf("Start = %+v, want line 0 char 2", d.Range.Start)
	}
	if !strings.Contains(d.Message, "0x23") {
		t.Errorf("Message = %q, want mention of 0x23", d.Message)
	}
}

func TestDiagnoseSecondLinePosition(t *testing.T) {
	diags := diagnose("++\n+x")
	// The mid-text newline is itself unrecognized, plus the 'x'.
	if len(diags) != 2 {
		t.Fatalf("diagnose() = %d diagnostics, want 2", len(diags))
	}

	last := diags[1]
	if last.Range.Start.Line != 1 || last.Range.Start.Character != 1 {
		t.Errorf("Start = %+v, want line 1 char 1", last.Range.Start)
	}
}

func TestDiagnoseStrayCloseBracket(t *testing.T) {
	diags := diagnose("+]")
	if len(diags) != 1 {
		t.Fatalf("diagnose() = %d diagnostics, want 1", len(diags))
	}
	if *diags[0].Severity != protocol.DiagnosticSeverityWarning {
		t.Errorf("Severity = %v, want Warning", *diags[0].Severity)
	}
	if diags[0].Range.Start.Character != 1 {
		t.Errorf("Start.Character = %d, want 1", diags[0].Range.Start.Character)
	}
}

func TestDiagnoseUnmatchedOpenBracket(t *testing.T) {
	diags := diagnose("[[+]")
	if len(diags) != 1 {
		t.Fatalf("diagnose() = %d diagnostics, want 1", len(diags))
	}
	if *diags[0].Severity != protocol.DiagnosticSeverityWarning {
		t.Errorf("Severity = %v, want Warning", *diags[0].Severity)
	}
	// The unmatched bracket is the outer one at offset 0.
	if diags[0].Range.Start.Character != 0 {
		t.Errorf("Start.Character = %d, want 0", diags[0].Range.Start.Character)
	}
}

func TestDiagnoseBalancedBracketsNoWarning(t *testing.T) {
	if diags := diagnose("[[]][]"); len(diags) != 0 {
		t.Errorf("diagnose() = %d diagnostics, want 0", len(diags))
	}
}

// ---------------------------------------------------------------------------
// Hover
// ---------------------------------------------------------------------------

func TestByteAtPosition(t *testing.T) {
	text := "+-\n[]"

	b, ok := byteAt(text, protocol.Position{Line: 0, Character: 1})
	if !ok || b != '-' {
		t.Errorf("byteAt(0,1) = %q,%v, want '-',true", b, ok)
	}

	b, ok = byteAt(text, protocol.Position{Line: 1, Character: 0})
	if !ok || b != '[' {
		t.Errorf("byteAt(1,0) = %q,%v, want '[',true", b, ok)
	}

	if _, ok := byteAt(text, protocol.Position{Line: 0, Character: 2}); ok {
		t.Error("byteAt past end of line reported a byte")
	}
	if _, ok := byteAt(text, protocol.Position{Line: 5, Character: 0}); ok {
		t.Error("byteAt past last line reported a byte")
	}
}

func TestInstructionDocsCoverAllBytes(t *testing.T) {
	for _, b := range []byte("+-><.,[]") {
		if _, ok := instructionDocs[b]; !ok {
			t.Errorf("no hover doc for %q", b)
		}
	}
}
