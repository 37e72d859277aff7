package ir

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/wippyai/scriptc/errors"
)

// Parse reads a graph in the text form produced by Format. Block labels must
// be dense (BB0..BBn-1, in any order); branches may refer to blocks defined
// later in the text. The edge list is rebuilt from the terminators.
func Parse(r io.Reader) (*Graph, error) {
	p := &parser{
		blocks: make(map[int]*parsedBlock),
		entry:  0,
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		p.line++
		if err := p.parseLine(sc.Text()); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.ParseFailed(p.line, "read input", err)
	}
	return p.build()
}

// ParseString reads a graph from its text form.
func ParseString(s string) (*Graph, error) {
	return Parse(strings.NewReader(s))
}

// ParseFile reads a graph from a file in text form.
func ParseFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.ParseFailed(0, "open "+path, err)
	}
	defer f.Close()
	return Parse(f)
}

// MustParse is like ParseString but panics on error. Intended for tests and
// fixed inputs.
func MustParse(s string) *Graph {
	g, err := ParseString(s)
	if err != nil {
		panic(err)
	}
	return g
}

type parsedBlock struct {
	instrs []Instruction
	line   int
}

type pendingTarget struct {
	target *BranchTarget
	label  int
	line   int
}

type parser struct {
	blocks  map[int]*parsedBlock
	current *parsedBlock
	pending []pendingTarget
	phiRefs []pendingTarget
	line    int
	entry   int
}

func (p *parser) fail(format string, args ...any) error {
	return errors.New(errors.PhaseParse, errors.KindInvalidInput).
		Line(p.line).
		Detail(format, args...).
		Build()
}

func (p *parser) parseLine(text string) error {
	toks, lexErr := lexLine(text)
	if lexErr != "" {
		return p.fail("%s", lexErr)
	}
	if len(toks) == 0 {
		return nil
	}

	if toks[0].is(tokIdent, "entry") && len(toks) == 2 {
		label, ok := blockLabel(toks[1])
		if !ok {
			return p.fail("entry expects a block label, got %q", toks[1].text)
		}
		p.entry = label
		return nil
	}

	if len(toks) == 2 && toks[1].is(tokPunct, ":") {
		if label, ok := blockLabel(toks[0]); ok {
			if _, dup := p.blocks[label]; dup {
				return p.fail("block %s defined twice", toks[0].text)
			}
			p.current = &parsedBlock{line: p.line}
			p.blocks[label] = p.current
			return nil
		}
	}

	if p.current == nil {
		return p.fail("instruction outside of a block")
	}

	instr, err := p.parseInstr(&tokenStream{toks: toks})
	if err != nil {
		return err
	}
	return p.appendInstr(instr)
}

func (p *parser) appendInstr(instr Instruction) error {
	instrs := p.current.instrs
	if n := len(instrs); n > 0 && IsTerminator(instrs[n-1]) {
		return p.fail("instruction %q after terminator", instr.String())
	}
	if instr.Kind() == KindPhiAssignment {
		for _, prev := range instrs {
			if prev.Kind() != KindPhiAssignment {
				return p.fail("phi %q after non-phi instruction", instr.String())
			}
		}
	}
	p.current.instrs = append(instrs, instr)
	return nil
}

func (p *parser) parseInstr(ts *tokenStream) (Instruction, error) {
	first := ts.next()
	switch {
	case first.is(tokDirective, ".loc"):
		n, err := ts.number()
		if err != nil {
			return nil, p.fail("%s", err.Error())
		}
		return &DebugLocation{Line: int(n)}, ts.end(p)

	case first.is(tokIdent, "br"):
		t, err := p.target(ts)
		if err != nil {
			return nil, err
		}
		return &Branch{Target: t}, ts.end(p)

	case first.is(tokIdent, "if"):
		cond, err := p.operand(ts)
		if err != nil {
			return nil, err
		}
		if err := p.expect(ts, ":", "br"); err != nil {
			return nil, err
		}
		then, err := p.target(ts)
		if err != nil {
			return nil, err
		}
		if err := p.expect(ts, ";", "else", ":", "br"); err != nil {
			return nil, err
		}
		els, err := p.target(ts)
		if err != nil {
			return nil, err
		}
		return &ConditionalBranch{Cond: cond, Then: then, Else: els}, ts.end(p)

	case first.is(tokIdent, "call"):
		return p.call(ts, NameValue{})
	}

	target, ok := nameOf(first)
	if !ok {
		return nil, p.fail("expected instruction, got %q", first.text)
	}
	if !ts.next().is(tokPunct, "=") {
		return nil, p.fail("expected '=' after %s", target)
	}
	return p.rhs(ts, target)
}

func (p *parser) rhs(ts *tokenStream, target NameValue) (Instruction, error) {
	head := ts.peek()
	rest := ts.remaining()

	if head.is(tokIdent, "phi") {
		ts.next()
		return p.phi(ts, target)
	}
	if head.is(tokIdent, "call") {
		ts.next()
		return p.call(ts, target)
	}
	if head.kind == tokIdent && !head.escaped && head.version == Unversioned && rest > 1 {
		if op, ok := LookupUnaryOp(head.text); ok && rest == 2 {
			ts.next()
			operand, err := p.operand(ts)
			if err != nil {
				return nil, err
			}
			return &UnaryAssignment{Target: target, Op: op, Operand: operand}, ts.end(p)
		}
		if op, ok := LookupBinaryOp(head.text); ok {
			ts.next()
			left, err := p.operand(ts)
			if err != nil {
				return nil, err
			}
			if err := p.expect(ts, ","); err != nil {
				return nil, err
			}
			right, err := p.operand(ts)
			if err != nil {
				return nil, err
			}
			return &BinaryAssignment{Target: target, Op: op, Left: left, Right: right}, ts.end(p)
		}
		return nil, p.fail("unknown operator %q", head.text)
	}

	value, err := p.operand(ts)
	if err != nil {
		return nil, err
	}
	return &Assignment{Target: target, Value: value}, ts.end(p)
}

func (p *parser) phi(ts *tokenStream, target NameValue) (Instruction, error) {
	instr := NewPhi(target)
	for !ts.done() {
		if len(instr.Phi.Values) > 0 {
			if err := p.expect(ts, ","); err != nil {
				return nil, err
			}
		}
		if err := p.expect(ts, "["); err != nil {
			return nil, err
		}
		lt := ts.next()
		label, ok := blockLabel(lt)
		if !ok {
			return nil, p.fail("expected block label in phi, got %q", lt.text)
		}
		if err := p.expect(ts, ":"); err != nil {
			return nil, err
		}
		nt := ts.next()
		name, ok := nameOf(nt)
		if !ok {
			return nil, p.fail("phi values must be names, got %q", nt.text)
		}
		if err := p.expect(ts, "]"); err != nil {
			return nil, err
		}
		instr.Phi.Values = append(instr.Phi.Values, PhiValue{Block: BlockID(label), Value: name})
		p.phiRefs = append(p.phiRefs, pendingTarget{label: label, line: p.line})
	}
	return instr, nil
}

func (p *parser) call(ts *tokenStream, target NameValue) (Instruction, error) {
	callee, err := p.operand(ts)
	if err != nil {
		return nil, err
	}
	if err := p.expect(ts, "("); err != nil {
		return nil, err
	}
	instr := &FunctionAssignment{Target: target, Callee: callee}
	for !ts.peek().is(tokPunct, ")") {
		if ts.done() {
			return nil, p.fail("unterminated argument list")
		}
		if len(instr.Args) > 0 {
			if err := p.expect(ts, ","); err != nil {
				return nil, err
			}
		}
		arg, err := p.operand(ts)
		if err != nil {
			return nil, err
		}
		instr.Args = append(instr.Args, arg)
	}
	ts.next()
	return instr, ts.end(p)
}

func (p *parser) operand(ts *tokenStream) (Operand, error) {
	t := ts.next()
	switch t.kind {
	case tokNumber:
		return NumberConst(t.num), nil
	case tokString:
		return StringConst(t.text), nil
	case tokBuiltin:
		b, ok := LookupBuiltin(t.text)
		if !ok {
			return nil, p.fail("unknown builtin @%s", t.text)
		}
		return b, nil
	case tokIdent:
		if t.version == Unversioned && !t.escaped {
			switch t.text {
			case "nil":
				return Nil, nil
			case "true":
				return True, nil
			case "false":
				return False, nil
			}
		}
	}
	if n, ok := nameOf(t); ok {
		return n, nil
	}
	if t.kind == 0 {
		return nil, p.fail("missing operand")
	}
	return nil, p.fail("expected operand, got %q", t.text)
}

func (p *parser) target(ts *tokenStream) (*BranchTarget, error) {
	t := ts.next()
	label, ok := blockLabel(t)
	if !ok {
		return nil, p.fail("expected block label, got %q", t.text)
	}
	target := NewTarget()
	p.pending = append(p.pending, pendingTarget{target: target, label: label, line: p.line})
	return target, nil
}

func (p *parser) expect(ts *tokenStream, texts ...string) error {
	for _, text := range texts {
		t := ts.next()
		if !(t.kind == tokPunct || t.kind == tokIdent) || t.text != text || t.escaped {
			return p.fail("expected %q, got %q", text, t.text)
		}
	}
	return nil
}

func (p *parser) build() (*Graph, error) {
	n := len(p.blocks)
	for i := 0; i < n; i++ {
		if _, ok := p.blocks[i]; !ok {
			return nil, p.fail("block labels are not dense: BB%d missing", i)
		}
	}
	if n == 0 {
		return nil, p.fail("no blocks")
	}
	if p.entry < 0 || p.entry >= n {
		return nil, p.fail("entry BB%d is not defined", p.entry)
	}

	for _, pt := range p.pending {
		if pt.label >= n {
			return nil, errors.ParseFailed(pt.line, "branch to undefined block BB"+strconv.Itoa(pt.label), nil)
		}
		if err := pt.target.SetBlock(BlockID(pt.label)); err != nil {
			return nil, errors.ParseFailed(pt.line, "bind branch target", err)
		}
	}
	for _, ref := range p.phiRefs {
		if ref.label >= n {
			return nil, errors.ParseFailed(ref.line, "phi refers to undefined block BB"+strconv.Itoa(ref.label), nil)
		}
	}

	g := NewGraph()
	g.Entry = BlockID(p.entry)
	for i := 0; i < n; i++ {
		b := g.AddBlock()
		b.Instrs = p.blocks[i].instrs
	}
	for _, b := range g.Blocks {
		if t := b.Terminator(); t != nil {
			for _, target := range t.Targets() {
				g.AddEdge(b.ID, target.Block())
			}
		}
	}
	return g, nil
}

func blockLabel(t token) (int, bool) {
	if t.kind != tokIdent || t.escaped || t.version != Unversioned || !strings.HasPrefix(t.text, "BB") || len(t.text) == 2 {
		return 0, false
	}
	n, err := strconv.Atoi(t.text[2:])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func nameOf(t token) (NameValue, bool) {
	switch t.kind {
	case tokIdent:
		return NameValue{Name: t.text, Version: t.version}, true
	case tokTemp:
		return NameValue{Name: TempName, Version: t.version}, true
	}
	return NameValue{}, false
}

type tokenStream struct {
	toks []token
	pos  int
}

func (ts *tokenStream) next() token {
	if ts.pos >= len(ts.toks) {
		ts.pos++
		return token{}
	}
	t := ts.toks[ts.pos]
	ts.pos++
	return t
}

func (ts *tokenStream) peek() token {
	if ts.pos >= len(ts.toks) {
		return token{}
	}
	return ts.toks[ts.pos]
}

func (ts *tokenStream) done() bool {
	return ts.pos >= len(ts.toks)
}

func (ts *tokenStream) remaining() int {
	return len(ts.toks) - ts.pos
}

func (ts *tokenStream) number() (float64, error) {
	t := ts.next()
	if t.kind != tokNumber {
		return 0, errors.InvalidInput(errors.PhaseParse, "expected number, got "+strconv.Quote(t.text))
	}
	return t.num, nil
}

func (ts *tokenStream) end(p *parser) error {
	if !ts.done() {
		return p.fail("unexpected %q at end of instruction", ts.peek().text)
	}
	return nil
}
