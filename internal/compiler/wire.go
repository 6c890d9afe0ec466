package compiler

import (
	"encoding/json"
	"fmt"

	"github.com/jsl-lang/jsl/internal/value"
)

// wireInstr is one instruction's JSON projection: `[opname, operand...]`
// (§6 "a JSON array of instructions... opcode sentinels encoded as
// reserved strings"). Which operands follow the opcode name depends on Op;
// MarshalJSON/UnmarshalJSON below are the only places that need to know
// the per-opcode shape.
type wireInstr []json.RawMessage

// MarshalJSON projects a Program to its JPN wire form: a JSON array of
// per-instruction JSON arrays.
func (p *Program) MarshalJSON() ([]byte, error) {
	out := make([]json.RawMessage, len(p.Instructions))
	for i, instr := range p.Instructions {
		raw, err := marshalInstr(instr)
		if err != nil {
			return nil, err
		}
		out[i] = raw
	}
	return json.Marshal(out)
}

func marshalInstr(instr Instruction) (json.RawMessage, error) {
	enc := func(parts ...any) (json.RawMessage, error) {
		arr := make([]json.RawMessage, 0, len(parts)+1)
		name, err := json.Marshal(string(instr.Op))
		if err != nil {
			return nil, err
		}
		arr = append(arr, name)
		for _, p := range parts {
			pj, err := json.Marshal(p)
			if err != nil {
				return nil, err
			}
			arr = append(arr, pj)
		}
		return json.Marshal(arr)
	}

	switch instr.Op {
	case OpPushLit, OpPushLitString:
		return enc(instr.Lit)
	case OpPushVar, OpDef, OpBindLocal:
		return enc(instr.Name)
	case OpCall:
		return enc(instr.N, instr.Name)
	case OpApply, OpMakeDict, OpJump, OpJumpIfFalse, OpHostCall:
		return enc(instr.N)
	case OpPop, OpPushScope, OpPopScope, OpTryExit, OpRet, OpSwap:
		return enc()
	case OpTryEnter:
		return enc(instr.N)
	case OpMakeClosure:
		chunkJSON, err := json.Marshal(instr.Chunk)
		if err != nil {
			return nil, err
		}
		return enc(instr.Params, json.RawMessage(chunkJSON))
	case OpWhere:
		chunkJSON, err := json.Marshal(instr.Chunk)
		if err != nil {
			return nil, err
		}
		return enc(json.RawMessage(chunkJSON))
	case OpTransform:
		chunks := make([]json.RawMessage, len(instr.Chunks))
		for i, c := range instr.Chunks {
			cj, err := json.Marshal(c)
			if err != nil {
				return nil, err
			}
			chunks[i] = cj
		}
		return enc(chunks)
	default:
		return nil, fmt.Errorf("compiler: no wire encoding for opcode %q", instr.Op)
	}
}

// UnmarshalJSON parses a Program from its JPN wire form.
func (p *Program) UnmarshalJSON(data []byte) error {
	var raw []wireInstr
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	instrs := make([]Instruction, len(raw))
	for i, w := range raw {
		instr, err := unmarshalInstr(w)
		if err != nil {
			return err
		}
		instrs[i] = instr
	}
	p.Instructions = instrs
	return nil
}

func unmarshalInstr(w wireInstr) (Instruction, error) {
	if len(w) == 0 {
		return Instruction{}, fmt.Errorf("compiler: empty instruction")
	}
	var opName string
	if err := json.Unmarshal(w[0], &opName); err != nil {
		return Instruction{}, err
	}
	op := OpCode(opName)
	instr := Instruction{Op: op}

	operand := func(i int, dst any) error {
		if i >= len(w) {
			return fmt.Errorf("compiler: opcode %q missing operand %d", op, i)
		}
		return json.Unmarshal(w[i], dst)
	}

	switch op {
	case OpPushLit, OpPushLitString:
		var lit value.Value
		if err := operand(1, &lit); err != nil {
			return instr, err
		}
		instr.Lit = lit
	case OpPushVar, OpDef, OpBindLocal:
		if err := operand(1, &instr.Name); err != nil {
			return instr, err
		}
	case OpCall:
		if err := operand(1, &instr.N); err != nil {
			return instr, err
		}
		if err := operand(2, &instr.Name); err != nil {
			return instr, err
		}
	case OpApply, OpMakeDict, OpJump, OpJumpIfFalse, OpHostCall, OpTryEnter:
		if err := operand(1, &instr.N); err != nil {
			return instr, err
		}
	case OpPop, OpPushScope, OpPopScope, OpTryExit, OpRet, OpSwap:
		// no operands
	case OpMakeClosure:
		if err := operand(1, &instr.Params); err != nil {
			return instr, err
		}
		var chunk Program
		if err := operand(2, &chunk); err != nil {
			return instr, err
		}
		instr.Chunk = &chunk
	case OpWhere:
		var chunk Program
		if err := operand(1, &chunk); err != nil {
			return instr, err
		}
		instr.Chunk = &chunk
	case OpTransform:
		var rawChunks []json.RawMessage
		if err := operand(1, &rawChunks); err != nil {
			return instr, err
		}
		chunks := make([]*Program, len(rawChunks))
		for i, rc := range rawChunks {
			var c Program
			if err := json.Unmarshal(rc, &c); err != nil {
				return instr, err
			}
			chunks[i] = &c
		}
		instr.Chunks = chunks
	default:
		return instr, fmt.Errorf("compiler: unknown opcode %q on the wire", op)
	}
	return instr, nil
}
