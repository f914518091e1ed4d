package runtime

import (
	"github.com/tetratelabs/wazero/api"
)

// stubFunc is one host import to satisfy with a do-nothing function that
// returns zero values.
type stubFunc struct {
	name    string
	params  []api.ValueType
	results []api.ValueType
}

// stubMemory is a memory a runtime build expects to import.
type stubMemory struct {
	name     string
	minPages uint32
}

// Core wasm section identifiers and opcodes used by the stub emitter.
const (
	secType   = 1
	secFunc   = 3
	secMemory = 5
	secExport = 7
	secCode   = 10

	exportKindFunc   = 0
	exportKindMemory = 2

	opI32Const = 0x41
	opI64Const = 0x42
	opF32Const = 0x43
	opF64Const = 0x44
	opEnd      = 0x0b

	funcTypeTag = 0x60
)

// buildStubModule emits a core wasm module exporting the given stub
// functions and memories. Function bodies push zero constants for their
// results and return. wazero's api.ValueType encodings are the wire
// encodings, so definitions pass through unchanged.
func buildStubModule(funcs []stubFunc, mems []stubMemory) []byte {
	out := []byte{0x00, 'a', 's', 'm', 0x01, 0x00, 0x00, 0x00}

	if len(funcs) > 0 {
		var types, funcIdx []byte
		types = uleb(types, uint64(len(funcs)))
		funcIdx = uleb(funcIdx, uint64(len(funcs)))
		for i, f := range funcs {
			types = append(types, funcTypeTag)
			types = uleb(types, uint64(len(f.params)))
			types = append(types, f.params...)
			types = uleb(types, uint64(len(f.results)))
			types = append(types, f.results...)
			funcIdx = uleb(funcIdx, uint64(i))
		}
		out = appendSection(out, secType, types)
		out = appendSection(out, secFunc, funcIdx)
	}

	if len(mems) > 0 {
		var memSec []byte
		memSec = uleb(memSec, uint64(len(mems)))
		for _, m := range mems {
			memSec = append(memSec, 0x00) // min only, no max
			memSec = uleb(memSec, uint64(m.minPages))
		}
		out = appendSection(out, secMemory, memSec)
	}

	if len(funcs)+len(mems) > 0 {
		var exp []byte
		exp = uleb(exp, uint64(len(funcs)+len(mems)))
		for i, f := range funcs {
			exp = appendName(exp, f.name)
			exp = append(exp, exportKindFunc)
			exp = uleb(exp, uint64(i))
		}
		for i, m := range mems {
			exp = appendName(exp, m.name)
			exp = append(exp, exportKindMemory)
			exp = uleb(exp, uint64(i))
		}
		out = appendSection(out, secExport, exp)
	}

	if len(funcs) > 0 {
		var code []byte
		code = uleb(code, uint64(len(funcs)))
		for _, f := range funcs {
			body := []byte{0x00} // no locals
			for _, r := range f.results {
				body = appendZeroConst(body, r)
			}
			body = append(body, opEnd)
			code = uleb(code, uint64(len(body)))
			code = append(code, body...)
		}
		out = appendSection(out, secCode, code)
	}
	return out
}

func appendZeroConst(body []byte, vt api.ValueType) []byte {
	switch vt {
	case api.ValueTypeI32:
		return append(body, opI32Const, 0x00)
	case api.ValueTypeI64:
		return append(body, opI64Const, 0x00)
	case api.ValueTypeF32:
		return append(body, opF32Const, 0, 0, 0, 0)
	case api.ValueTypeF64:
		return append(body, opF64Const, 0, 0, 0, 0, 0, 0, 0, 0)
	default:
		return append(body, opI32Const, 0x00)
	}
}

func appendSection(out []byte, id byte, payload []byte) []byte {
	out = append(out, id)
	out = uleb(out, uint64(len(payload)))
	return append(out, payload...)
}

func appendName(out []byte, name string) []byte {
	out = uleb(out, uint64(len(name)))
	return append(out, name...)
}

// uleb appends v in unsigned LEB128 form.
func uleb(out []byte, v uint64) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			out = append(out, b|0x80)
			continue
		}
		return append(out, b)
	}
}
