package runtime

import (
	"context"
	"fmt"
	"sort"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/chaincall/errors"
	"github.com/wippyai/chaincall/metadata"
	"github.com/wippyai/chaincall/scale"
)

const (
	metadataExport    = "Metadata_metadata"
	presetNamesExport = "GenesisBuilder_preset_names"
	getPresetExport   = "GenesisBuilder_get_preset"
	heapBaseExport    = "__heap_base"

	wasmPageSize = 65536
)

// Engine compiles and instantiates runtime wasm builds.
type Engine struct {
	rt wazero.Runtime
}

// NewEngine creates an engine backed by a fresh wazero runtime.
func NewEngine(ctx context.Context) *Engine {
	return &Engine{rt: wazero.NewRuntime(ctx)}
}

// Close releases all compiled modules and instances.
func (e *Engine) Close(ctx context.Context) error {
	return e.rt.Close(ctx)
}

// Inspect compiles a runtime build without executing it and returns the
// sorted names of its runtime API exports, recognized by their uniform
// (i32, i32) -> i64 shape.
func (e *Engine) Inspect(ctx context.Context, wasmBytes []byte) ([]string, error) {
	compiled, err := e.rt.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseRuntime, errors.KindInvalidData, err, "compile runtime")
	}
	defer compiled.Close(ctx)

	var apis []string
	for name, def := range compiled.ExportedFunctions() {
		if isRuntimeAPIShape(def) {
			apis = append(apis, name)
		}
	}
	sort.Strings(apis)
	return apis, nil
}

func isRuntimeAPIShape(def api.FunctionDefinition) bool {
	p, r := def.ParamTypes(), def.ResultTypes()
	return len(p) == 2 && p[0] == api.ValueTypeI32 && p[1] == api.ValueTypeI32 &&
		len(r) == 1 && r[0] == api.ValueTypeI64
}

// Instance is one instantiated runtime build. Not safe for concurrent use.
type Instance struct {
	mod      api.Module
	mem      api.Memory
	heapBase uint32
}

// Load compiles a runtime build, satisfies its host imports with generated
// stubs, and instantiates it.
func (e *Engine) Load(ctx context.Context, wasmBytes []byte) (*Instance, error) {
	compiled, err := e.rt.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseRuntime, errors.KindInvalidData, err, "compile runtime")
	}

	importedMem, err := e.instantiateStubs(ctx, compiled)
	if err != nil {
		compiled.Close(ctx)
		return nil, err
	}

	mod, err := e.rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(""))
	if err != nil {
		compiled.Close(ctx)
		return nil, errors.Wrap(errors.PhaseRuntime, errors.KindInvalidData, err, "instantiate runtime")
	}

	mem := mod.Memory()
	if mem == nil {
		mem = importedMem
	}
	if mem == nil {
		mod.Close(ctx)
		return nil, errors.InvalidData(errors.PhaseRuntime, nil, "runtime has no linear memory")
	}

	inst := &Instance{mod: mod, mem: mem}
	if g := mod.ExportedGlobal(heapBaseExport); g != nil {
		inst.heapBase = uint32(g.Get())
	} else {
		// No heap marker; scratch space starts past the current data end.
		inst.heapBase = mem.Size()
	}
	return inst, nil
}

// instantiateStubs builds and instantiates one stub module per imported
// module name, covering every function and memory the runtime expects from
// its host. Returns the stub-provided memory, if any.
func (e *Engine) instantiateStubs(ctx context.Context, compiled wazero.CompiledModule) (api.Memory, error) {
	type stubSet struct {
		funcs []stubFunc
		mems  []stubMemory
	}
	sets := make(map[string]*stubSet)
	var order []string
	get := func(module string) *stubSet {
		s, ok := sets[module]
		if !ok {
			s = &stubSet{}
			sets[module] = s
			order = append(order, module)
		}
		return s
	}

	seen := make(map[string]bool)
	for _, def := range compiled.ImportedFunctions() {
		module, name, ok := def.Import()
		if !ok || seen[module+"."+name] {
			continue
		}
		seen[module+"."+name] = true
		get(module).funcs = append(get(module).funcs, stubFunc{
			name:    name,
			params:  def.ParamTypes(),
			results: def.ResultTypes(),
		})
	}

	var memName string
	for _, def := range compiled.ImportedMemories() {
		module, name, ok := def.Import()
		if !ok {
			continue
		}
		memName = name
		get(module).mems = append(get(module).mems, stubMemory{
			name:     name,
			minPages: uint32(def.Min()),
		})
	}

	var importedMem api.Memory
	for _, module := range order {
		if e.rt.Module(module) != nil {
			continue // already instantiated by an earlier Load
		}
		s := sets[module]
		stub, err := e.rt.InstantiateWithConfig(ctx, buildStubModule(s.funcs, s.mems),
			wazero.NewModuleConfig().WithName(module))
		if err != nil {
			return nil, errors.Wrap(errors.PhaseRuntime, errors.KindInvalidData, err,
				fmt.Sprintf("stub host module %q", module))
		}
		Logger().Debug("stubbed host imports",
			zap.String("module", module),
			zap.Int("functions", len(s.funcs)),
			zap.Int("memories", len(s.mems)))
		if len(s.mems) > 0 {
			importedMem = stub.ExportedMemory(memName)
		}
	}
	if importedMem == nil && memName != "" {
		// Another Load already provided the shared memory module.
		for _, module := range order {
			if m := e.rt.Module(module); m != nil {
				if mem := m.ExportedMemory(memName); mem != nil {
					importedMem = mem
				}
			}
		}
	}
	return importedMem, nil
}

// Call invokes one runtime API export. The input is written into scratch
// memory at the heap base; the packed u64 result is unpacked into an output
// pointer and length and the bytes are copied out.
func (i *Instance) Call(ctx context.Context, name string, input []byte) ([]byte, error) {
	fn := i.mod.ExportedFunction(name)
	if fn == nil {
		return nil, errors.NotFound(errors.PhaseRuntime, "runtime API", name)
	}

	ptr := i.heapBase
	if needed := uint64(ptr) + uint64(len(input)); needed > uint64(i.mem.Size()) {
		pages := uint32((needed - uint64(i.mem.Size()) + wasmPageSize - 1) / wasmPageSize)
		if _, ok := i.mem.Grow(pages); !ok {
			return nil, errors.InvalidData(errors.PhaseRuntime, []string{name}, "memory grow refused")
		}
	}
	if len(input) > 0 && !i.mem.Write(ptr, input) {
		return nil, errors.InvalidData(errors.PhaseRuntime, []string{name}, "input write out of bounds")
	}

	results, err := fn.Call(ctx, uint64(ptr), uint64(len(input)))
	if err != nil {
		return nil, errors.Wrap(errors.PhaseRuntime, errors.KindInvalidData, err, name)
	}
	if len(results) != 1 {
		return nil, errors.InvalidData(errors.PhaseRuntime, []string{name},
			fmt.Sprintf("expected one packed result, got %d", len(results)))
	}

	outPtr := uint32(results[0])
	outLen := uint32(results[0] >> 32)
	data, ok := i.mem.Read(outPtr, outLen)
	if !ok {
		return nil, errors.InvalidData(errors.PhaseRuntime, []string{name},
			fmt.Sprintf("result %d+%d out of bounds", outPtr, outLen))
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Close releases the instance.
func (i *Instance) Close(ctx context.Context) error {
	return i.mod.Close(ctx)
}

// Metadata calls the metadata runtime API and decodes the result. The
// runtime wraps the blob in a length-prefixed byte vector, which is
// stripped before decoding.
func (i *Instance) Metadata(ctx context.Context) (*metadata.Snapshot, error) {
	raw, err := i.Call(ctx, metadataExport, nil)
	if err != nil {
		return nil, err
	}
	blob, err := scale.NewDecoder(raw).BytesVec()
	if err != nil {
		return nil, errors.Wrap(errors.PhaseRuntime, errors.KindInvalidData, err,
			"metadata length prefix")
	}
	return metadata.DecodeSnapshot(blob)
}

// PresetNames returns the genesis preset identifiers the runtime declares.
func (i *Instance) PresetNames(ctx context.Context) ([]string, error) {
	raw, err := i.Call(ctx, presetNamesExport, nil)
	if err != nil {
		return nil, err
	}
	names, err := scale.NewDecoder(raw).Strings()
	if err != nil {
		return nil, errors.Wrap(errors.PhaseRuntime, errors.KindInvalidData, err,
			"preset name list")
	}
	return names, nil
}

// Preset returns the genesis preset JSON for name; nil name asks for the
// runtime default. A missing preset reports KindNotFound.
func (i *Instance) Preset(ctx context.Context, name *string) ([]byte, error) {
	raw, err := i.Call(ctx, getPresetExport, scale.EncodeOptionString(name))
	if err != nil {
		return nil, err
	}
	d := scale.NewDecoder(raw)
	present, err := d.Option()
	if err != nil {
		return nil, errors.Wrap(errors.PhaseRuntime, errors.KindInvalidData, err,
			"preset option wrapper")
	}
	if !present {
		label := "default"
		if name != nil {
			label = *name
		}
		return nil, errors.NotFound(errors.PhaseRuntime, "genesis preset", label)
	}
	preset, err := d.BytesVec()
	if err != nil {
		return nil, errors.Wrap(errors.PhaseRuntime, errors.KindInvalidData, err,
			"preset payload")
	}
	return preset, nil
}

// ExtractMetadata is a one-shot Load + Metadata for callers that do not
// keep the instance around.
func (e *Engine) ExtractMetadata(ctx context.Context, wasmBytes []byte) (*metadata.Snapshot, error) {
	inst, err := e.Load(ctx, wasmBytes)
	if err != nil {
		return nil, err
	}
	defer inst.Close(ctx)
	return inst.Metadata(ctx)
}

// CheckPreset verifies that a named genesis preset exists in the build.
func (e *Engine) CheckPreset(ctx context.Context, wasmBytes []byte, name *string) error {
	inst, err := e.Load(ctx, wasmBytes)
	if err != nil {
		return err
	}
	defer inst.Close(ctx)
	_, err = inst.Preset(ctx, name)
	return err
}
