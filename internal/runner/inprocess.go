package runner

import (
	"context"
	"fmt"
	"plugin"
	"reflect"

	"github.com/fizil/fizil/internal/fuzzcase"
	"github.com/fizil/fizil/internal/sharedmem"
)

// EntryPointSymbol is the exported symbol a target plugin must provide: a
// function taking the test bytes and returning (crashed bool, exitCode int,
// stdout, stderr string). This is Go's answer to the managed-runtime
// attribute-marked-entry-point idea: a documented symbol name looked up via
// reflection rather than a language-level annotation.
const EntryPointSymbol = "FizilEntryPoint"

// InProcessRunner loads a target built as a Go plugin and calls its entry
// point directly in this process, skipping process spawn overhead. Runs
// must be serialized — the target's global state is not isolated between
// calls, unlike the out-of-process runner's fresh child per test. Per §4.4,
// a single coverage region is created once and published into this
// process's environment, then cleared before every call so the plugin's
// instrumentation and this runner always agree on where coverage lives.
type InProcessRunner struct {
	crashExitCode int
	entry         reflect.Value
	channel       *sharedmem.Channel
}

// LoadInProcessRunner opens pluginPath, resolves EntryPointSymbol, and
// creates the one coverage region this runner will reuse for every Run.
func LoadInProcessRunner(pluginPath string, crashExitCode, mapSize int, shmDir string) (*InProcessRunner, error) {
	p, err := plugin.Open(pluginPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open target plugin %s: %w", pluginPath, err)
	}

	sym, err := p.Lookup(EntryPointSymbol)
	if err != nil {
		return nil, fmt.Errorf("target plugin %s has no %s symbol: %w", pluginPath, EntryPointSymbol, err)
	}

	entry := reflect.ValueOf(sym)
	if entry.Kind() != reflect.Func {
		return nil, fmt.Errorf("target plugin %s: %s is not a function", pluginPath, EntryPointSymbol)
	}
	entryType := entry.Type()
	if entryType.NumIn() != 1 || entryType.NumOut() != 4 {
		return nil, fmt.Errorf("target plugin %s: %s must take one argument and return 4 values", pluginPath, EntryPointSymbol)
	}
	argType := entryType.In(0)
	if argType.Kind() != reflect.String && !(argType.Kind() == reflect.Slice && argType.Elem().Kind() == reflect.Uint8) {
		return nil, fmt.Errorf("target plugin %s: %s must take a []byte or string argument, got %s", pluginPath, EntryPointSymbol, argType)
	}
	if entryType.Out(0).Kind() != reflect.Bool || entryType.Out(1).Kind() != reflect.Int ||
		entryType.Out(2).Kind() != reflect.String || entryType.Out(3).Kind() != reflect.String {
		return nil, fmt.Errorf("target plugin %s: %s must return (bool, int, string, string)", pluginPath, EntryPointSymbol)
	}

	ch, err := sharedmem.Create(shmDir, mapSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create coverage region: %w", err)
	}

	return &InProcessRunner{
		crashExitCode: crashExitCode,
		entry:         entry,
		channel:       ch,
	}, nil
}

// Run calls the plugin's entry point directly, passing tc.Data as either a
// []byte or string argument depending on what the entry point declares.
func (r *InProcessRunner) Run(_ context.Context, tc fuzzcase.TestCase) (fuzzcase.TestResult, []byte, error) {
	r.channel.Clear()

	argType := r.entry.Type().In(0)
	var arg reflect.Value
	switch argType.Kind() {
	case reflect.String:
		arg = reflect.ValueOf(string(tc.Data))
	default:
		arg = reflect.ValueOf(tc.Data)
	}

	out := r.entry.Call([]reflect.Value{arg})

	crashed, _ := out[0].Interface().(bool)
	exitCode, _ := out[1].Interface().(int)
	stdout, _ := out[2].Interface().(string)
	stderr, _ := out[3].Interface().(string)

	result := fuzzcase.TestResult{
		Crashed:  crashed || classifyCrash(exitCode, r.crashExitCode),
		ExitCode: exitCode,
		Stdout:   []byte(stdout),
		Stderr:   []byte(stderr),
	}

	return result, r.channel.ReadBytes(), nil
}

// Close disposes the shared coverage region. The loaded Go plugin itself
// cannot be unloaded.
func (r *InProcessRunner) Close() error {
	return r.channel.Dispose()
}
