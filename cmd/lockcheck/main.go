// Command lockcheck is a whole-program static check for spec §5's
// locking discipline: a kernel thread must never sleep while it holds
// a spinlock other than the one the sleep primitive itself manages.
// internal/lock's Sleeplock blocks via the scheduler inside its own
// Lock method, so the hazard this tool looks for is a caller who holds
// some internal/lock.Spinlock open across a call to
// (*lock.Sleeplock).Lock.
//
// Grounded on biscuit's go.mod dependency on golang.org/x/tools's
// go/pointer package (declared, no call site in this retrieval pack)
// and on original_source/kernel/src/spinlock.rs's comment that sleep
// "releases and reacquires exactly the lock passed to it" — the
// invariant this tool approximates at build time instead of only at
// runtime (trap.Dispatch has no equivalent assertion; this is a
// lint, not a kernel-resident check).
package main

import (
	"fmt"
	"go/token"
	"go/types"
	"os"

	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/pointer"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

const lockPkgPath = "novakernel/internal/lock"

func main() {
	pattern := "./..."
	if len(os.Args) > 1 {
		pattern = os.Args[1]
	}

	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles |
			packages.NeedImports | packages.NeedDeps | packages.NeedTypes |
			packages.NeedTypesInfo | packages.NeedSyntax,
	}
	pkgs, err := packages.Load(cfg, pattern)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lockcheck: loading %s: %v\n", pattern, err)
		os.Exit(1)
	}
	if packages.PrintErrors(pkgs) > 0 {
		os.Exit(1)
	}

	prog, ssaPkgs := ssautil.AllPackages(pkgs, 0)
	prog.Build()

	mains := ssautil.MainPackages(ssaPkgs)
	if len(mains) == 0 {
		fmt.Fprintf(os.Stderr, "lockcheck: no main package under %s; lockcheck needs a whole program to build a call graph from\n", pattern)
		os.Exit(1)
	}

	fns := ssautil.AllFunctions(prog)

	ptrCfg := &pointer.Config{Mains: mains}
	for fn := range fns {
		for _, blk := range fn.Blocks {
			for _, instr := range blk.Instrs {
				call, ok := instr.(*ssa.Call)
				if !ok {
					continue
				}
				if recv, ok := lockReceiver(call, "Spinlock", "Lock"); ok {
					ptrCfg.AddQuery(recv)
				}
				if recv, ok := lockReceiver(call, "Spinlock", "Unlock"); ok {
					ptrCfg.AddQuery(recv)
				}
			}
		}
	}

	result, err := pointer.Analyze(ptrCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lockcheck: pointer analysis: %v\n", err)
		os.Exit(1)
	}

	violations := 0
	for fn := range fns {
		if fn.Pkg != nil && fn.Pkg.Pkg.Path() == lockPkgPath {
			continue // internal/lock itself legitimately juggles both locks
		}
		violations += checkFunc(fn, result)
	}

	if violations > 0 {
		fmt.Fprintf(os.Stderr, "lockcheck: %d potential sleep-while-spinlocked violation(s)\n", violations)
		os.Exit(1)
	}
	fmt.Println("lockcheck: clean")
}

type heldLock struct {
	val  ssa.Value
	name string
	pos  token.Pos
}

// checkFunc walks one function's basic blocks looking for a
// Sleeplock.Lock call reachable while some other Spinlock is still
// held. Held-sets are tracked per block rather than across the whole
// CFG: the set starts empty at every block, so only a Spinlock taken
// earlier in the same block is seen, and one taken in a predecessor
// block and still held is missed. This is the kind of intraprocedural
// lint a build step can run quickly, not a full model checker.
func checkFunc(fn *ssa.Function, result *pointer.Result) int {
	violations := 0
	for _, blk := range fn.Blocks {
		var held []heldLock
		for _, instr := range blk.Instrs {
			call, ok := instr.(*ssa.Call)
			if !ok {
				continue
			}
			if recv, ok := lockReceiver(call, "Spinlock", "Lock"); ok {
				held = append(held, heldLock{val: recv, name: lockName(recv), pos: call.Pos()})
				continue
			}
			if recv, ok := lockReceiver(call, "Spinlock", "Unlock"); ok {
				held = dropAliased(held, recv, result)
				continue
			}
			if _, ok := lockReceiver(call, "Sleeplock", "Lock"); ok {
				for _, h := range held {
					fmt.Printf("%s: %s may sleep while holding spinlock %q (locked at %s)\n",
						fn.Prog.Fset.Position(call.Pos()), fn.String(), h.name,
						fn.Prog.Fset.Position(h.pos))
					violations++
				}
			}
		}
	}
	return violations
}

// lockReceiver reports whether call is a direct (non-interface) call
// to typeName.methodName in internal/lock, returning the receiver
// value call was made through.
func lockReceiver(call *ssa.Call, typeName, methodName string) (ssa.Value, bool) {
	common := call.Common()
	if common.IsInvoke() {
		return nil, false
	}
	fn, ok := common.Value.(*ssa.Function)
	if !ok || fn.Name() != methodName {
		return nil, false
	}
	recv := fn.Signature.Recv()
	if recv == nil {
		return nil, false
	}
	t := recv.Type()
	if p, ok := t.(*types.Pointer); ok {
		t = p.Elem()
	}
	named, ok := t.(*types.Named)
	if !ok || named.Obj().Name() != typeName {
		return nil, false
	}
	if named.Obj().Pkg() == nil || named.Obj().Pkg().Path() != lockPkgPath {
		return nil, false
	}
	if len(common.Args) == 0 {
		return nil, false
	}
	return common.Args[0], true
}

// dropAliased removes every held lock whose points-to set intersects
// recv's — i.e. every lock that Unlock(recv) could plausibly be
// releasing.
func dropAliased(held []heldLock, recv ssa.Value, result *pointer.Result) []heldLock {
	rp, ok := pointerFor(recv, result)
	if !ok {
		return held
	}
	out := held[:0]
	for _, h := range held {
		if hp, ok := pointerFor(h.val, result); ok && hp.PointsTo().Intersects(rp.PointsTo()) {
			continue
		}
		out = append(out, h)
	}
	return out
}

func pointerFor(v ssa.Value, result *pointer.Result) (pointer.Pointer, bool) {
	if p, ok := result.Queries[v]; ok {
		return p, true
	}
	if p, ok := result.IndirectQueries[v]; ok {
		return p, true
	}
	return pointer.Pointer{}, false
}

// lockName best-effort recovers a human name for a lock value for the
// diagnostic message: the struct field name when the receiver is a
// field access, otherwise the SSA value's own name.
func lockName(v ssa.Value) string {
	if fa, ok := v.(*ssa.FieldAddr); ok {
		t := fa.X.Type()
		if p, ok := t.(*types.Pointer); ok {
			t = p.Elem()
		}
		if st, ok := t.Underlying().(*types.Struct); ok && fa.Field < st.NumFields() {
			return st.Field(fa.Field).Name()
		}
	}
	return v.Name()
}
