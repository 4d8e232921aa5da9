// Package boot holds the few symbols that live outside any one
// subsystem's ownership: the bootstrap page directory handed to the
// entry trampoline, and the marker for where the kernel's linked
// image ends and free physical memory begins.
//
// Grounded on original_source/kernel/src/main.rs's entry_page_dir
// static and kernel_end extern symbol, and spec §4.1/§6's description
// of the bootstrap identity map and the ELF loader's hand-off.
package boot

// KernelEnd marks the first address after the kernel's linked image
// (text, rodata, data, bss). In a real link it sits exactly where the
// linker script places the `end` symbol; here it is a zero-length
// array, so it occupies no storage and &KernelEnd is the address the
// linker gave it, past every statically allocated kernel symbol laid
// out before it.
//
// cmd/kernel takes its address once, at the very start of Main, and
// never touches the array itself.
var KernelEnd [0]byte

// mainHook is the Go-level boot continuation entry_386.s's Entry
// trampoline falls into once paging and the bootstrap stack are live.
// cmd/kernel installs it from an init func (mirroring internal/lock
// and internal/cpu's late-binding pattern) since this package can't
// import a main package.
var mainHook func()

// SetMainHook installs the function Entry calls after the bootstrap
// page directory is active. Must be called from an init func, before
// any real boot occurs.
func SetMainHook(f func()) { mainHook = f }

// callMain is entry_386.s's only Go-level call target.
func callMain() {
	if mainHook != nil {
		mainHook()
	}
}
