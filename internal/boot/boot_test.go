package boot

import "testing"

func TestSetMainHookInstallsCallback(t *testing.T) {
	defer SetMainHook(nil)

	called := false
	SetMainHook(func() { called = true })
	callMain()

	if !called {
		t.Fatal("callMain did not invoke the installed hook")
	}
}

func TestCallMainWithNoHookIsANoop(t *testing.T) {
	defer SetMainHook(nil)

	SetMainHook(nil)
	callMain() // must not panic
}

func TestKernelEndHasAnAddress(t *testing.T) {
	if &KernelEnd == nil {
		t.Fatal("KernelEnd should always have a valid address")
	}
}
