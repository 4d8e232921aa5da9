//go:build !386

package boot

// Entry has no hosted equivalent: nothing bare-metal happens to call
// it off this GOARCH. It is never exercised by this package's own
// tests, which drive mainHook/callMain directly.
func Entry() {}
