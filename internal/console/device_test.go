package console

import "testing"

func TestDeviceReadDrainsBufferedKeyboardInput(t *testing.T) {
	kbdRing = ring{}
	comRing = ring{}
	kbdRing.push('h')
	kbdRing.push('i')

	var d Device
	buf := make([]byte, 4)
	n, err := d.Read(buf)
	if err != 0 || string(buf[:n]) != "hi" {
		t.Fatalf("Read = %q, %v, want hi, 0", buf[:n], err)
	}
}

func TestDeviceReadFallsBackToCOM1OnceKeyboardIsEmpty(t *testing.T) {
	kbdRing = ring{}
	comRing = ring{}
	kbdRing.push('a')
	comRing.push('b')

	var d Device
	buf := make([]byte, 4)
	n, _ := d.Read(buf)
	if string(buf[:n]) != "ab" {
		t.Fatalf("Read = %q, want ab", buf[:n])
	}
}

func TestDeviceReadWithNothingBufferedReturnsZero(t *testing.T) {
	kbdRing = ring{}
	comRing = ring{}

	var d Device
	n, err := d.Read(make([]byte, 4))
	if n != 0 || err != 0 {
		t.Fatalf("Read = %d, %v, want 0, 0", n, err)
	}
}
