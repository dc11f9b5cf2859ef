package buf

import "testing"

func TestU32Helpers(t *testing.T) {
	data := []byte{0x01, 0x23, 0x45, 0x67, 0x89, 0xab, 0xcd, 0xef}

	if got := ReadU32(data, 0); got != 0x67452301 {
		t.Fatalf("ReadU32 = 0x%x, want 0x67452301", got)
	}
	if got := ReadU32(data, 4); got != 0xefcdab89 {
		t.Fatalf("ReadU32 at 4 = 0x%x, want 0xefcdab89", got)
	}

	PutU32(data, 0, 0xdeadbeef)
	if got := ReadU32(data, 0); got != 0xdeadbeef {
		t.Fatalf("ReadU32 after PutU32 = 0x%x, want 0xdeadbeef", got)
	}
}

func TestWordHelpers(t *testing.T) {
	img := make([]byte, 16)

	SetWord(img, 2, 0x11223344)
	if got := Word(img, 2); got != 0x11223344 {
		t.Fatalf("Word(2) = 0x%x, want 0x11223344", got)
	}
	if got := ReadU32(img, 8); got != 0x11223344 {
		t.Fatalf("word 2 should live at byte offset 8, got 0x%x", got)
	}
	if got := Word(img, 1); got != 0 {
		t.Fatalf("untouched word should be 0, got 0x%x", got)
	}
}
