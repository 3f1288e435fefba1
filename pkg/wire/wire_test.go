package wire

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBoolRoundTrip(t *testing.T) {
	for _, v := range []bool{true, false} {
		sink := WriteBool(nil, v)
		got, err := ReadBool(NewCursor(sink))
		if err != nil {
			t.Fatalf("ReadBool(%v): %v", v, err)
		}
		if got != v {
			t.Errorf("ReadBool(%v) = %v", v, got)
		}
	}
}

func TestBoolOutOfRange(t *testing.T) {
	_, err := ReadBool(NewCursor([]byte{2}))
	var de *DecodeError
	if err == nil {
		t.Fatal("expected OutOfRange, got nil")
	}
	if !ok(err, &de) || de.Kind() != KindOutOfRange {
		t.Errorf("expected OutOfRange, got %v", err)
	}
}

func ok(err error, target **DecodeError) bool {
	de, is := err.(*DecodeError)
	if !is {
		return false
	}
	*target = de
	return true
}

func TestUint16RoundTrip(t *testing.T) {
	sink := WriteUint16(nil, 1234)
	if len(sink) != 2 {
		t.Fatalf("len = %d, want 2", len(sink))
	}
	got, err := ReadUint16(NewCursor(sink))
	if err != nil {
		t.Fatal(err)
	}
	if got != 1234 {
		t.Errorf("got %d, want 1234", got)
	}
}

func TestUint16LEDiffersFromBE(t *testing.T) {
	be := WriteUint16(nil, 0x1234)
	le := WriteUint16LE(nil, 0x1234)
	if cmp.Equal(be, le) {
		t.Fatal("expected big-endian and little-endian encodings to differ")
	}
	if be[0] != 0x12 || be[1] != 0x34 {
		t.Errorf("BE encoding = % X, want 12 34", be)
	}
	if le[0] != 0x34 || le[1] != 0x12 {
		t.Errorf("LE encoding = % X, want 34 12", le)
	}
}

func TestStringRoundTrip(t *testing.T) {
	sink := WriteString(nil, "Hello World")
	got, err := ReadString(NewCursor(sink))
	if err != nil {
		t.Fatal(err)
	}
	if got != "Hello World" {
		t.Errorf("got %q", got)
	}
}

func TestStringInvalidUTF8(t *testing.T) {
	sink := WriteUint16(nil, 2)
	sink = append(sink, 0xFF, 0xFE)
	_, err := ReadString(NewCursor(sink))
	var de *DecodeError
	if !ok(err, &de) || de.Kind() != KindInvalidUTF8 {
		t.Errorf("expected InvalidUtf8, got %v", err)
	}
}

func TestTriadLERoundTrip(t *testing.T) {
	sink := WriteTriadLE(nil, 0x123456)
	if len(sink) != 3 {
		t.Fatalf("len = %d, want 3", len(sink))
	}
	if sink[0] != 0x56 || sink[1] != 0x34 || sink[2] != 0x12 {
		t.Errorf("encoding = % X, want 56 34 12", sink)
	}
	got, err := ReadTriadLE(NewCursor(sink))
	if err != nil {
		t.Fatal(err)
	}
	if got != 0x123456 {
		t.Errorf("got %06X", uint32(got))
	}
}

func TestTriadBERoundTrip(t *testing.T) {
	sink := WriteTriad(nil, 0x123456)
	if sink[0] != 0x12 || sink[1] != 0x34 || sink[2] != 0x56 {
		t.Errorf("encoding = % X, want 12 34 56", sink)
	}
	got, err := ReadTriad(NewCursor(sink))
	if err != nil {
		t.Fatal(err)
	}
	if got != 0x123456 {
		t.Errorf("got %06X", uint32(got))
	}
}

// Scenario 1 from spec §8: Magic round-trip.
func TestMagicRoundTrip(t *testing.T) {
	sink := WriteMagic(nil)
	want := []byte{
		0x00, 0xFF, 0xFF, 0x00, 0xFE, 0xFE, 0xFE, 0xFE,
		0xFD, 0xFD, 0xFD, 0xFD, 0x12, 0x34, 0x56, 0x78,
	}
	if !cmp.Equal(sink, want) {
		t.Errorf("encoded = % X, want % X", sink, want)
	}
	if err := ReadMagic(NewCursor(sink)); err != nil {
		t.Fatalf("ReadMagic: %v", err)
	}
}

func TestMagicMismatch(t *testing.T) {
	sink := WriteMagic(nil)
	sink[0] = 0x01
	err := ReadMagic(NewCursor(sink))
	var de *DecodeError
	if !ok(err, &de) || de.Kind() != KindMagicMismatch {
		t.Errorf("expected MagicMismatch, got %v", err)
	}
}

// Scenario 2 from spec §8: IPv4 SocketAddress.
func TestIPv4SocketAddressScenario(t *testing.T) {
	addr := NewIPv4Address(192, 168, 1, 1, 19132)
	sink := WriteSocketAddress(nil, addr)
	want := []byte{0x04, 0x3F, 0x57, 0xFE, 0xFE, 0x4A, 0xBC}
	if !cmp.Equal(sink, want) {
		t.Errorf("encoded = % X, want % X", sink, want)
	}

	got, err := ReadSocketAddress(NewCursor(sink))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(addr, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestIPv6SocketAddressRoundTrip(t *testing.T) {
	var ip [16]byte
	for i := range ip {
		ip[i] = byte(i + 1)
	}
	addr := NewIPv6Address(ip, 19133, 0xAABBCCDD, 7)
	sink := WriteSocketAddress(nil, addr)
	if sink[0] != 6 {
		t.Fatalf("version byte = %d, want 6", sink[0])
	}
	got, err := ReadSocketAddress(NewCursor(sink))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(addr, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSocketAddressOutOfRange(t *testing.T) {
	_, err := ReadSocketAddress(NewCursor([]byte{5, 0, 0, 0, 0}))
	var de *DecodeError
	if !ok(err, &de) || de.Kind() != KindOutOfRange {
		t.Errorf("expected OutOfRange, got %v", err)
	}
}

func TestUnexpectedEOF(t *testing.T) {
	_, err := ReadUint64(NewCursor([]byte{1, 2, 3}))
	var de *DecodeError
	if !ok(err, &de) || de.Kind() != KindUnexpectedEOF {
		t.Errorf("expected UnexpectedEof, got %v", err)
	}
}

func BenchmarkStringRoundTrip(b *testing.B) {
	sink := WriteString(nil, "Hello World")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ReadString(NewCursor(sink))
	}
}
