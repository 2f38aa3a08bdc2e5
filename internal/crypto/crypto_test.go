package crypto

import (
	"bytes"
	"testing"
)

func TestSharedKeySealOpenRoundTrip(t *testing.T) {
	key, err := NewSharedKey(bytes.Repeat([]byte{0x01}, KeySize))
	if err != nil {
		t.Fatalf("key derivation failed: %v", err)
	}
	plain := []byte("clipboard contents")
	box, err := key.Seal(plain)
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}
	opened, err := key.Open(box)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if !bytes.Equal(opened, plain) {
		t.Fatalf("payload mismatch")
	}
}

func TestSharedKeyOpenTamperFails(t *testing.T) {
	key, err := NewSharedKey(bytes.Repeat([]byte{0x02}, KeySize))
	if err != nil {
		t.Fatalf("key derivation failed: %v", err)
	}
	box, err := key.Seal([]byte("payload"))
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}
	box[len(box)-1] ^= 0xff
	if _, err := key.Open(box); err == nil {
		t.Fatalf("expected tamper failure")
	}
}

func TestSharedKeyOpenWrongKeyFails(t *testing.T) {
	k1, _ := NewSharedKey(bytes.Repeat([]byte{0x03}, KeySize))
	k2, _ := NewSharedKey(bytes.Repeat([]byte{0x04}, KeySize))
	box, err := k1.Seal([]byte("payload"))
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}
	if _, err := k2.Open(box); err == nil {
		t.Fatalf("expected wrong-key failure")
	}
}

func TestSharedKeyOpenShortBoxFails(t *testing.T) {
	key, _ := NewSharedKey(bytes.Repeat([]byte{0x05}, KeySize))
	if _, err := key.Open([]byte{0x01, 0x02}); err == nil {
		t.Fatalf("expected short-box failure")
	}
}

func TestNewSharedKeyRejectsBadSize(t *testing.T) {
	if _, err := NewSharedKey([]byte{0x01}); err == nil {
		t.Fatalf("expected size failure")
	}
}

func TestEphemeralDestroy(t *testing.T) {
	eph, err := GenerateEphemeral()
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if _, err := eph.Public(); err != nil {
		t.Fatalf("public failed: %v", err)
	}
	eph.Destroy()
	if _, err := eph.Public(); err == nil {
		t.Fatalf("expected destroyed key failure")
	}
}
