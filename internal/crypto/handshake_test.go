package crypto

import (
	"io"
	"net"
	"testing"
)

func TestKeyExchangeBothSidesAgree(t *testing.T) {
	accepting, connecting := net.Pipe()
	defer accepting.Close()
	defer connecting.Close()

	type result struct {
		key *SharedKey
		err error
	}
	acceptDone := make(chan result, 1)
	go func() {
		key, err := AcceptKeyExchange(accepting)
		acceptDone <- result{key, err}
	}()

	initKey, err := InitiateKeyExchange(connecting)
	if err != nil {
		t.Fatalf("initiate failed: %v", err)
	}
	acc := <-acceptDone
	if acc.err != nil {
		t.Fatalf("accept failed: %v", acc.err)
	}

	// The two sides never compare keys directly; agreement shows up as one
	// side opening what the other sealed.
	box, err := acc.key.Seal([]byte("hello"))
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}
	opened, err := initKey.Open(box)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if string(opened) != "hello" {
		t.Fatalf("payload mismatch: %q", opened)
	}
}

func TestAcceptKeyExchangeShortReadFails(t *testing.T) {
	accepting, connecting := net.Pipe()
	defer accepting.Close()

	errc := make(chan error, 1)
	go func() {
		_, err := AcceptKeyExchange(accepting)
		errc <- err
	}()

	// Drain the accepting side's public key, then close without answering.
	buf := make([]byte, PublicKeySize)
	if _, err := io.ReadFull(connecting, buf); err != nil {
		t.Fatalf("read public key failed: %v", err)
	}
	connecting.Close()

	if err := <-errc; err == nil {
		t.Fatalf("expected short-read failure")
	}
}

func TestInitiateKeyExchangeClosedConnFails(t *testing.T) {
	accepting, connecting := net.Pipe()
	accepting.Close()
	defer connecting.Close()
	if _, err := InitiateKeyExchange(connecting); err == nil {
		t.Fatalf("expected failure on closed connection")
	}
}
