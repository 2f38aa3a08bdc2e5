package transport

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"math/big"
	"net"
	"time"

	quic "github.com/quic-go/quic-go"
)

const alpnProto = "clipper-quic"

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

// devTLSCert builds the deterministic certificate both ends share. QUIC
// requires TLS, but channel confidentiality is the key exchange's job, so a
// fixed development certificate is enough to satisfy the transport.
func devTLSCert() (tls.Certificate, []byte, error) {
	seed := sha256.Sum256([]byte("clipper-quic-dev-key"))
	priv := ed25519.NewKeyFromSeed(seed[:])
	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		NotBefore:    time.Unix(0, 0),
		NotAfter:     time.Unix(0, 0).Add(100 * 365 * 24 * time.Hour),
		KeyUsage:     x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
		DNSNames:     []string{"localhost"},
		IPAddresses:  []net.IP{net.ParseIP("127.0.0.1")},
	}
	der, err := x509.CreateCertificate(zeroReader{}, &template, &template, priv.Public(), priv)
	if err != nil {
		return tls.Certificate{}, nil, err
	}
	cert := tls.Certificate{
		Certificate: [][]byte{der},
		PrivateKey:  priv,
	}
	return cert, der, nil
}

func serverTLSConfig() (*tls.Config, error) {
	cert, _, err := devTLSCert()
	if err != nil {
		return nil, err
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		NextProtos:   []string{alpnProto},
	}, nil
}

func clientTLSConfig() (*tls.Config, error) {
	_, der, err := devTLSCert()
	if err != nil {
		return nil, err
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, err
	}
	pool := x509.NewCertPool()
	pool.AddCert(cert)
	return &tls.Config{
		RootCAs:    pool,
		NextProtos: []string{alpnProto},
	}, nil
}

func listenQUIC(addr string) (net.Listener, error) {
	tlsConf, err := serverTLSConfig()
	if err != nil {
		return nil, err
	}
	l, err := quic.ListenAddr(addr, tlsConf, nil)
	if err != nil {
		return nil, err
	}
	return &quicListener{l: l}, nil
}

func dialQUIC(addr string) (net.Conn, error) {
	tlsConf, err := clientTLSConfig()
	if err != nil {
		return nil, err
	}
	conn, err := quic.DialAddr(context.Background(), addr, tlsConf, nil)
	if err != nil {
		return nil, err
	}
	stream, err := conn.OpenStreamSync(context.Background())
	if err != nil {
		_ = conn.CloseWithError(0, "open stream")
		return nil, err
	}
	return &streamConn{stream: stream, conn: conn}, nil
}

// quicListener adapts a QUIC listener to net.Listener. Each accepted
// connection carries exactly one bidirectional stream.
type quicListener struct {
	l *quic.Listener
}

func (q *quicListener) Accept() (net.Conn, error) {
	conn, err := q.l.Accept(context.Background())
	if err != nil {
		return nil, err
	}
	stream, err := conn.AcceptStream(context.Background())
	if err != nil {
		_ = conn.CloseWithError(0, "accept stream")
		return nil, err
	}
	return &streamConn{stream: stream, conn: conn}, nil
}

func (q *quicListener) Close() error {
	return q.l.Close()
}

func (q *quicListener) Addr() net.Addr {
	return q.l.Addr()
}

type streamConn struct {
	stream *quic.Stream
	conn   *quic.Conn
}

func (s *streamConn) Read(p []byte) (int, error) {
	return s.stream.Read(p)
}

func (s *streamConn) Write(p []byte) (int, error) {
	return s.stream.Write(p)
}

func (s *streamConn) Close() error {
	err := s.stream.Close()
	_ = s.conn.CloseWithError(0, "")
	return err
}

func (s *streamConn) LocalAddr() net.Addr {
	return s.conn.LocalAddr()
}

func (s *streamConn) RemoteAddr() net.Addr {
	return s.conn.RemoteAddr()
}

func (s *streamConn) SetDeadline(t time.Time) error {
	return s.stream.SetDeadline(t)
}

func (s *streamConn) SetReadDeadline(t time.Time) error {
	return s.stream.SetReadDeadline(t)
}

func (s *streamConn) SetWriteDeadline(t time.Time) error {
	return s.stream.SetWriteDeadline(t)
}
