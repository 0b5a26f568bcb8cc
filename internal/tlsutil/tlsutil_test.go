package tlsutil

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/tls"
	"crypto/x509"
	"testing"
	"time"
)

func TestSelfSigned(t *testing.T) {
	t.Parallel()

	cert, err := SelfSigned()
	if err != nil {
		t.Fatalf("SelfSigned: %v", err)
	}

	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		t.Fatalf("parsing certificate: %v", err)
	}

	if leaf.Subject.CommonName != "localhost" {
		t.Errorf("CN: got %q", leaf.Subject.CommonName)
	}

	hasDNS := false
	for _, name := range leaf.DNSNames {
		if name == "localhost" {
			hasDNS = true
		}
	}
	if !hasDNS {
		t.Errorf("DNS SANs %v missing localhost", leaf.DNSNames)
	}

	hasIP := false
	for _, ip := range leaf.IPAddresses {
		if ip.String() == "127.0.0.1" {
			hasIP = true
		}
	}
	if !hasIP {
		t.Errorf("IP SANs %v missing 127.0.0.1", leaf.IPAddresses)
	}

	validity := leaf.NotAfter.Sub(leaf.NotBefore)
	if validity < selfSignedValidity-time.Hour || validity > selfSignedValidity+time.Hour {
		t.Errorf("validity: got %v", validity)
	}

	pub, ok := leaf.PublicKey.(*ecdsa.PublicKey)
	if !ok {
		t.Fatal("public key is not ECDSA")
	}
	if pub.Curve != elliptic.P256() {
		t.Errorf("curve: got %v", pub.Curve.Params().Name)
	}
}

func TestServerConfig_SelfSigned(t *testing.T) {
	t.Parallel()

	cfg, err := ServerConfig("", "")
	if err != nil {
		t.Fatalf("ServerConfig: %v", err)
	}
	if len(cfg.Certificates) != 1 {
		t.Errorf("Certificates: got %d", len(cfg.Certificates))
	}
	if cfg.MinVersion != tls.VersionTLS12 {
		t.Errorf("MinVersion: got %d", cfg.MinVersion)
	}
}

func TestServerConfig_MissingFiles(t *testing.T) {
	t.Parallel()

	if _, err := ServerConfig("/nonexistent/cert.pem", "/nonexistent/key.pem"); err == nil {
		t.Fatal("expected error for missing certificate files")
	}
}
