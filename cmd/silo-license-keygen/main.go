package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/EternisAI/silo-license/internal/cert"
	"github.com/EternisAI/silo-license/internal/keys"
)

var (
	outDir = flag.String("out", "keys", "Directory for the generated PEM files")
	name   = flag.String("name", "license", "Base file name; writes <name>.key and <name>.pub")
	force  = flag.Bool("force", false, "Overwrite existing key files")

	tlsHosts = flag.String("tls-hosts", "", "Comma separated hosts; also writes a self-signed gRPC certificate (server.crt, server.key)")
	tlsDays  = flag.Int("tls-days", 365, "Validity of the gRPC certificate in days")
)

func main() {
	flag.Parse()

	privPath := filepath.Join(*outDir, *name+".key")
	pubPath := filepath.Join(*outDir, *name+".pub")

	if !*force {
		for _, p := range []string{privPath, pubPath} {
			if _, err := os.Stat(p); err == nil {
				log.Fatalf("%s already exists, pass -force to overwrite", p)
			}
		}
	}

	kp, err := keys.Generate()
	if err != nil {
		log.Fatalf("Failed to generate key pair: %v", err)
	}

	if err := keys.WritePrivateKeyPEM(kp.Private(), privPath); err != nil {
		log.Fatalf("Failed to write private key: %v", err)
	}
	if err := keys.WritePublicKeyPEM(kp.Public(), pubPath); err != nil {
		log.Fatalf("Failed to write public key: %v", err)
	}

	privJWK, err := keys.MarshalJWK(kp.Private())
	if err != nil {
		log.Fatalf("Failed to encode private JWK: %v", err)
	}
	pubJWK, err := keys.MarshalJWK(kp.Public())
	if err != nil {
		log.Fatalf("Failed to encode public JWK: %v", err)
	}

	log.Printf("Wrote %s and %s", privPath, pubPath)
	fmt.Printf("LICENSE_SIGNING_PRIVATE_KEY_JWK='%s'\n", privJWK)
	fmt.Printf("LICENSE_SIGNING_PUBLIC_KEY_JWK='%s'\n", pubJWK)

	if *tlsHosts != "" {
		writeTLS(strings.Split(*tlsHosts, ","))
	}
}

func writeTLS(hosts []string) {
	for i := range hosts {
		hosts[i] = strings.TrimSpace(hosts[i])
	}

	b, err := cert.GenerateSelfSigned(hosts, time.Duration(*tlsDays)*24*time.Hour)
	if err != nil {
		log.Fatalf("Failed to generate TLS certificate: %v", err)
	}

	certPath := filepath.Join(*outDir, "server.crt")
	keyPath := filepath.Join(*outDir, "server.key")
	if err := b.WriteFiles(certPath, keyPath); err != nil {
		log.Fatalf("Failed to write TLS certificate: %v", err)
	}
	log.Printf("Wrote %s and %s for grpc.tls", certPath, keyPath)
}
