package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/EternisAI/silo-license/internal/fingerprint"
	"github.com/EternisAI/silo-license/internal/keys"
)

var (
	tokenFile   = flag.String("token", "", "Path to the license token file (- for stdin)")
	publicKey   = flag.String("public-key", "", "Path to the PEM public key")
	publicJWK   = flag.String("public-key-jwk", os.Getenv("LICENSE_SIGNING_PUBLIC_KEY_JWK"), "Public key as JWK")
	fpOverride  = flag.String("fingerprint", "", "Device fingerprint to check instead of this machine's")
	server      = flag.String("server", "", "License server base URL for online validation, e.g. http://localhost:8080")
	bearer      = flag.String("bearer", "", "Optional bearer token sent with online validation")
	timeout     = flag.Duration("timeout", 10*time.Second, "Timeout for fingerprinting and online validation")
	printClaims = flag.Bool("print", false, "Print the verified claims as JSON")
)

func main() {
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	raw, err := readToken(*tokenFile)
	if err != nil {
		log.Fatalf("Failed to read token: %v", err)
	}

	kp, err := keys.Load(keys.Config{PublicKeyFile: *publicKey, PublicKeyJWK: *publicJWK})
	if err != nil {
		log.Fatalf("Failed to load public key: %v", err)
	}

	fp := *fpOverride
	if fp == "" {
		fp, err = fingerprint.Local(ctx)
		if err != nil {
			log.Fatalf("Failed to compute device fingerprint: %v", err)
		}
	}

	claims, err := checkOffline(raw, kp, fp, time.Now())
	if err != nil {
		log.Fatalf("Offline verification failed: %v", err)
	}
	log.Printf("Offline verification passed: license=%s plan=%s expires=%s",
		claims.LicenseID, claims.Plan, time.Unix(claims.ExpiresAt, 0).UTC().Format(time.RFC3339))

	if *printClaims {
		out, _ := json.MarshalIndent(claims, "", "  ")
		fmt.Println(string(out))
	}

	if *server == "" {
		return
	}

	client := NewClient(*server, *bearer)
	msg, err := client.Validate(ctx, raw, fp)
	if err != nil {
		log.Fatalf("Online validation failed: %v", err)
	}
	log.Printf("Online validation passed: %s", msg)
}

func readToken(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("-token is required")
	}
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
