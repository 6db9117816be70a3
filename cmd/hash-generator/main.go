// Package main prints bcrypt credential hashes, one per secret given on the
// command line or, with no arguments, one per line of standard input.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/phrazzld/account-service/internal/config"
	"github.com/phrazzld/account-service/internal/service/auth"
)

func main() {
	cost := flag.Int("cost", config.DefaultBCryptCost, "bcrypt cost")
	flag.Parse()

	hasher, err := auth.NewBcryptHasher(*cost)
	if err != nil {
		log.Fatalf("hash-generator: %v", err)
	}

	secrets := flag.Args()
	if len(secrets) == 0 {
		if secrets, err = readLines(os.Stdin); err != nil {
			log.Fatalf("hash-generator: %v", err)
		}
	}

	if err := writeHashes(os.Stdout, hasher, secrets); err != nil {
		log.Fatalf("hash-generator: %v", err)
	}
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}

// writeHashes writes one "secret<TAB>hash" line per secret.
func writeHashes(w io.Writer, hasher auth.CredentialHasher, secrets []string) error {
	for _, secret := range secrets {
		hash, err := hasher.Hash(secret)
		if err != nil {
			return fmt.Errorf("hash %q: %w", secret, err)
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\n", secret, hash); err != nil {
			return err
		}
	}
	return nil
}
