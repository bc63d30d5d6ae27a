// scripts/generate_password.go
//
// Prints a bcrypt hash for a staff password, for pasting into a users row
// when the seeded admin account is not usable. Cost matches the password
// manager in internal/pkg/auth.
package main

import (
	"flag"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	cost := flag.Int("cost", 12, "bcrypt cost factor")
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatal("Usage: go run scripts/generate_password.go [-cost N] <password>")
	}
	password := flag.Arg(0)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), *cost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	// Round-trip before printing so a bad hash never reaches a database
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		log.Fatalf("Hash verification failed: %v", err)
	}

	fmt.Println(string(hash))
}
