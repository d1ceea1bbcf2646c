// Package main is a utility for generating bcrypt hashes of passwords.
// The platform stores only bcrypt hashes of user passwords — never the raw
// values — so this tool is used when manually seeding the first platform
// admin or verifying user records in the database without running the full
// server. Running it locally produces a hash that can be inserted directly
// into the users table.
package main

import (
	"fmt"
	"os"

	"github.com/vertex-platform/vertex-backend/internal/auth"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: hash <password>")
		os.Exit(1)
	}

	hash, err := auth.HashPassword(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
