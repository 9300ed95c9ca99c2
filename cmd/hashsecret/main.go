// Command hashsecret prints the argon2id encoding of an admin secret for
// the admin.secret_hash setting. The secret is read from the first argument,
// or from stdin when no argument is given.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"itn-gateway/internal/service"
)

func main() {
	var secret string
	if len(os.Args) > 1 {
		secret = os.Args[1]
	} else {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintf(os.Stderr, "failed to read secret: %v\n", err)
			os.Exit(1)
		}
		secret = line
	}

	secret = strings.TrimSpace(secret)
	if secret == "" {
		fmt.Fprintln(os.Stderr, "usage: hashsecret <secret>")
		os.Exit(2)
	}

	hash, err := service.NewArgon2HashService().Hash(secret)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash secret: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
