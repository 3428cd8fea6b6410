// Command feeder-keygen provisions an encrypted keyfile for the feeder.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/gear-feeds/oracle-feeder/internal/keystore"
)

func main() {
	out := flag.String("out", "feeder-key.json", "Output keyfile path")
	flag.Parse()

	passphrase := os.Getenv("KEYFILE_PASSPHRASE")
	if passphrase == "" {
		log.Fatal("KEYFILE_PASSPHRASE must be set")
	}

	identity, err := keystore.Generate()
	if err != nil {
		log.Fatalf("generate identity: %v", err)
	}
	if err := keystore.Save(identity, *out, passphrase); err != nil {
		log.Fatalf("save keyfile: %v", err)
	}

	fmt.Printf("wrote %s\naddress: %s\n", *out, identity.Address())
}
