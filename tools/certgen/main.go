// Package main generates a development CA and a dashboard server certificate,
// writing them to the "certs" directory. Point tls_cert and tls_key at the
// generated files to serve the dashboard over HTTPS.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/atinyakov/medstock/internal/certgen"
)

func main() {
	dir := flag.String("dir", "certs", "output directory")
	hosts := flag.String("hosts", "localhost,127.0.0.1", "comma separated DNS names and IPs")
	validFor := flag.Duration("valid", 365*24*time.Hour, "certificate lifetime")
	flag.Parse()

	b, err := certgen.Generate(strings.Split(*hosts, ","), *validFor)
	if err != nil {
		log.Fatal(err)
	}
	if err := certgen.WriteFiles(*dir, b); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Certificates generated into ./%s\n", *dir)
}
