// Command routectl loads reroute definition files and runs forward and
// reverse dispatch against them.
package main

import (
	"os"

	log "github.com/sirupsen/logrus"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.WithError(err).Error("routectl failed")
		os.Exit(1)
	}
}
