// Command pathmap maps logical paths onto the file system, either one-shot on
// the command line or as a gNOI File server.
package main

import (
	"os"

	"k8s.io/klog/v2"
)

const version = "0.1.0"

func main() {
	defer klog.Flush()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
