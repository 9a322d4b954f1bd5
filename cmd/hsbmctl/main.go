// Command hsbmctl loads a network, runs hierarchical block model inference,
// and checkpoints the resulting partition.
package main

import "github.com/hsbm-go/hsbm/cmd/hsbmctl/cmd"

func main() {
	cmd.Execute()
}
