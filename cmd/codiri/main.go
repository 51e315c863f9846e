// Command codiri computes shoreline-resuspension dose estimates from a
// classified raster and in-situ soil activity measurements.
package main

import (
	"fmt"
	"os"

	"github.com/czertyaka/codiri/codiriutil"
)

func main() {
	cfg := codiriutil.InitializeConfig()
	if err := cfg.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
