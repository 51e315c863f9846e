package lazyeval

import (
	"encoding/gob"
	"fmt"
	"hash/fnv"

	"github.com/davecgh/go-spew/spew"
)

// Key turns a heterogeneous argument tuple (stability class, nuclide,
// distance, ...) into a single string suitable as a memoization map key,
// adapted from internal/hash.Hash in spatialmodel/inmap.
func Key(args ...interface{}) string {
	h := fnv.New128a()
	e := gob.NewEncoder(h)
	if err := e.Encode(args); err == nil {
		return fmt.Sprintf("%x", h.Sum(nil))
	}
	// gob cannot encode some values (for example a concrete type that was
	// never gob.Register-ed); fall back to a deterministic textual dump
	// instead of failing the lookup.
	printer := spew.ConfigState{
		Indent:                  " ",
		SortKeys:                true,
		DisableMethods:          true,
		SpewKeys:                true,
		DisablePointerAddresses: true,
		DisableCapacities:       true,
	}
	printer.Fprintf(h, "%#v", args)
	return fmt.Sprintf("%x", h.Sum(nil))
}
