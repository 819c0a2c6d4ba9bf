// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package bridge exposes the dap2 core to a foreign host (C9): numeric
// decoded arrays as typed views with no conversion, schema and attribute
// trees as JSON-shaped objects, and constraint strings, without performing
// any network I/O of its own.
//
// The platform-typed-array view is only available under GOOS=js (see
// bridge_js.go); the Go-side helpers in this file work on any platform and
// are what bridge_js.go's exported functions call into.
package bridge

import (
	"encoding/json"

	"github.com/saferwall/dap2"
)

// DatasetJSON renders a parsed Dataset schema as a JSON-shaped object
// (maps with string keys, arrays, primitives), honoring guarantee 2 of
// spec.md §4.9.
func DatasetJSON(ds *dap2.Dataset) ([]byte, error) {
	return json.Marshal(ds)
}

// AttributesJSON renders a parsed DAS as a JSON-shaped object.
func AttributesJSON(das *dap2.DAS) ([]byte, error) {
	return json.Marshal(das)
}

// VariableView is the host-facing projection of one decoded variable: its
// kind name, its dimensions, and (lazily, by the caller) one of the typed
// slice accessors on Array. It carries no copy of the backing storage —
// Array's accessors alias the Decoder's own buffers.
type VariableView struct {
	Name        string            `json:"name"`
	Kind        string            `json:"kind"`
	Dims        []dap2.Dimension  `json:"dims"`
	Coordinates map[string]string `json:"coordinates,omitempty"` // coord name -> kind, for the host to pick the right typed view
}

// Views builds the host-facing metadata for every decoded variable in
// result, in schema order. The caller fetches the actual numeric data via
// Array's typed accessors (Bytes, Int16s, ...), which bridge_js.go copies
// into new platform typed arrays of the matching element kind; the host
// receives a copy, not a view of the decoded storage.
func Views(result *dap2.DecodeResult) []VariableView {
	out := make([]VariableView, 0, len(result.Order))
	for _, name := range result.Order {
		v, ok := result.Variables[name]
		if !ok {
			continue
		}
		vv := VariableView{Name: name, Kind: v.Kind.String(), Dims: v.Dims}
		if len(v.Coordinates) > 0 {
			vv.Coordinates = make(map[string]string, len(v.Coordinates))
			for cname, arr := range v.Coordinates {
				vv.Coordinates[cname] = arr.Kind().String()
			}
		}
		out = append(out, vv)
	}
	return out
}
