// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

//go:build js && wasm

package bridge

import (
	"syscall/js"

	"github.com/saferwall/dap2"
)

func jsError(msg string) js.Value {
	return js.Global().Get("Error").New(msg)
}

// typedArrayFor copies a decoded Array's numeric payload into a new
// platform-typed-array view whose element kind matches the DAP2 kind with
// no conversion, per spec.md §4.9's first guarantee. String/URL arrays are
// exposed as a plain JS array of strings instead.
func typedArrayFor(a dap2.Array) js.Value {
	switch a.Kind() {
	case dap2.KindByte:
		v := a.Bytes()
		out := js.Global().Get("Uint8Array").New(len(v))
		js.CopyBytesToJS(out, v)
		return out
	case dap2.KindInt16:
		v := a.Int16s()
		out := js.Global().Get("Int16Array").New(len(v))
		for i, x := range v {
			out.SetIndex(i, x)
		}
		return out
	case dap2.KindUInt16:
		v := a.UInt16s()
		out := js.Global().Get("Uint16Array").New(len(v))
		for i, x := range v {
			out.SetIndex(i, x)
		}
		return out
	case dap2.KindInt32:
		v := a.Int32s()
		out := js.Global().Get("Int32Array").New(len(v))
		for i, x := range v {
			out.SetIndex(i, x)
		}
		return out
	case dap2.KindUInt32:
		v := a.UInt32s()
		out := js.Global().Get("Uint32Array").New(len(v))
		for i, x := range v {
			out.SetIndex(i, int(x))
		}
		return out
	case dap2.KindFloat32:
		v := a.Float32s()
		out := js.Global().Get("Float32Array").New(len(v))
		for i, x := range v {
			out.SetIndex(i, x)
		}
		return out
	case dap2.KindFloat64:
		v := a.Float64s()
		out := js.Global().Get("Float64Array").New(len(v))
		for i, x := range v {
			out.SetIndex(i, x)
		}
		return out
	default: // String, URL
		v := a.Strings()
		out := js.Global().Get("Array").New(len(v))
		for i, s := range v {
			out.SetIndex(i, s)
		}
		return out
	}
}

// Register installs the dap2 entry points on the JS global object:
//
//	__dap2_parseDAS(text string) -> string (JSON)
//	__dap2_parseDDS(text string) -> string (JSON)
//	__dap2_parseDODS(bytes Uint8Array) -> {schema: string, variables: {name: {data: TypedArray|string[], kind: string, coordinates?: {name: TypedArray|string[]}}}}
//	__dap2_buildDODSURL(base string, constraint string) -> string
//
// No entry point performs network I/O; the host fetches DAS/DDS/DODS bytes
// itself and hands them to these functions.
func Register() {
	js.Global().Set("__dap2_parseDAS", js.FuncOf(func(_ js.Value, args []js.Value) any {
		if len(args) != 1 {
			return jsError("parseDAS requires 1 argument (string)")
		}
		das, err := dap2.ParseDAS(args[0].String(), nil)
		if err != nil {
			return jsError(err.Error())
		}
		out, err := AttributesJSON(das)
		if err != nil {
			return jsError(err.Error())
		}
		return string(out)
	}))

	js.Global().Set("__dap2_parseDDS", js.FuncOf(func(_ js.Value, args []js.Value) any {
		if len(args) != 1 {
			return jsError("parseDDS requires 1 argument (string)")
		}
		ds, err := dap2.ParseDDS(args[0].String())
		if err != nil {
			return jsError(err.Error())
		}
		out, err := DatasetJSON(ds)
		if err != nil {
			return jsError(err.Error())
		}
		return string(out)
	}))

	js.Global().Set("__dap2_parseDODS", js.FuncOf(func(_ js.Value, args []js.Value) any {
		if len(args) != 1 {
			return jsError("parseDODS requires 1 argument (Uint8Array)")
		}
		jsArr := args[0]
		data := make([]byte, jsArr.Get("length").Int())
		js.CopyBytesToGo(data, jsArr)

		dec := dap2.NewDecoder(nil)
		result, err := dec.Decode(data)
		if err != nil {
			return jsError(err.Error())
		}

		schemaJSON, err := DatasetJSON(result.Schema)
		if err != nil {
			return jsError(err.Error())
		}

		out := js.Global().Get("Object").New()
		out.Set("schema", string(schemaJSON))
		vars := js.Global().Get("Object").New()
		for _, name := range result.Order {
			v, ok := result.Variables[name]
			if !ok {
				continue
			}
			entry := js.Global().Get("Object").New()
			entry.Set("data", typedArrayFor(v.Data))
			entry.Set("kind", v.Kind.String())
			if len(v.Coordinates) > 0 {
				coords := js.Global().Get("Object").New()
				for cname, arr := range v.Coordinates {
					coords.Set(cname, typedArrayFor(arr))
				}
				entry.Set("coordinates", coords)
			}
			vars.Set(name, entry)
		}
		out.Set("variables", vars)
		return out
	}))

	js.Global().Set("__dap2_buildDODSURL", js.FuncOf(func(_ js.Value, args []js.Value) any {
		if len(args) < 1 {
			return jsError("buildDODSURL requires at least 1 argument (base string)")
		}
		base := args[0].String()
		constraint := ""
		if len(args) > 1 {
			constraint = args[1].String()
		}
		b, err := dap2.NewURLBuilder(base)
		if err != nil {
			return jsError(err.Error())
		}
		return b.DODSURL(constraint)
	}))
}
