// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

//go:build js && wasm

// Command dap2wasm builds the WebAssembly host bridge: it registers the
// dap2 entry points on the JS global object and blocks forever, the way a
// WASM instance must stay alive to keep serving calls from its host page.
package main

import "github.com/saferwall/dap2/bridge"

func main() {
	bridge.Register()
	select {}
}
