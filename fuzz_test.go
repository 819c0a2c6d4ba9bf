// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dap2

import "testing"

// FuzzParseDDS exercises the DDS parser with corpus-free native Go
// fuzzing; a crash or panic is the only failure mode we care about here,
// since every malformed input must come back as an error, never a panic.
func FuzzParseDDS(f *testing.F) {
	f.Add("Dataset { Float32 latitude[latitude = 5]; } ds;")
	f.Add("Dataset { Grid { ARRAY: Float32 t[time=3][lat=2]; MAPS: Int32 time[time=3]; Float32 lat[lat=2]; } t; } ds;")
	f.Add("Dataset {} ds;")
	f.Add("not a dds at all")
	f.Fuzz(func(t *testing.T, text string) {
		_, _ = ParseDDS(text)
	})
}

// FuzzParseDAS exercises the DAS parser the same way.
func FuzzParseDAS(f *testing.F) {
	f.Add(`Attributes { time { String units "seconds since 1970-01-01 00:00:00 UTC"; } }`)
	f.Add(`Attributes { NC_GLOBAL { Float32 valid_range 271.15, 373.15; } }`)
	f.Add("garbage")
	f.Fuzz(func(t *testing.T, text string) {
		_, _ = ParseDAS(text, nil)
	})
}

// FuzzParseDODS exercises SplitDODS plus a best-effort decode against
// whatever schema its own prologue declares.
func FuzzParseDODS(f *testing.F) {
	f.Add([]byte("Dataset { Int32 v[v = 1]; } d;\nData:\n\x00\x00\x00\x01\x00\x00\x00\x01\x00\x00\x00\x2A"))
	f.Add([]byte("no data marker here"))
	f.Fuzz(func(t *testing.T, data []byte) {
		dec := NewDecoder(nil)
		_, _ = dec.Decode(data)
	})
}
