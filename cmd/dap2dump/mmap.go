// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"os"

	mmap "github.com/edsrzf/mmap-go"
)

// ReadFile memory-maps a local DAS/DDS/DODS response cached on disk and
// copies its full contents into a heap buffer owned by the caller, for
// offline/replay inspection. The mapping is unmapped before ReadFile
// returns, since parse/decode calls outlive this function's stack frame.
func ReadFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() == 0 {
		return nil, nil
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer data.Unmap()

	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}
