// Copyright 2019-2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

//go:build !alloccnt_off

package alloccnt

// Enabled is true if the Counter records allocator calls.
// Build with -tags alloccnt_off to turn counting into a no-op.
const Enabled = true

func init() {
	BuildTags = append(BuildTags, "counting")
}
