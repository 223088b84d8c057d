// Copyright 2019-2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

//go:build alloccnt_off

package alloccnt

// Enabled is false: the Counter only passes the calls through and all the
// measured deltas are zero.
const Enabled = false

func init() {
	BuildTags = append(BuildTags, "alloccnt_off")
}
