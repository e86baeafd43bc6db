// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/mavensync/mavensync/cmd/mavensync"

func main() {
	cmd.Execute()
}
