// SPDX-License-Identifier: MPL-2.0

package main

import cmd "blockdata-cli/cmd/blockdata"

func main() {
	cmd.Execute()
}
