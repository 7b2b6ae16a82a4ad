// SPDX-License-Identifier: MPL-2.0

// Command relprep prepares notion-sync releases.
package main

import cmd "github.com/notion-sync/relprep/cmd/relprep"

func main() {
	cmd.Execute()
}
