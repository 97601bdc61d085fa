// SPDX-License-Identifier: MPL-2.0

package main

import "github.com/jaehyunup/envfile/cmd/envfile"

func main() {
	cmd.Execute()
}
