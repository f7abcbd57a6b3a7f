// Command tlbsim replays memory access traces through a shared TLB.
package main

import "github.com/sarchlab/tlbsim/cmd"

func main() {
	cmd.Execute()
}
