package main

import (
	"io"
	"os"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run dispatches args to a command and returns the process exit code.
// Unknown commands print help and exit with a usage error.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		return runHelp(nil, stdout)
	}

	cmd, cmdArgs := args[0], args[1:]
	switch cmd {
	case CmdNameRender:
		return runRender(cmdArgs, stdin, stdout, stderr)
	case CmdNameValidate:
		return runValidate(cmdArgs, stdin, stdout, stderr)
	case CmdNameVersion, AliasVersionShort, AliasVersionLong:
		return runVersion(cmdArgs, stdout, stderr)
	case CmdNameHelp, AliasHelpShort, AliasHelpLong:
		return runHelp(cmdArgs, stdout)
	}
	return runHelp(args[:1], stdout)
}
