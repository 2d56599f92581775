// Command lintscope resolves the severity of lint issues for files and
// directories from directory-scoped directive files.
//
// Examples:
//
//	lintscope issues --catalog issues.yml
//	lintscope severity --catalog issues.yml src/main
//	lintscope explain --catalog issues.yml --Werror HardcodedText src/main
//	lintscope set --catalog issues.yml HardcodedText error app
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
