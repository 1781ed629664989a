package main

import (
	"fmt"
	"os"

	_ "github.com/mtibben/androiddnsfix"
	"github.com/nojima/httpform-go"
	"github.com/pkg/errors"
)

func main() {
	if err := httpform.Main(&httpform.Options{}); err != nil {
		// The page already shows the failure message.
		if errors.Cause(err) != httpform.ErrSubmissionFailed {
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		}
		os.Exit(1)
	}
}
