package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dotcommander/azchat/internal/errs"
	"github.com/dotcommander/azchat/internal/present"
)

func handleError(err error) {
	// exhaust stdin
	if !present.IsInputTTY() {
		_, _ = io.ReadAll(os.Stdin)
	}

	format := "\n%s\n\n"

	var merr errs.Error
	if errors.As(err, &merr) {
		styles := present.StderrStyles()
		fmt.Fprintf(
			os.Stderr,
			format+"%s\n\n",
			styles.ErrPadding.Render(styles.ErrorHeader.String(), merr.Reason),
			styles.ErrPadding.Render(styles.ErrorDetails.Render(err.Error())),
		)
		return
	}

	fmt.Fprintf(os.Stderr, format, present.StderrStyles().ErrPadding.Render(present.StderrStyles().ErrorDetails.Render(err.Error())))
}
