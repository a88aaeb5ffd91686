package cmd

import (
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/vmarkdev/vmark/internal/config/autoconfig"
)

// invoke resolves fn's dependencies from a fresh container. Commands
// are short-lived, so no state is shared between runs.
func invoke(fn interface{}) error {
	return autoconfig.NewBuilder().Invoke(fn)
}

// readDocument reads a file argument, with "-" standing for stdin.
func readDocument(fileName string) ([]byte, error) {
	if fileName == "-" {
		data, err := io.ReadAll(os.Stdin)
		return data, errors.Wrap(err, "read from stdin")
	}
	data, err := os.ReadFile(fileName)
	return data, errors.Wrapf(err, "read file %q", fileName)
}
