package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/kubeprofiles/profilectl/pkg/deployer"
	pkgerrors "github.com/kubeprofiles/profilectl/pkg/errors"
	"github.com/kubeprofiles/profilectl/pkg/profile"
	"github.com/kubeprofiles/profilectl/pkg/serializer"
)

// parseOutputFormat extracts and validates the output format from CLI flags.
func parseOutputFormat(cmd *cli.Command) (serializer.Format, error) {
	outFormat := serializer.Format(cmd.String("format"))
	if outFormat.IsUnknown() {
		return "", pkgerrors.Newf(pkgerrors.ErrCodeValidation,
			"unknown output format: %q, valid formats are: %s",
			outFormat, strings.Join(serializer.SupportedFormats(), ", "))
	}
	return outFormat, nil
}

// loadProfile loads and validates the profile named by the --profile flag.
func loadProfile(cmd *cli.Command) (*profile.Profile, error) {
	return profile.Load(cmd.String("profile"))
}

// PrintFailure renders the terminal failure block: human detail, captured
// external output, and a final machine-parsable cause line.
func PrintFailure(w io.Writer, err error) {
	fmt.Fprintf(w, "error: %v\n", err)

	var stageErr *deployer.StageError
	if errors.As(err, &stageErr) {
		if stageErr.Output != "" {
			fmt.Fprintf(w, "\nlast output:\n%s\n", indent(stageErr.Output))
		}
		fmt.Fprintf(w, "\ncause=%s stage=%s\n", pkgerrors.CodeOf(err), stageErr.Stage)
		return
	}

	fmt.Fprintf(w, "\ncause=%s\n", pkgerrors.CodeOf(err))
}

func indent(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = "  " + line
	}
	return strings.Join(lines, "\n")
}
