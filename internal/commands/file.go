package commands

import (
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/ctfd-admin/internal/audit"
	"github.com/otherjamesbrown/ctfd-admin/internal/errors"
)

// FileCommand creates the file command group.
func FileCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "file",
		Short: "Manage challenge files",
	}

	cmd.AddCommand(fileUploadCommand(opts))

	return cmd
}

func fileUploadCommand(opts *globalOptions) *cobra.Command {
	var (
		flagChallengeID int
		flagFile        string
	)

	cmd := &cobra.Command{
		Use:     "upload",
		Short:   "Attach a file to a challenge",
		Example: "  ctfd-admin file upload --challenge-id 1 --file ./test.txt",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagChallengeID <= 0 {
				return errors.NewValidationError(
					"--challenge-id must be a positive challenge ID",
					"Find the ID in the admin panel under Challenges.",
				)
			}

			e, err := opts.load(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			return runFileUpload(cmd, e, flagChallengeID, flagFile)
		},
	}

	cmd.Flags().IntVar(&flagChallengeID, "challenge-id", 0, "Challenge to attach the file to (required)")
	cmd.Flags().StringVar(&flagFile, "file", "", "Path of the file to upload (required)")
	_ = cmd.MarkFlagRequired("challenge-id")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runFileUpload(cmd *cobra.Command, e *env, challengeID int, path string) error {
	startTime := time.Now()

	session, err := e.session()
	if err != nil {
		return err
	}

	resp, err := session.UploadFile(cmd.Context(), challengeID, path)
	op := audit.Operation{
		Type:     "file_upload",
		Instance: session.BaseURL(),
		Command:  commandLine(cmd, "--challenge-id", strconv.Itoa(challengeID), "--file", path),
		Parameters: map[string]interface{}{
			"challenge_id": challengeID,
			"file":         filepath.Base(path),
		},
	}
	if err != nil {
		op.Outcome = audit.OutcomeFailure
		op.Duration = time.Since(startTime)
		op.Error = err
		_ = e.audit.LogOperation(op)
		return apiError("upload file", err)
	}

	op.Outcome = outcome(resp)
	op.Duration = time.Since(startTime)
	_ = e.audit.LogOperation(op)

	return printResponse(e.out, e.cfg.OutputFormat, resp)
}
