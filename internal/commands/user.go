package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/ctfd-admin/internal/audit"
	"github.com/otherjamesbrown/ctfd-admin/internal/client/ctfd"
	"github.com/otherjamesbrown/ctfd-admin/internal/errors"
)

// UserCommand creates the user command group.
func UserCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
		Long:  "Manage CTFd users: create, bulk-add, list, get, update, bulk-edit, delete",
	}

	cmd.AddCommand(userCreateCommand(opts))
	cmd.AddCommand(userBulkAddCommand(opts))
	cmd.AddCommand(userListCommand(opts))
	cmd.AddCommand(userGetCommand(opts))
	cmd.AddCommand(userUpdateCommand(opts))
	cmd.AddCommand(userBulkEditCommand(opts))
	cmd.AddCommand(userDeleteCommand(opts))

	return cmd
}

func userCreateCommand(opts *globalOptions) *cobra.Command {
	var (
		flagName     string
		flagEmail    string
		flagPassword string
		flagType     string
		flagVerified bool
		flagHidden   bool
		flagBanned   bool
		flagNotify   bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		Long:  "Create a single user. With --notify CTFd emails the user their credentials.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.load(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			fields := ctfd.NewUserFields(flagName, flagEmail, flagPassword)
			fields.Type = flagType
			fields.Verified = flagVerified
			fields.Hidden = flagHidden
			fields.Banned = flagBanned

			notify := e.cfg.Notify
			if cmd.Flags().Changed("notify") {
				notify = flagNotify
			}

			return runUserCreate(cmd, e, fields, notify)
		},
	}

	cmd.Flags().StringVar(&flagName, "name", "", "User name (required)")
	cmd.Flags().StringVar(&flagEmail, "email", "", "User email (required)")
	cmd.Flags().StringVar(&flagPassword, "password", "", "User password (required)")
	cmd.Flags().StringVar(&flagType, "type", "user", "Account type: user or admin")
	cmd.Flags().BoolVar(&flagVerified, "verified", true, "Mark the email as verified")
	cmd.Flags().BoolVar(&flagHidden, "hidden", false, "Hide the user from the scoreboard")
	cmd.Flags().BoolVar(&flagBanned, "banned", false, "Ban the user")
	cmd.Flags().BoolVar(&flagNotify, "notify", true, "Email the user their credentials (default from config)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func runUserCreate(cmd *cobra.Command, e *env, fields ctfd.UserFields, notify bool) error {
	startTime := time.Now()

	session, err := e.session()
	if err != nil {
		return err
	}

	resp, err := session.CreateUser(cmd.Context(), fields, notify)
	op := audit.Operation{
		Type:     "user_create",
		Instance: session.BaseURL(),
		Command:  commandLine(cmd, "--name", fields.Name, "--email", fields.Email),
		Parameters: map[string]interface{}{
			"name":     fields.Name,
			"email":    fields.Email,
			"password": fields.Password,
			"type":     fields.Type,
			"notify":   notify,
		},
	}
	if err != nil {
		op.Outcome = audit.OutcomeFailure
		op.Duration = time.Since(startTime)
		op.Error = err
		_ = e.audit.LogOperation(op)
		return apiError("create user", err)
	}

	op.Outcome = outcome(resp)
	op.Duration = time.Since(startTime)
	_ = e.audit.LogOperation(op)

	return printResponse(e.out, e.cfg.OutputFormat, resp)
}

func userListCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every user",
		Long:  "List every user, walking all pages of the listing.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.load(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			session, err := e.session()
			if err != nil {
				return err
			}

			users, err := session.ListAllUsers(cmd.Context())
			if err != nil {
				return apiError("list users", err)
			}
			return printUsers(e.out, e.cfg.OutputFormat, users)
		},
	}
}

func userGetCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <user_id>",
		Short: "Show one user",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.NewUsageError(cmd.CommandPath() + " <user_id>")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.load(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			session, err := e.session()
			if err != nil {
				return err
			}

			resp, err := session.GetUser(cmd.Context(), args[0])
			if err != nil {
				return apiError("get user", err)
			}
			return printResponse(e.out, e.cfg.OutputFormat, resp)
		},
	}
}

func userUpdateCommand(opts *globalOptions) *cobra.Command {
	var flagSet []string

	cmd := &cobra.Command{
		Use:   "update <user_id>",
		Short: "Update one user",
		Long: `Update fields of one user. Each --set key=value becomes a field of the
PATCH body; JSON literals (true, 3, null) keep their type.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.NewUsageError(cmd.CommandPath() + " <user_id> --set key=value [--set key=value ...]")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.load(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			patch, err := requirePatch(flagSet)
			if err != nil {
				return err
			}
			return runUserUpdate(cmd, e, args[0], patch)
		},
	}

	cmd.Flags().StringArrayVar(&flagSet, "set", nil, "Field to change as key=value (repeatable)")

	return cmd
}

func runUserUpdate(cmd *cobra.Command, e *env, userID string, patch ctfd.Patch) error {
	startTime := time.Now()

	session, err := e.session()
	if err != nil {
		return err
	}

	resp, err := session.UpdateUser(cmd.Context(), userID, patch)
	op := audit.Operation{
		Type:       "user_update",
		Instance:   session.BaseURL(),
		Command:    commandLine(cmd, userID),
		Parameters: map[string]interface{}{"user_id": userID, "patch": map[string]interface{}(patch)},
	}
	if err != nil {
		op.Outcome = audit.OutcomeFailure
		op.Duration = time.Since(startTime)
		op.Error = err
		_ = e.audit.LogOperation(op)
		return apiError("update user", err)
	}

	op.Outcome = outcome(resp)
	op.Duration = time.Since(startTime)
	_ = e.audit.LogOperation(op)

	return printResponse(e.out, e.cfg.OutputFormat, resp)
}

// requirePatch parses --set flags and rejects an empty patch.
func requirePatch(assignments []string) (ctfd.Patch, error) {
	if len(assignments) == 0 {
		return nil, errors.NewValidationError("at least one --set key=value is required", "Example: --set hidden=true")
	}
	patch, err := parseSet(assignments)
	if err != nil {
		return nil, errors.NewValidationError(err.Error(), "Example: --set website=https://example.com")
	}
	return patch, nil
}

// deleteUsage is printed when user delete is missing arguments.
const deleteUsage = "ctfd-admin user delete <url> <admin_token> <user_id>"

func userDeleteCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <url> <admin_token> <user_id>",
		Short: "Delete one user",
		Long: `Delete one user. The instance URL and admin token are given as arguments
and take precedence over --url, --token and the config file.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 3 {
				return errors.NewUsageError(deleteUsage)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.load(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			return runUserDelete(cmd, e, args[0], args[1], args[2])
		},
	}
}

func runUserDelete(cmd *cobra.Command, e *env, url, token, userID string) error {
	startTime := time.Now()

	session, err := e.sessionFor(url, token)
	if err != nil {
		return err
	}

	resp, err := session.DeleteUser(cmd.Context(), userID)
	op := audit.Operation{
		Type:       "user_delete",
		Instance:   session.BaseURL(),
		Command:    commandLine(cmd, session.BaseURL(), "***", userID),
		Parameters: map[string]interface{}{"user_id": userID},
	}
	if err != nil {
		op.Outcome = audit.OutcomeFailure
		op.Duration = time.Since(startTime)
		op.Error = err
		_ = e.audit.LogOperation(op)
		return apiError("delete user", err)
	}

	op.Outcome = outcome(resp)
	op.Duration = time.Since(startTime)
	_ = e.audit.LogOperation(op)

	return printResponse(e.out, e.cfg.OutputFormat, resp)
}
