package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kirillkom/claimsense/internal/bootstrap"
	"github.com/kirillkom/claimsense/internal/config"
	"github.com/kirillkom/claimsense/internal/core/domain"
	"github.com/kirillkom/claimsense/internal/core/usecase"
	"github.com/kirillkom/claimsense/internal/infrastructure/directory"
	"github.com/kirillkom/claimsense/internal/infrastructure/export/xlsx"
	"github.com/kirillkom/claimsense/internal/infrastructure/extraction"
)

type cliOptions struct {
	directoryPath string
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}
	root := &cobra.Command{
		Use:           "claimctl",
		Short:         "Operate the claim demo from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.directoryPath, "directory", "", "user directory YAML (defaults to DIRECTORY_PATH or the built-in users)")

	root.AddCommand(
		newUsersCmd(opts),
		newEvaluateCmd(opts),
		newLedgerCmd(),
		newLanguageCmd(),
	)
	return root
}

func (o *cliOptions) loadDirectory() (*directory.Directory, error) {
	path := o.directoryPath
	if path == "" {
		path = config.Load().DirectoryPath
	}
	return directory.Load(path)
}

func newUsersCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List directory users and their remaining coverage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := opts.loadDirectory()
			if err != nil {
				return err
			}
			users, err := dir.List(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "MOBILE\tNAME\tPOLICY\tTYPE\tREMAINING\tBANK")
			for _, u := range users {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%t\n",
					u.MobileNumber,
					u.FullName,
					u.Policy.PolicyNumber,
					u.Policy.Type,
					u.Policy.RemainingCoverage(),
					u.BankAccount.AccountRef != "",
				)
			}
			return tw.Flush()
		},
	}
}

func newEvaluateCmd(opts *cliOptions) *cobra.Command {
	var (
		mobile       string
		documentPath string
		nationalID   string
	)
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Verify an extracted bill against a user and decide eligibility",
		Long: "Reads an extraction result (the JSON the document service returns), runs the\n" +
			"verification gates for the given user and prints the assessment.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := opts.loadDirectory()
			if err != nil {
				return err
			}
			record, err := dir.Lookup(cmd.Context(), mobile)
			if err != nil {
				return fmt.Errorf("lookup %s: %w", mobile, err)
			}
			doc, err := readExtractedDocument(documentPath)
			if err != nil {
				return err
			}

			session := domain.Session{Profile: record.Profile()}
			assessment := domain.ClaimAssessment{
				Document:     doc,
				Verification: usecase.VerifyDocument(session, doc, record),
			}
			if assessment.Verification.Verified {
				var id *string
				if cmd.Flags().Changed("national-id") {
					id = &nationalID
				}
				decision := usecase.EvaluateClaim(session, doc, record, id)
				assessment.Decision = &decision
			}
			return writeIndentedJSON(cmd.OutOrStdout(), assessment)
		},
	}
	cmd.Flags().StringVar(&mobile, "mobile", "", "10-digit mobile number of the claimant")
	cmd.Flags().StringVar(&documentPath, "document", "", "path to the extraction JSON, or - for stdin")
	cmd.Flags().StringVar(&nationalID, "national-id", "", "national ID to check before deciding")
	_ = cmd.MarkFlagRequired("mobile")
	_ = cmd.MarkFlagRequired("document")
	return cmd
}

func readExtractedDocument(path string) (domain.ExtractedDocument, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return domain.ExtractedDocument{}, fmt.Errorf("read document: %w", err)
	}

	var wire extraction.WireDocument
	if err := json.Unmarshal(data, &wire); err != nil {
		return domain.ExtractedDocument{}, fmt.Errorf("decode document: %w", err)
	}
	if strings.TrimSpace(wire.Error) != "" {
		return domain.ExtractedDocument{}, fmt.Errorf("extraction result carries an error: %s", wire.Error)
	}
	return wire.ToDomain(), nil
}

func newLedgerCmd() *cobra.Command {
	var mobile string
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect the claim ledger",
	}
	ledgerCmd.PersistentFlags().StringVar(&mobile, "mobile", "", "only claims of this mobile number")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Print ledger entries oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := loadLedger(cmd, mobile)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tMOBILE\tPOLICY\tAMOUNT\tELIGIBLE\tRISK\tSUBMITTED")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%t\t%s\t%s\n",
					e.ID,
					e.MobileNumber,
					e.PolicyNumber,
					e.Decision.BillAmount,
					e.Decision.Eligible,
					e.Decision.RiskTier,
					e.SubmittedAt.Format("2006-01-02 15:04:05"),
				)
			}
			return tw.Flush()
		},
	}

	var out string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write ledger entries to an xlsx workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := loadLedger(cmd, mobile)
			if err != nil {
				return err
			}
			data, err := xlsx.NewExporter().Export(entries)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d claims to %s\n", len(entries), out)
			return nil
		},
	}
	exportCmd.Flags().StringVar(&out, "out", "claims.xlsx", "output workbook path")

	ledgerCmd.AddCommand(listCmd, exportCmd)
	return ledgerCmd
}

func loadLedger(cmd *cobra.Command, mobile string) ([]domain.ClaimLedgerEntry, error) {
	ledger, closeLedger, err := bootstrap.OpenLedger(cmd.Context(), config.Load())
	if err != nil {
		return nil, err
	}
	defer closeLedger()

	entries, err := ledger.List(cmd.Context())
	if err != nil {
		return nil, err
	}
	if mobile == "" {
		return entries, nil
	}
	filtered := entries[:0]
	for _, e := range entries {
		if e.MobileNumber == mobile {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

func newLanguageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "language <text>",
		Short: "Show which reply language a message would get",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), usecase.DetectLanguage(strings.Join(args, " ")))
			return nil
		},
	}
}

func writeIndentedJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
