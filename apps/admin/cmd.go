package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Melvinkheturus/examinerpro-web-sub001/core/calculation"
	"github.com/Melvinkheturus/examinerpro-web-sub001/core/examiner"
	"github.com/Melvinkheturus/examinerpro-web-sub001/core/report"
)

var (
	isTerminalFunc = term.IsTerminal // mockable

	errHelp           = errors.New("help provided")
	errTerminalOutput = errors.New("refusing to write binary output to a terminal; use -o FILE or redirect stdout")
)

type commandLine struct {
	db          *sqlx.DB
	examinerSvc *examiner.Service
	calcSvc     *calculation.Service
	reportSvc   *report.Service
	stdout      *os.File
}

func (cli *commandLine) run(args []string) error {
	root := cli.rootCmd()
	if len(args) > 0 {
		args = args[1:]
	}
	root.SetArgs(args)
	return root.Execute()
}

func (cli *commandLine) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "ExaminerPro administration",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Usage()
			return errHelp
		},
	}
	root.SetOut(cli.stdout)

	root.AddCommand(
		&cobra.Command{
			Use:                "migrate COMMAND [ARGS...]",
			Short:              "Run a goose migration command (up, down, status, ...)",
			DisableFlagParsing: true,
			RunE: func(cmd *cobra.Command, args []string) error {
				if len(args) == 0 {
					_ = cmd.Usage()
					return errHelp
				}
				return cli.migrate(args)
			},
		},
		&cobra.Command{
			Use:   "import-legacy FILE.json",
			Short: "Import legacy calculation documents (a JSON object or an array of them)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return cli.importLegacy(cmd.Context(), cmd.OutOrStdout(), args[0])
			},
		},
		cli.reportCmd(),
		cli.exportCmd(),
	)
	return root
}

func (cli *commandLine) reportCmd() *cobra.Command {
	var examinerRef, kind, calcID, output string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render a PDF report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.report(cmd.Context(), report.Kind(kind), examinerRef, calcID, output)
		},
	}
	cmd.Flags().StringVar(&examinerRef, "examiner", "", "Examiner id or code (history reports)")
	cmd.Flags().StringVar(&kind, "kind", string(report.KindHistory), "Report kind: history, single or all")
	cmd.Flags().StringVar(&calcID, "calculation", "", "Calculation id (single reports)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	return cmd
}

func (cli *commandLine) exportCmd() *cobra.Command {
	var examinerRef, output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export calculation history as XLSX",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.export(cmd.Context(), examinerRef, output)
		},
	}
	cmd.Flags().StringVar(&examinerRef, "examiner", "", "Examiner id or code (default: everyone)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	return cmd
}

// findExaminer accepts an examiner's id or code.
func (cli *commandLine) findExaminer(ctx context.Context, ref string) (examiner.Examiner, error) {
	ex, err := cli.examinerSvc.GetByID(ctx, ref)
	if errors.Cause(err) == examiner.ErrNotFound {
		ex, err = cli.examinerSvc.GetByCode(ctx, ref)
	}
	return ex, err
}

// openOutput opens path for writing; an empty path (or "-") is stdout, unless it is a terminal.
func (cli *commandLine) openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		if isTerminalFunc(int(cli.stdout.Fd())) {
			return nil, errTerminalOutput
		}
		return nopCloser{cli.stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "creating output file")
	}
	return f, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

func (cli *commandLine) importLegacy(ctx context.Context, out io.Writer, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "reading legacy documents")
	}
	docs, err := cli.calcSvc.ImportLegacy(ctx, raw)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "imported %d document(s)\n", len(docs))
	return nil
}

func (cli *commandLine) report(ctx context.Context, kind report.Kind, examinerRef, calcID, output string) error {
	opts := cli.reportSvc.Options("")

	var doc *report.Document
	var err error
	switch kind {
	case report.KindHistory:
		if strings.TrimSpace(examinerRef) == "" {
			return errors.New("--examiner is required for history reports")
		}
		var ex examiner.Examiner
		if ex, err = cli.findExaminer(ctx, examinerRef); err != nil {
			return err
		}
		doc, err = cli.reportSvc.ExaminerHistory(ctx, ex.ID, opts)
	case report.KindSingle:
		if strings.TrimSpace(calcID) == "" {
			return errors.New("--calculation is required for single reports")
		}
		doc, err = cli.reportSvc.SingleCalculation(ctx, calcID, opts)
	case report.KindAll:
		doc, err = cli.reportSvc.AllExaminers(ctx, opts)
	default:
		return errors.Errorf("unknown report kind %q (expected history, single or all)", kind)
	}
	if err != nil {
		return err
	}

	w, err := cli.openOutput(output)
	if err != nil {
		return err
	}
	if err = cli.reportSvc.RenderPDF(ctx, w, doc); err != nil {
		_ = w.Close()
		return errors.Wrap(err, "rendering report")
	}
	return w.Close()
}

func (cli *commandLine) export(ctx context.Context, examinerRef, output string) error {
	var examinerID string
	if strings.TrimSpace(examinerRef) != "" {
		ex, err := cli.findExaminer(ctx, examinerRef)
		if err != nil {
			return err
		}
		examinerID = ex.ID
	}

	w, err := cli.openOutput(output)
	if err != nil {
		return err
	}
	if err = cli.reportSvc.Export(ctx, w, examinerID); err != nil {
		_ = w.Close()
		return errors.Wrap(err, "exporting history")
	}
	return w.Close()
}
