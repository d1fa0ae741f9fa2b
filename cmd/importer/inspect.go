package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/athletix/internal/charset"
	"github.com/JonMunkholm/athletix/internal/core"
	"github.com/JonMunkholm/athletix/internal/rows"
)

// readInput reads path ("-" for stdin) up to max bytes.
func readInput(cmd *cobra.Command, path string, max int64) ([]byte, error) {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, withCode(exitUsage, err)
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if int64(len(data)) > max {
		return nil, withCode(exitUsage, fmt.Errorf("%w: %s is larger than %d bytes", core.ErrFileTooLarge, path, max))
	}
	return data, nil
}

func normalizer(state *loaded) (*charset.Normalizer, error) {
	opts, err := core.OptionsFromConfig(state.cfg)
	if err != nil {
		return nil, withCode(exitUsage, err)
	}
	return opts.Normalizer, nil
}

func newNormalizeCmd(state *loaded) *cobra.Command {
	return &cobra.Command{
		Use:   "normalize FILE",
		Short: "Decode a file to UTF-8 and print it",
		Long: "Decodes FILE as UTF-8 when the text looks right, otherwise with the legacy\n" +
			"code page (ENCODING_LEGACY). The chosen encoding is logged to stderr.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0], state.cfg.Import.MaxFileSize)
			if err != nil {
				return err
			}
			n, err := normalizer(state)
			if err != nil {
				return err
			}

			res := n.Normalize(data)
			logArgs := []any{"file", args[0], "encoding", res.Encoding}
			if res.Ambiguous {
				logArgs = append(logArgs, "legacy", n.LegacyName(), "warning", core.MessageEncodingAmbiguous.Code)
			}
			slog.Info("normalized", logArgs...)

			_, err = io.WriteString(cmd.OutOrStdout(), res.Text)
			return err
		},
	}
}

type parseReport struct {
	File      string           `json:"file"`
	Encoding  string           `json:"encoding"`
	Ambiguous bool             `json:"ambiguous,omitempty"`
	Format    rows.Format      `json:"format"`
	Schema    string           `json:"schema"`
	Delimiter string           `json:"delimiter"`
	Columns   []parsedColumn   `json:"columns"`
	Rows      []parsedRow      `json:"rows"`
	Errors    []*rows.RowError `json:"errors"`
}

type parsedColumn struct {
	Index int        `json:"index"`
	Name  string     `json:"name"`
	Field rows.Field `json:"field,omitempty"`
}

type parsedRow struct {
	Line   int                   `json:"line"`
	Values map[rows.Field]string `json:"values"`
}

func newParseCmd(state *loaded) *cobra.Command {
	var format, schemaName string

	cmd := &cobra.Command{
		Use:   "parse FILE",
		Short: "Show how a file's header and rows are understood",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = state.cfg.Import.DefaultFormat
			}
			f, err := rows.ParseFormat(format)
			if err != nil {
				return withCode(exitUsage, err)
			}
			schema, err := rows.ParseSchema(schemaName)
			if err != nil {
				return withCode(exitUsage, err)
			}

			data, err := readInput(cmd, args[0], state.cfg.Import.MaxFileSize)
			if err != nil {
				return err
			}
			n, err := normalizer(state)
			if err != nil {
				return err
			}
			text := n.Normalize(data)

			report, err := parse(text, f, schema)
			if err != nil {
				return withCode(exitUsage, err)
			}
			report.File = args[0]
			if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
				return err
			}
			if len(report.Errors) > 0 {
				return withCode(exitRowErrors, fmt.Errorf("%d of %d rows could not be parsed",
					len(report.Errors), len(report.Errors)+len(report.Rows)))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "Header dialect: pzla or international (default IMPORT_DEFAULT_FORMAT)")
	cmd.Flags().StringVar(&schemaName, "schema", rows.StartlistSchema.Name, "Row schema: startlist or results")
	return cmd
}

// parse runs the row parser over normalized text and collects every row.
func parse(text charset.Result, format rows.Format, schema rows.Schema) (*parseReport, error) {
	sheet, err := rows.NewParser(format, schema).Parse(text.Text)
	if err != nil {
		return nil, err
	}

	report := &parseReport{
		Encoding:  text.Encoding,
		Ambiguous: text.Ambiguous,
		Format:    format,
		Schema:    schema.Name,
		Delimiter: string(sheet.Delimiter),
		Rows:      []parsedRow{},
		Errors:    []*rows.RowError{},
	}
	for _, c := range sheet.Columns {
		report.Columns = append(report.Columns, parsedColumn{Index: c.Index, Name: c.Name, Field: c.Field})
	}

	fields := sheet.Fields()
	for row, err := range sheet.All() {
		if err != nil {
			var rowErr *rows.RowError
			if !errors.As(err, &rowErr) {
				return nil, err
			}
			report.Errors = append(report.Errors, rowErr)
			continue
		}
		values := make(map[rows.Field]string, len(fields))
		for _, f := range fields {
			if v, ok := row.Get(f); ok {
				values[f] = v
			}
		}
		report.Rows = append(report.Rows, parsedRow{Line: row.Line, Values: values})
	}
	return report, nil
}

// joinSpecs splits repeated or comma separated flag values.
func joinSpecs(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
