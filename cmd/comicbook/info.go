package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/yuanying/comicbook/internal/comic"
)

type infoReport struct {
	File           string         `json:"file" yaml:"file"`
	Metadata       comic.Metadata `json:"metadata" yaml:"metadata"`
	MetadataSource string         `json:"metadataSource" yaml:"metadataSource"`
	Layout         string         `json:"layout" yaml:"layout"`
	Pages          []pageReport   `json:"pages" yaml:"pages"`
}

type pageReport struct {
	ID   string `json:"id" yaml:"id"`
	Size int64  `json:"size" yaml:"size"`
}

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <file.cbz>",
		Short: "Show book metadata and page list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := readGlobalOptions(cmd)
			if err != nil {
				return err
			}
			output, _ := cmd.Flags().GetString("output")
			if output != "text" && output != "json" && output != "yaml" {
				return fmt.Errorf("invalid --output %q: must be text, json or yaml", output)
			}

			book, cleanup, err := openBook(cmd.Context(), args[0], nil, opts.Logger)
			if err != nil {
				return err
			}
			defer cleanup()

			return writeInfo(cmd.OutOrStdout(), newInfoReport(args[0], book), output)
		},
	}
	cmd.Flags().StringP("output", "o", "text", "Output format: text, json, yaml")
	return cmd
}

func newInfoReport(path string, book *comic.Book) infoReport {
	report := infoReport{
		File:           filepath.Base(path),
		Metadata:       book.Metadata,
		MetadataSource: book.MetadataSource.String(),
		Layout:         book.Rendition.Layout,
		Pages:          make([]pageReport, len(book.Sections)),
	}
	for i, s := range book.Sections {
		report.Pages[i] = pageReport{ID: s.ID, Size: s.Size}
	}
	return report
}

func writeInfo(w io.Writer, report infoReport, output string) error {
	switch output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	md := report.Metadata
	fmt.Fprintf(tw, "Title:\t%s\n", md.Title)
	for _, field := range []struct{ label, value string }{
		{"Author:", md.Author},
		{"Publisher:", md.Publisher},
		{"Language:", md.Language},
		{"Published:", md.Published},
	} {
		if field.value != "" {
			fmt.Fprintf(tw, "%s\t%s\n", field.label, field.value)
		}
	}
	fmt.Fprintf(tw, "Metadata:\t%s\n", report.MetadataSource)
	fmt.Fprintf(tw, "Layout:\t%s\n", report.Layout)
	fmt.Fprintf(tw, "Pages:\t%d\n", len(report.Pages))
	for i, p := range report.Pages {
		fmt.Fprintf(tw, "  %d\t%s\t%d bytes\n", i+1, p.ID, p.Size)
	}
	return tw.Flush()
}
