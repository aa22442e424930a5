package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	turnblock "github.com/flexigpt/turnblock-go"
	"github.com/flexigpt/turnblock-go/spec"
)

func newPromptsCmd() *cobra.Command {
	var (
		asXML bool
		langs []string
		dir   string
	)
	cmd := &cobra.Command{
		Use:   "prompts",
		Short: "Print the block-format instructions for a system prompt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := turnblock.New()
			if err != nil {
				return err
			}
			defer rt.Close()

			if dir != "" {
				if err := rt.LoadPromptOverrides(cmd.Context(), dir); err != nil {
					return err
				}
			}

			f := &turnblock.PromptFilter{}
			for _, l := range langs {
				lang := spec.Lang(strings.ToLower(strings.TrimSpace(l)))
				if !rt.Handles(lang) {
					return fmt.Errorf("%w: %q", spec.ErrUnsupportedLang, l)
				}
				f.Langs = append(f.Langs, lang)
			}

			out := cmd.OutOrStdout()
			if asXML {
				s, err := rt.PromptsXML(cmd.Context(), f)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, s)
				return nil
			}

			ps, err := rt.Prompts(f)
			if err != nil {
				return err
			}
			for i, p := range ps {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "%s\n%s\n", panelStyle.Render("# "+p.Title), p.Text)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asXML, "xml", false, "render as a <blockFormats> XML section")
	cmd.Flags().StringSliceVar(&langs, "lang", nil, "only these block languages (repeatable)")
	cmd.Flags().StringVar(&dir, "dir", "", "directory of edited prompts (quiz.md, rpg.md, ...)")
	return cmd
}

func newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Print the llmtools-go tool definitions as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := turnblock.New()
			if err != nil {
				return err
			}
			defer rt.Close()

			b, err := json.MarshalIndent(rt.Tools(), "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	}
}
