package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Harshitk-cp/mentora/internal/pipeline"
	"github.com/Harshitk-cp/mentora/internal/service"
	"github.com/spf13/cobra"
)

func newSchemaCmd() *cobra.Command {
	var variant string
	cmd := &cobra.Command{
		Use:   "schema <service>",
		Short: "Show the questionnaire fields in feature column order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := service.Variant(strings.ToLower(variant))
			if v != service.VariantAPI && v != service.VariantCLI {
				return fmt.Errorf("--variant must be api or cli")
			}
			def, err := lookup(args[0], v)
			if err != nil {
				return err
			}
			printSchema(cmd.OutOrStdout(), def.Schema)
			return nil
		},
	}
	cmd.Flags().StringVar(&variant, "variant", string(service.VariantCLI), "definition variant (api or cli)")
	return cmd
}

func printSchema(w io.Writer, s *pipeline.Schema) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tCOLUMN\tKIND\tSOURCE\tRANGE\tDEFAULT\tFALLBACK")
	for _, f := range s.Fields() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			f.Name, orDash(f.Column), f.Kind, source(f), rangeText(f.Range), defaultText(f.Default), orDash(f.Fallback))
	}
	_ = tw.Flush()
}

func source(f pipeline.Field) string {
	var parts []string
	switch {
	case f.Required:
		parts = append(parts, "required")
	case f.Optional:
		parts = append(parts, "optional")
	}
	if f.Profile != "" {
		parts = append(parts, "profile:"+string(f.Profile))
	}
	if f.Estimate != nil {
		parts = append(parts, "estimated")
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ",")
}

func rangeText(r *pipeline.Range) string {
	if r == nil {
		return "-"
	}
	return fmt.Sprintf("%g-%g", r.Min, r.Max)
}

func defaultText(v any) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprint(v)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
