package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/Harshitk-cp/mentora/internal/domain"
	"github.com/Harshitk-cp/mentora/internal/pipeline"
	"github.com/Harshitk-cp/mentora/internal/service"
	json "github.com/goccy/go-json"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func newPredictCmd(a *app) *cobra.Command {
	var (
		file        string
		interactive bool
		noSave      bool
		asJSON      bool
	)
	cmd := &cobra.Command{
		Use:   "predict <service>",
		Short: "Run a prediction from an answers file or interactive prompts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := lookup(args[0], service.VariantCLI)
			if err != nil {
				return err
			}
			if file == "" && !interactive {
				return fmt.Errorf("either --file or --interactive is required")
			}

			answers := domain.Questionnaire{}
			if file != "" {
				if answers, err = readAnswers(file); err != nil {
					return err
				}
			}
			if interactive {
				if err := prompt(cmd.InOrStdin(), cmd.OutOrStdout(), def.Schema, answers); err != nil {
					return err
				}
			}

			pipe, err := a.pipeline(def)
			if err != nil {
				return err
			}

			var svc *service.PredictionService
			if noSave {
				svc = service.NewPredictionService(def, pipe, nil, nil, zap.L())
			} else {
				hist, err := a.openHistory(cmd.Context())
				if err != nil {
					return err
				}
				defer hist.Close()
				svc = service.NewPredictionService(def, pipe, hist, nil, zap.L())
			}

			resp, err := svc.Predict(cmd.Context(), service.PredictRequest{Answers: answers})
			if err != nil {
				var verr *domain.ValidationError
				if errors.As(err, &verr) {
					printValidation(cmd.ErrOrStderr(), verr)
				}
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			printPrediction(cmd.OutOrStdout(), resp)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "answers file (.yaml, .yml or .json)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "prompt for each answer")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not record the prediction in the local history")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full result as JSON")
	return cmd
}

// readAnswers decodes a YAML or JSON answers file by extension.
func readAnswers(path string) (domain.Questionnaire, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read answers %s", path)
	}

	var q map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &q)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &q)
	default:
		return nil, fmt.Errorf("answers file %s: unsupported extension (want .yaml, .yml or .json)", path)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "parse answers %s", path)
	}
	if q == nil {
		q = map[string]any{}
	}
	return domain.Questionnaire(q), nil
}

// prompt asks for every schema field not already answered. A blank line
// leaves the field unanswered so defaults and estimates apply.
func prompt(in io.Reader, out io.Writer, schema *pipeline.Schema, answers domain.Questionnaire) error {
	sc := bufio.NewScanner(in)
	for _, f := range schema.Fields() {
		if _, ok := answers.Lookup(f.Name); ok {
			continue
		}

		label := f.Prompt
		if label == "" {
			label = pipeline.DisplayName(f.Name)
		}
		var hints []string
		if f.Required {
			hints = append(hints, "required")
		}
		if f.Range != nil {
			hints = append(hints, fmt.Sprintf("%g-%g", f.Range.Min, f.Range.Max))
		}
		if f.Default != nil {
			hints = append(hints, fmt.Sprintf("default %v", f.Default))
		}
		if len(hints) > 0 {
			label += " [" + strings.Join(hints, ", ") + "]"
		}
		fmt.Fprintf(out, "%s: ", label)

		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return eris.Wrap(err, "read answer")
			}
			fmt.Fprintln(out)
			return nil
		}
		if v := strings.TrimSpace(sc.Text()); v != "" {
			answers[f.Name] = v
		}
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return eris.Wrap(err, "encode result")
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func printValidation(w io.Writer, verr *domain.ValidationError) {
	fmt.Fprintln(w, "The answers could not be used:")
	for _, f := range verr.Fields {
		fmt.Fprintf(w, "  - %s\n", f.Message)
	}
}

func printPrediction(w io.Writer, resp *service.PredictResponse) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TARGET\tRESULT\tCATEGORY\tCONFIDENCE")
	for _, r := range resp.Results {
		result := r.Label
		if r.Score != nil {
			result = fmt.Sprintf("%g", *r.Score)
		}
		conf := "-"
		if r.Confidence != nil {
			conf = fmt.Sprintf("%.1f%%", *r.Confidence*100)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Target, result, r.Category, conf)
	}
	_ = tw.Flush()

	if resp.Interpretation != "" {
		fmt.Fprintf(w, "\n%s\n", resp.Interpretation)
	}
	if len(resp.Recommendations) > 0 {
		fmt.Fprintln(w, "\nRecommendations:")
		for i, rec := range resp.Recommendations {
			fmt.Fprintf(w, "  %d. %s\n", i+1, rec)
		}
	}
	if len(resp.Insights) > 0 {
		fmt.Fprintln(w, "\nInsights:")
		for _, k := range sortedKeys(resp.Insights) {
			fmt.Fprintf(w, "  %s: %v\n", k, resp.Insights[k])
		}
	}

	switch {
	case resp.Stored:
		fmt.Fprintf(w, "\nSaved as %s\n", resp.ID)
	case resp.Warning != "":
		fmt.Fprintf(w, "\nWarning: %s\n", resp.Warning)
	}
}
