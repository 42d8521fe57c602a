package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/newthinker/tradejournal/internal/core"
	"github.com/newthinker/tradejournal/internal/logger"
	"github.com/newthinker/tradejournal/internal/playbook"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	gradeSetup  string
	gradeFormat string
)

var gradeCmd = &cobra.Command{
	Use:   "grade",
	Short: "Grade a setup against a playbook rubric",
	Long: `Grade a setup described in a YAML file. The file lists the playbook's
rules and confluences, which of them are checked, an optional checklist and
an optional rubric that overrides the configured one.`,
	RunE: runGrade,
}

func init() {
	gradeCmd.Flags().StringVar(&gradeSetup, "setup", "", "setup YAML file (required)")
	gradeCmd.Flags().StringVarP(&gradeFormat, "format", "f", "text", "output format: text, json or yaml")
	gradeCmd.MarkFlagRequired("setup")

	rootCmd.AddCommand(gradeCmd)
}

// setupFile is the YAML layout read by the grade command.
type setupFile struct {
	playbook.Input `yaml:",inline"`
	Rubric         *playbook.Rubric `yaml:"rubric,omitempty"`
}

func loadSetup(path string) (setupFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return setupFile{}, fmt.Errorf("reading setup: %w", err)
	}
	var s setupFile
	if err := yaml.Unmarshal(data, &s); err != nil {
		return setupFile{}, core.WrapError(core.ErrInvalidRequest, fmt.Errorf("parsing %s: %w", path, err))
	}
	return s, nil
}

func runGrade(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	setup, err := loadSetup(gradeSetup)
	if err != nil {
		return err
	}

	rubric := cfg.PlaybookRubric()
	if setup.Rubric != nil {
		if err := setup.Rubric.Validate(); err != nil {
			return err
		}
		rubric = *setup.Rubric
	}

	res := playbook.Grade(rubric, setup.Input)
	return writeGrade(cmd.OutOrStdout(), res, gradeFormat)
}

func writeGrade(w io.Writer, res playbook.Result, format string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case "yaml":
		return yaml.NewEncoder(w).Encode(res)
	case "", "text":
	default:
		return core.WrapError(core.ErrInvalidRequest, fmt.Errorf("unknown format %q", format))
	}

	p := res.Parts
	fmt.Fprintf(w, "Grade:        %s (%.4f)\n", res.Grade, res.Score)
	fmt.Fprintf(w, "Rules:        %.1f%%\n", p.RulesPct*100)
	fmt.Fprintf(w, "Confluences:  %.1f%%\n", p.ConfPct*100)
	if p.Redistributed {
		fmt.Fprintln(w, "Checklist:    none (weight redistributed)")
	} else {
		fmt.Fprintf(w, "Checklist:    %.1f%%\n", p.ChecklistPct*100)
	}
	if p.MissedMust {
		fmt.Fprintf(w, "Missed must:  %s\n", strings.Join(p.MissedMustRules, ", "))
	}
	checked := fmt.Sprintf("%d", p.Checked)
	if p.BelowMinChecks {
		checked += " (below minimum)"
	}
	fmt.Fprintf(w, "Checked:      %s\n", checked)
	return nil
}
