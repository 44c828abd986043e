package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/igordot/SuMu/adapters/bayes"
	"github.com/igordot/SuMu/adapters/glm"
	"github.com/igordot/SuMu/adapters/postgres"
	"github.com/igordot/SuMu/adapters/report"
	"github.com/igordot/SuMu/adapters/xena"
	"github.com/igordot/SuMu/app"
	"github.com/igordot/SuMu/domain/biomarker"
	"github.com/igordot/SuMu/domain/core"
	"github.com/igordot/SuMu/domain/formula"
	"github.com/igordot/SuMu/domain/genomics"
	"github.com/igordot/SuMu/domain/survival"
	"github.com/igordot/SuMu/internal"
	"github.com/igordot/SuMu/internal/config"
	"github.com/igordot/SuMu/internal/testkit"
	"github.com/igordot/SuMu/ports"
	"github.com/igordot/SuMu/ui"
)

func main() {
	// .env is optional; real deployments set env vars directly
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "sumu",
		Short: "Survival/mutation biomarker analysis over cancer genomics cohorts",
	}

	rootCmd.AddCommand(
		newFetchCmd(),
		newFitCmd(),
		newKMCmd(),
		newProfileCmd(),
		newReportCmd(),
		newServeCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// deps bundles the wired services for a command invocation.
type deps struct {
	cfg     *config.Config
	logger  *internal.Logger
	cohorts *app.CohortService
	fitters map[string]ports.ModelFitter
}

func wire(synthetic bool) (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := internal.NewDefaultLogger()

	var loader ports.CohortLoader
	if synthetic {
		gen := testkit.NewCohortGenerator(testkit.DefaultGeneratorConfig())
		loader = &testkit.FakeLoader{Snapshot: gen.Generate("synthetic")}
	} else {
		loader = xena.NewReader(xena.Config{
			BaseURL:       cfg.DataService.BaseURL,
			Timeout:       cfg.DataService.Timeout,
			RatePerMinute: cfg.DataService.RatePerMinute,
		})
	}

	var store ports.SnapshotStore
	if cfg.Database.Enabled && !synthetic {
		db, err := postgres.Connect(cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		store = postgres.NewSnapshotRepository(db)
	}

	sampler := bayes.NewSampler(bayes.Options{
		Chains:     cfg.Analysis.Chains,
		Iterations: cfg.Analysis.Iterations,
		Warmup:     cfg.Analysis.Iterations / 2,
		Seed:       cfg.Analysis.Seed,
		PriorScale: 2.5,
		StepScale:  0.05,
	})

	return &deps{
		cfg:     cfg,
		logger:  logger,
		cohorts: app.NewCohortService(loader, store, logger),
		fitters: map[string]ports.ModelFitter{
			"glm":   glm.NewLogistic(),
			"bayes": sampler,
		},
	}, nil
}

func newFetchCmd() *cobra.Command {
	var synthetic bool
	cmd := &cobra.Command{
		Use:   "fetch [cohort]",
		Short: "Fetch and cache all tables for a cohort",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := wire(synthetic)
			if err != nil {
				return err
			}
			snap, err := d.cohorts.Load(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("cohort %s: %d clinical rows, %d mutation events\n",
				snap.Cohort, len(snap.Clinical), len(snap.Mutations))
			return nil
		},
	}
	cmd.Flags().BoolVar(&synthetic, "synthetic", false, "use a seeded synthetic cohort instead of the data service")
	return cmd
}

func newFitCmd() *cobra.Command {
	var (
		synthetic   bool
		backend     string
		ruleName    string
		formulaStr  string
		outcomeDays float64
		excelOut    string
	)
	cmd := &cobra.Command{
		Use:   "fit [cohort]",
		Short: "Fit the biomarker GLM and print the ranked summary table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := wire(synthetic)
			if err != nil {
				return err
			}
			fitter, ok := d.fitters[backend]
			if !ok {
				return fmt.Errorf("unknown backend %q (want glm or bayes)", backend)
			}
			rule, err := biomarker.RuleByName(ruleName)
			if err != nil {
				return err
			}
			if outcomeDays <= 0 {
				outcomeDays = d.cfg.Analysis.OutcomeDays
			}

			ctx := context.Background()
			snap, err := d.cohorts.Load(ctx, args[0])
			if err != nil {
				return err
			}
			outcomes := survival.BinaryOutcomes(snap.Clinical, outcomeDays)

			analysis := app.NewAnalysisService(fitter, d.logger)
			model, err := analysis.Fit(ctx, app.FitRequest{
				Outcomes:   outcomes,
				Formula:    formulaStr,
				Mutations:  snap.Mutations,
				Rule:       rule,
				CellPolicy: biomarker.CellPolicy(d.cfg.Analysis.CellPolicy),
				Join:       app.JoinPolicy(d.cfg.Analysis.JoinPolicy),
			})
			if err != nil {
				return err
			}

			matrix, err := biomarker.Build(snap.Mutations, rule, biomarker.CellPolicy(d.cfg.Analysis.CellPolicy))
			if err != nil {
				return err
			}
			eval, err := analysis.BuildFrame(outcomes, matrix, app.JoinPolicy(d.cfg.Analysis.JoinPolicy))
			if err != nil {
				return err
			}

			var workbook *report.ExcelReport
			summarizer := app.NewSummarizer(nil, d.logger)
			opts := app.AUCOptions{}
			if excelOut != "" {
				if err := os.MkdirAll(filepath.Dir(excelOut), 0o755); err != nil {
					return err
				}
				workbook = report.NewExcelReport(excelOut)
				summarizer = app.NewSummarizer(workbook, d.logger)
				opts = app.AUCOptions{HGram: true, ROCPlot: true}
			}

			auc, err := summarizer.AUC(model, eval, opts)
			if err != nil {
				return err
			}
			rows := summarizer.Summarize(model)

			fmt.Printf("run: %s\nformula: %s\nbackend: %s\nn: %d\nAUC: %.4f\n\n", model.RunID, model.Formula, model.Backend, eval.NumRows(), auc)
			fmt.Printf("%-5s %-30s %12s %12s %10s\n", "rank", "feature", "estimate", "std error", "p")
			for _, row := range rows {
				fmt.Printf("%-5d %-30s %12.4f %12.4f %10.4g\n", row.Rank, row.Feature, row.Estimate, row.StdError, row.PValue)
			}

			if workbook != nil {
				if err := workbook.WriteSummary(args[0], rows, auc); err != nil {
					return err
				}
				if err := workbook.Save(); err != nil {
					return err
				}
				fmt.Printf("\nreport written to %s\n", excelOut)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&synthetic, "synthetic", false, "use a seeded synthetic cohort")
	cmd.Flags().StringVar(&backend, "backend", "glm", "fitting backend: glm or bayes")
	cmd.Flags().StringVar(&ruleName, "rule", biomarker.ByGene.Name, "feature rule: gene, gene_effect or gene_aa_change")
	cmd.Flags().StringVar(&formulaStr, "formula", formula.Default("outcome"), "model formula with biomarker placeholder")
	cmd.Flags().Float64Var(&outcomeDays, "outcome-days", 0, "survival threshold in days (default from config)")
	cmd.Flags().StringVar(&excelOut, "excel", "", "write an Excel report to this path")
	return cmd
}

func newKMCmd() *cobra.Command {
	var synthetic bool
	cmd := &cobra.Command{
		Use:   "km [cohort] [gene]",
		Short: "Kaplan-Meier curves and log-rank test split by gene mutation status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := wire(synthetic)
			if err != nil {
				return err
			}
			snap, err := d.cohorts.Load(context.Background(), args[0])
			if err != nil {
				return err
			}

			gene := args[1]
			carriers := make(map[string]bool)
			for _, m := range snap.Mutations {
				if m.Gene == gene {
					carriers[string(m.SampleID)] = true
				}
			}
			var mutant, wildType []survival.Observation
			for _, rec := range snap.Clinical {
				obs := survival.Observation{Time: rec.SurvivalDays, Event: rec.Deceased}
				if carriers[string(rec.SampleID)] {
					mutant = append(mutant, obs)
				} else {
					wildType = append(wildType, obs)
				}
			}

			logRank, err := survival.LogRank(mutant, wildType)
			if err != nil {
				return err
			}
			out, _ := json.MarshalIndent(map[string]interface{}{
				"gene":      gene,
				"mutant":    survival.KaplanMeier(mutant),
				"wild_type": survival.KaplanMeier(wildType),
				"log_rank":  logRank,
			}, "", "  ")
			fmt.Println(string(out))
			return nil
		},
	}
	cmd.Flags().BoolVar(&synthetic, "synthetic", false, "use a seeded synthetic cohort")
	return cmd
}

func newProfileCmd() *cobra.Command {
	var synthetic bool
	cmd := &cobra.Command{
		Use:   "profile [cohort] [gene]",
		Short: "Summary statistics for one gene across the cohort",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := wire(synthetic)
			if err != nil {
				return err
			}
			snap, err := d.cohorts.Load(context.Background(), args[0])
			if err != nil {
				return err
			}

			gene := args[1]
			result := map[string]interface{}{"cohort": args[0], "gene": gene}
			if p, ok := genomics.ProfileGene(snap.Expression, gene); ok {
				result["expression"] = p
			}
			if p, ok := genomics.ProfileGene(snap.CopyNumber, gene); ok {
				result["copy_number"] = p
			}

			carriers := 0
			seen := make(map[string]bool)
			for _, m := range snap.Mutations {
				if m.Gene == gene && !seen[string(m.SampleID)] {
					seen[string(m.SampleID)] = true
					carriers++
				}
			}
			result["samples_mutated"] = carriers

			if _, ok := result["expression"]; !ok {
				if _, ok := result["copy_number"]; !ok && carriers == 0 {
					return fmt.Errorf("gene %s: %w", gene, core.ErrNotFound)
				}
			}

			out, _ := json.MarshalIndent(result, "", "  ")
			fmt.Println(string(out))
			return nil
		},
	}
	cmd.Flags().BoolVar(&synthetic, "synthetic", false, "use a seeded synthetic cohort")
	return cmd
}

func newReportCmd() *cobra.Command {
	var (
		synthetic bool
		out       string
		asHTML    bool
	)
	cmd := &cobra.Command{
		Use:   "report [cohort]",
		Short: "Write the markdown analysis report for a cohort",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := wire(synthetic)
			if err != nil {
				return err
			}

			ctx := context.Background()
			snap, err := d.cohorts.Load(ctx, args[0])
			if err != nil {
				return err
			}
			outcomes := survival.BinaryOutcomes(snap.Clinical, d.cfg.Analysis.OutcomeDays)

			analysis := app.NewAnalysisService(d.fitters["glm"], d.logger)
			model, err := analysis.Fit(ctx, app.FitRequest{
				Outcomes:   outcomes,
				Formula:    formula.Default("outcome"),
				Mutations:  snap.Mutations,
				Rule:       biomarker.ByGene,
				CellPolicy: biomarker.CellPolicy(d.cfg.Analysis.CellPolicy),
				Join:       app.JoinPolicy(d.cfg.Analysis.JoinPolicy),
			})
			if err != nil {
				return err
			}

			matrix, err := biomarker.Build(snap.Mutations, biomarker.ByGene, biomarker.CellPolicy(d.cfg.Analysis.CellPolicy))
			if err != nil {
				return err
			}
			eval, err := analysis.BuildFrame(outcomes, matrix, app.JoinPolicy(d.cfg.Analysis.JoinPolicy))
			if err != nil {
				return err
			}

			summarizer := app.NewSummarizer(nil, d.logger)
			auc, err := summarizer.AUC(model, eval, app.AUCOptions{})
			if err != nil {
				return err
			}

			curve := survival.KaplanMeier(survival.Observations(snap.Clinical))
			md := report.Markdown(args[0], model.RunID, summarizer.Summarize(model), auc, curve)
			if asHTML {
				md = report.ToHTML(md)
			}

			if out == "" {
				fmt.Print(string(md))
				return nil
			}
			if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(out, md, 0o644); err != nil {
				return err
			}
			fmt.Printf("report written to %s\n", out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&synthetic, "synthetic", false, "use a seeded synthetic cohort")
	cmd.Flags().StringVar(&out, "out", "", "output path (default stdout)")
	cmd.Flags().BoolVar(&asHTML, "html", false, "render HTML instead of markdown")
	return cmd
}

func newServeCmd() *cobra.Command {
	var synthetic bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := wire(synthetic)
			if err != nil {
				return err
			}
			server := ui.NewServer(d.cohorts, app.NewSummarizer(nil, d.logger), d.fitters, d.cfg, d.logger)
			return server.ListenAndServe()
		},
	}
	cmd.Flags().BoolVar(&synthetic, "synthetic", false, "serve a seeded synthetic cohort")
	return cmd
}
