package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"nklab/internal/nk"
	nkapi "nklab/pkg/nklab"
)

func newRunCmd(opts *globalOptions) *cobra.Command {
	var (
		req        nkapi.RunRequest
		configPath string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Walk a fresh landscape and rank a random sample of its states",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if configPath != "" {
				cfg, err := loadRunConfig(configPath)
				if err != nil {
					return err
				}
				applyRunConfig(&req, cfg, cmd.Flags().Changed)
			}

			client, err := opts.client()
			if err != nil {
				return err
			}
			defer func() {
				_ = client.Close()
			}()

			summary, err := client.Run(cmd.Context(), req)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return writeJSON(opts.stdout, summary)
			}

			d := summary.Diagnostics
			fmt.Fprintf(opts.stdout, "run_id=%s artifacts=%s n=%d k=%d wiring=%s seed=%d\n",
				summary.RunID,
				summary.ArtifactsDir,
				summary.Request.N,
				summary.Request.K,
				summary.Request.Wiring,
				summary.Request.Seed,
			)
			fmt.Fprintf(opts.stdout, "steps=%d initial_fitness=%d final_fitness=%d best_fitness=%d best_step=%d improvements=%d max_distance=%d\n",
				d.Steps, d.InitialFitness, d.FinalFitness, d.BestFitness, d.BestStep, d.Improvements, d.MaxDistance)
			for _, ranked := range summary.Top {
				fmt.Fprintf(opts.stdout, "rank=%d state=%s score=%d\n", ranked.Rank, nk.State(ranked.State), ranked.Score)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "", "YAML run config; explicit flags override its values")
	flags.IntVar(&req.N, "n", 20, "number of nodes")
	flags.IntVar(&req.K, "k", 2, "epistatic inputs per node (hub index for star wiring)")
	flags.StringVar(&req.Wiring, "wiring", nk.WiringRandom, "wiring: isolated|ring|random|complete|star")
	flags.Int64Var(&req.Seed, "seed", 0, "random seed (0 picks one from the clock)")
	flags.IntVar(&req.WalkLength, "walk-length", 50, "states visited by the mutant walk")
	flags.IntVar(&req.Changes, "changes", 1, "positions mutated per walk step")
	flags.IntVar(&req.Samples, "samples", 100, "random states to rank")
	flags.StringVar(&req.Ranker, "ranker", nk.RankerTotalistic, "ranker: totalistic|lexicase")
	flags.IntVar(&req.RankIndex, "rank-index", 0, "node index for the lexicase ranker")
	flags.IntVar(&req.Top, "top", 10, "ranked states to keep")
	flags.IntSliceVar(&req.Alphabet, "alphabet", []int{0, 1}, "state values")
	return cmd
}

func newRunsCmd(opts *globalOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit <= 0 {
				return errors.New("limit must be > 0")
			}
			client, err := opts.client()
			if err != nil {
				return err
			}
			defer func() {
				_ = client.Close()
			}()

			items, err := client.Runs(cmd.Context(), nkapi.RunsRequest{Limit: limit})
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return writeJSON(opts.stdout, items)
			}
			if len(items) == 0 {
				fmt.Fprintln(opts.stdout, "no runs found")
				return nil
			}
			for _, item := range items {
				fmt.Fprintf(opts.stdout, "run_id=%s created=%q n=%d k=%d wiring=%s seed=%d ranker=%s best_fitness=%d final_fitness=%d\n",
					item.RunID,
					createdAgo(item.CreatedAtUTC),
					item.N,
					item.K,
					item.Wiring,
					item.Seed,
					item.Ranker,
					item.BestFitness,
					item.FinalFitness,
				)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "max runs to list")
	return cmd
}

// runSelector binds the --run-id/--latest/--limit trio used by the read commands.
type runSelector struct {
	runID  string
	latest bool
	limit  int
}

func (s *runSelector) bind(cmd *cobra.Command, limitDefault int, what string) {
	cmd.Flags().StringVar(&s.runID, "run-id", "", "run id")
	cmd.Flags().BoolVar(&s.latest, "latest", false, "use the most recent run from the run index")
	cmd.Flags().IntVar(&s.limit, "limit", limitDefault, fmt.Sprintf("max %s to print (0 for all)", what))
}

func (s *runSelector) validate(name string) error {
	if s.runID != "" && s.latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if s.runID == "" && !s.latest {
		return fmt.Errorf("%s requires --run-id or --latest", name)
	}
	return nil
}

func newFitnessCmd(opts *globalOptions) *cobra.Command {
	var sel runSelector
	cmd := &cobra.Command{
		Use:   "fitness",
		Short: "Print a run's fitness history along its walk",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := sel.validate("fitness"); err != nil {
				return err
			}
			client, err := opts.client()
			if err != nil {
				return err
			}
			defer func() {
				_ = client.Close()
			}()

			history, err := client.FitnessHistory(cmd.Context(), nkapi.FitnessHistoryRequest{
				RunID:  sel.runID,
				Latest: sel.latest,
				Limit:  sel.limit,
			})
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return writeJSON(opts.stdout, history)
			}
			if len(history) == 0 {
				fmt.Fprintln(opts.stdout, "no fitness history")
				return nil
			}
			for i, fitness := range history {
				fmt.Fprintf(opts.stdout, "step=%d fitness=%d\n", i, fitness)
			}
			return nil
		},
	}
	sel.bind(cmd, 50, "steps")
	return cmd
}

func newWalkCmd(opts *globalOptions) *cobra.Command {
	var sel runSelector
	cmd := &cobra.Command{
		Use:   "walk",
		Short: "Print the states a run's mutant walk visited",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := sel.validate("walk"); err != nil {
				return err
			}
			client, err := opts.client()
			if err != nil {
				return err
			}
			defer func() {
				_ = client.Close()
			}()

			steps, err := client.Walk(cmd.Context(), nkapi.WalkRequest{
				RunID:  sel.runID,
				Latest: sel.latest,
				Limit:  sel.limit,
			})
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return writeJSON(opts.stdout, steps)
			}
			for _, step := range steps {
				fmt.Fprintf(opts.stdout, "step=%d state=%s fitness=%d distance=%d\n",
					step.Step, nk.State(step.State), step.Fitness, step.Distance)
			}
			return nil
		},
	}
	sel.bind(cmd, 50, "steps")
	return cmd
}

func newRankingCmd(opts *globalOptions) *cobra.Command {
	var sel runSelector
	cmd := &cobra.Command{
		Use:   "ranking",
		Short: "Print a run's best ranked states",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := sel.validate("ranking"); err != nil {
				return err
			}
			client, err := opts.client()
			if err != nil {
				return err
			}
			defer func() {
				_ = client.Close()
			}()

			ranking, err := client.Ranking(cmd.Context(), nkapi.RankingRequest{
				RunID:  sel.runID,
				Latest: sel.latest,
				Limit:  sel.limit,
			})
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return writeJSON(opts.stdout, ranking)
			}
			for _, ranked := range ranking {
				fmt.Fprintf(opts.stdout, "rank=%d state=%s score=%d\n", ranked.Rank, nk.State(ranked.State), ranked.Score)
			}
			return nil
		},
	}
	sel.bind(cmd, 10, "states")
	return cmd
}

func newDiagnosticsCmd(opts *globalOptions) *cobra.Command {
	var sel runSelector
	cmd := &cobra.Command{
		Use:   "diagnostics",
		Short: "Print a run's configuration and walk statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := sel.validate("diagnostics"); err != nil {
				return err
			}
			client, err := opts.client()
			if err != nil {
				return err
			}
			defer func() {
				_ = client.Close()
			}()

			got, err := client.Diagnostics(cmd.Context(), nkapi.DiagnosticsRequest{RunID: sel.runID, Latest: sel.latest})
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return writeJSON(opts.stdout, got)
			}
			d := got.Diagnostics
			fmt.Fprintf(opts.stdout, "run_id=%s n=%d k=%d wiring=%s seed=%d changes=%d ranker=%s\n",
				got.RunID, got.Request.N, got.Request.K, got.Request.Wiring, got.Request.Seed, got.Request.Changes, got.Request.Ranker)
			fmt.Fprintf(opts.stdout, "steps=%d best_fitness=%d best_step=%d min_fitness=%d mean_fitness=%.3f std_fitness=%.3f distinct_states=%d\n",
				d.Steps, d.BestFitness, d.BestStep, d.MinFitness, d.MeanFitness, d.StdFitness, d.DistinctStates)
			return nil
		},
	}
	cmd.Flags().StringVar(&sel.runID, "run-id", "", "run id")
	cmd.Flags().BoolVar(&sel.latest, "latest", false, "use the most recent run from the run index")
	return cmd
}

func newExportCmd(opts *globalOptions) *cobra.Command {
	var (
		runID  string
		latest bool
		outDir string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Copy a run's artifacts to the exports directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}
			defer func() {
				_ = client.Close()
			}()

			exported, err := client.Export(cmd.Context(), nkapi.ExportRequest{RunID: runID, Latest: latest, OutDir: outDir})
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return writeJSON(opts.stdout, exported)
			}
			fmt.Fprintf(opts.stdout, "exported run_id=%s dir=%s\n", exported.RunID, exported.Directory)
			return nil
		},
	}
	cmd.Flags().StringVar(&runID, "run-id", "", "run id")
	cmd.Flags().BoolVar(&latest, "latest", false, "export the most recent run from the run index")
	cmd.Flags().StringVar(&outDir, "out", "", "destination directory (defaults to --exports-dir)")
	return cmd
}

func newLandscapeCmd(opts *globalOptions) *cobra.Command {
	var req nkapi.LandscapeRequest
	cmd := &cobra.Command{
		Use:   "landscape",
		Short: "Evaluate every state of a small landscape",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}
			defer func() {
				_ = client.Close()
			}()

			points, err := client.Landscape(cmd.Context(), req)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return writeJSON(opts.stdout, points)
			}
			best := 0
			for i, p := range points {
				if p.Fitness > points[best].Fitness {
					best = i
				}
				fmt.Fprintf(opts.stdout, "state=%s fitness=%d scores=%v\n", p.State, p.Fitness, p.Scores)
			}
			if len(points) > 0 {
				fmt.Fprintf(opts.stdout, "evaluated %s states; best state=%s fitness=%d\n",
					humanize.Comma(int64(len(points))), points[best].State, points[best].Fitness)
			}
			return nil
		},
	}
	flags := cmd.Flags()
	flags.IntVar(&req.N, "n", 4, fmt.Sprintf("number of nodes (at most %d states in total)", nkapi.MaxLandscapeStates))
	flags.IntVar(&req.K, "k", 1, "epistatic inputs per node (hub index for star wiring)")
	flags.StringVar(&req.Wiring, "wiring", nk.WiringRing, "wiring: isolated|ring|random|complete|star")
	flags.Int64Var(&req.Seed, "seed", 0, "random seed (0 picks one from the clock)")
	flags.IntSliceVar(&req.Alphabet, "alphabet", []int{0, 1}, "state values")
	return cmd
}

func writeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func createdAgo(createdAtUTC string) string {
	created, err := time.Parse(time.RFC3339Nano, createdAtUTC)
	if err != nil {
		return createdAtUTC
	}
	return humanize.Time(created)
}
