package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"rivernet/internal/analysis"
	"rivernet/internal/index"
	"rivernet/internal/message"
	"rivernet/internal/network"
	"rivernet/internal/storage"

	"github.com/spf13/cobra"
)

var errInvalid = errors.New("data file is not valid")

var (
	saveModel   bool
	jsonOutput  bool
	outputPath  string
	checkRound  bool
	traceUp     bool
	maxHops     int
	summaryPath string
	noStore     bool
	deletePath  string
)

func init() {
	checkCmd.Flags().BoolVar(&saveModel, "save", false, "Save the parsed model to the database")
	networkCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the network as JSON")
	writeCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write to this file instead of stdout")
	writeCmd.Flags().BoolVar(&checkRound, "check", false, "Fail if the output differs from the input")
	traceCmd.Flags().BoolVar(&traceUp, "upstream", false, "Trace against the flow")
	traceCmd.Flags().IntVar(&maxHops, "max-hops", -1, "Limit the number of branches followed (default from config)")
	scanCmd.Flags().StringVar(&summaryPath, "summary", "", "Write a JSON summary to this file")
	scanCmd.Flags().BoolVar(&noStore, "no-store", false, "Do not save models to the database")
	modelsCmd.Flags().StringVar(&deletePath, "delete", "", "Delete the stored model for this path")
}

var checkCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Validate a data file and report its diagnostics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newIndexer().Load(args[0])
		if m == nil {
			return err
		}
		out := cmd.OutOrStdout()
		printMessages(out, m.File.Messages())
		if m.Network != nil {
			printMessages(out, m.Network.Messages)
		}

		msgs := message.Group(args[0], m.File.Messages(), networkMessages(m))
		fmt.Fprintf(out, "%s: %d units, %d skipped lines, %d errors, %d warnings\n",
			args[0], len(m.File.Units()), len(m.File.Skipped()),
			msgs.CountAtLeast(message.Error), msgs.Count(message.Warning))

		if saveModel && m.Network != nil {
			if err := saveModels(cmd.Context(), m); err != nil {
				return err
			}
		}
		if err != nil {
			return err
		}
		if !m.File.Valid() {
			return errInvalid
		}
		return nil
	},
}

var networkCmd = &cobra.Command{
	Use:   "network <file>",
	Short: "Print the branches and nodes reconstructed from a data file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newIndexer().Load(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if jsonOutput {
			snap := storage.NewModel(m.File, m.Network)
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				Nodes    []storage.Node   `json:"nodes"`
				Branches []storage.Branch `json:"branches"`
			}{snap.Nodes, snap.Branches})
		}
		printNetwork(out, m.Network)
		return nil
	},
}

var writeCmd = &cobra.Command{
	Use:   "write <file>",
	Short: "Parse a data file and write it back out",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		m, err := newIndexer().Load(args[0])
		if err != nil {
			return err
		}
		data := m.File.Bytes()
		if checkRound && !bytes.Equal(in, data) {
			return fmt.Errorf("%s: output differs from input", args[0])
		}
		if outputPath == "" {
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		if err := os.WriteFile(outputPath, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", outputPath, err)
		}
		return nil
	},
}

var traceCmd = &cobra.Command{
	Use:   "trace <file> <label>",
	Short: "List the branches downstream (or upstream) of a node label",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newIndexer().Load(args[0])
		if err != nil {
			return err
		}
		conf := analysis.DefaultConfig()
		conf.MaxHops = cfg.Trace.MaxHops
		if maxHops >= 0 {
			conf.MaxHops = maxHops
		}
		dir := analysis.Downstream
		if traceUp {
			dir = analysis.Upstream
		}
		report, err := analysis.NewAnalyzer(m.Network).Trace(args[1], dir, conf)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s of %s:\n", report.Direction, report.Label)
		for _, b := range report.Branches {
			fmt.Fprintf(out, "    %s\n", b.Name())
		}
		for _, u := range report.Boundaries {
			fmt.Fprintf(out, "    boundary %s %s\n", u.Kind(), u.Name())
		}
		return nil
	},
}

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Parse every data file under a directory and store the results",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) > 0 {
			root = args[0]
		}

		var opts []index.Option
		if !noStore {
			store, err := initStore()
			if err != nil {
				return err
			}
			defer store.Close()
			opts = append(opts, index.WithStore(store))
		}
		idx := newIndexer(opts...)

		start := time.Now()
		summaries, err := idx.Index(cmd.Context(), root)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, s := range summaries {
			status := "ok"
			switch {
			case s.Err != "":
				status = "failed: " + s.Err
			case !s.Valid:
				status = "invalid"
			}
			fmt.Fprintf(out, "%s: %d units, %d branches, %d errors, %d warnings (%s)\n",
				s.Path, s.Units, s.Branches, s.Errors, s.Warnings, status)
		}
		fmt.Fprintf(out, "Scanned %d files in %v\n", len(summaries), time.Since(start).Round(time.Millisecond))

		if summaryPath != "" {
			return idx.SaveSummary(summaries, summaryPath)
		}
		return nil
	},
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models stored in the database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := initStore()
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := cmd.Context()
		if deletePath != "" {
			return store.DeleteModel(ctx, deletePath)
		}
		models, err := store.ListModels(ctx)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, m := range models {
			valid := "valid"
			if !m.Valid {
				valid = "invalid"
			}
			fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", m.Path, m.Title, valid, m.SavedAt.Format(time.RFC3339))
		}
		return nil
	},
}

var findCmd = &cobra.Command{
	Use:   "find <label>",
	Short: "Find stored units that reference a node label",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := initStore()
		if err != nil {
			return err
		}
		defer store.Close()

		refs, err := store.FindUnitsByLabel(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, r := range refs {
			fmt.Fprintf(out, "%s:%d\t%s\t%s\n", r.Path, r.Unit.Line, r.Unit.Kind, strings.Join(r.Unit.Labels, " "))
		}
		return nil
	},
}

func saveModels(ctx context.Context, m *index.Model) error {
	store, err := initStore()
	if err != nil {
		return err
	}
	defer store.Close()
	return store.SaveModel(ctx, storage.NewModel(m.File, m.Network))
}

func networkMessages(m *index.Model) *message.Message {
	if m.Network == nil {
		return nil
	}
	return m.Network.Messages
}

func printMessages(w io.Writer, m *message.Message) {
	if m != nil {
		fmt.Fprintln(w, m.String())
	}
}

func printNetwork(w io.Writer, n *network.Network) {
	for _, b := range n.Branches {
		fmt.Fprintln(w, b.Name())
		for _, l := range b.Layers {
			var names []string
			for _, r := range l {
				name := r.String()
				if r.Structure {
					name = string(r.Units[0].Kind()) + " " + name
				}
				if r.Partial {
					name += " (partial)"
				}
				names = append(names, name)
			}
			fmt.Fprintf(w, "    %s\n", strings.Join(names, " | "))
		}
	}
	fmt.Fprintln(w, "nodes:")
	for _, node := range n.Nodes {
		var extra []string
		if node.Junction != nil {
			extra = append(extra, string(node.Junction.Kind()))
		}
		for _, u := range node.Boundaries {
			extra = append(extra, string(u.Kind()))
		}
		fmt.Fprintf(w, "    %s", node.Name)
		if len(extra) > 0 {
			fmt.Fprintf(w, " (%s)", strings.Join(extra, ", "))
		}
		fmt.Fprintf(w, " in=%d out=%d\n", len(node.Incoming), len(node.Outgoing))
	}
}
