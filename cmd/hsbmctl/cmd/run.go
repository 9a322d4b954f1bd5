package cmd

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hsbm-go/hsbm/collapse"
	"github.com/hsbm-go/hsbm/consensus"
	"github.com/hsbm-go/hsbm/engine"
	"github.com/hsbm-go/hsbm/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Load a network and run sweeps followed by agglomerative collapse",
	RunE:  runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// loadEdgeList reads a 4-column CSV (srcID,srcType,dstID,dstType) and
// returns the parallel slices engine.NewFromEdgeList expects, inferring the
// node id/type lists from the union of endpoints seen.
func loadEdgeList(path string) (types []string, ids, nodeTypes, edgesA, edgesB []string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("open edge list: %w", err)
	}
	defer f.Close()

	seen := make(map[string]string) // id -> type
	var order []string
	typeSeen := make(map[string]bool)

	r := csv.NewReader(f)
	r.FieldsPerRecord = 4
	for {
		rec, readErr := r.Read()
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, nil, nil, nil, nil, fmt.Errorf("parse edge list: %w", readErr)
		}
		srcID, srcType, dstID, dstType := rec[0], rec[1], rec[2], rec[3]
		for _, pair := range [][2]string{{srcID, srcType}, {dstID, dstType}} {
			if _, ok := seen[pair[0]]; !ok {
				seen[pair[0]] = pair[1]
				order = append(order, pair[0])
			}
			if !typeSeen[pair[1]] {
				typeSeen[pair[1]] = true
				types = append(types, pair[1])
			}
		}
		edgesA = append(edgesA, srcID)
		edgesB = append(edgesB, dstID)
	}

	ids = order
	nodeTypes = make([]string, len(order))
	for i, id := range order {
		nodeTypes[i] = seen[id]
	}
	return types, ids, nodeTypes, edgesA, edgesB, nil
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	types, ids, nodeTypes, edgesA, edgesB, err := loadEdgeList(cfg.Network.EdgeListPath)
	if err != nil {
		return err
	}
	if len(cfg.Network.Types) > 0 {
		types = cfg.Network.Types
	}

	eng, err := engine.NewFromEdgeList(types, ids, nodeTypes, edgesA, edgesB, cfg.Network.Seed)
	if err != nil {
		return fmt.Errorf("build network: %w", err)
	}
	log.Info().Int("nodes", len(ids)).Int("edges", len(edgesA)).Msg("loaded network")

	if err := eng.InitializeBlocks(cfg.Network.InitialBlocks); err != nil {
		return fmt.Errorf("initialize blocks: %w", err)
	}

	var tracker *consensus.Tracker
	if cfg.Schedule.TrackPairs {
		tracker, err = eng.NewConsensusTracker(1)
		if err != nil {
			return fmt.Errorf("build consensus tracker: %w", err)
		}
	}

	reports, err := eng.RunSweeps(ctx, 0, cfg.Schedule.Eps, cfg.Schedule.VariableBlocks, tracker, cfg.Schedule.SweepsPerLevel)
	if err != nil {
		return fmt.Errorf("sweep: %w", err)
	}
	accepted := 0
	for _, r := range reports {
		accepted += r.NumAccepted
	}
	log.Info().Int("sweeps", len(reports)).Int("accepted", accepted).Msg("finished sweeps")
	if tracker != nil {
		log.Info().Int("tracked_pairs", len(tracker.All())).Msg("consensus tracking active")
	}

	// Collapse always restarts from one block per node at the data level
	// (spec.md §4.8 step 2), discarding whatever block 1 level the sweep
	// phase above left behind.
	collapseReport, err := eng.Collapse(ctx, 0, collapse.Config{
		Sigma:           cfg.Schedule.Sigma,
		TargetBlocks:    cfg.Schedule.TargetBlocks,
		NChecksPerBlock: cfg.Schedule.NChecksPerBlock,
		AllowExhaustive: cfg.Schedule.AllowExhaustive,
		ReportAllSteps:  cfg.Schedule.ReportAllSteps,
	})
	if err != nil {
		return fmt.Errorf("collapse: %w", err)
	}
	log.Info().Int("rounds", len(collapseReport.Rounds)).Msg("finished collapse")

	entropy, err := eng.Entropy(1)
	if err != nil {
		return fmt.Errorf("entropy: %w", err)
	}
	log.Info().Float64("entropy", entropy).Msg("final partition entropy")

	if cfg.Store.Path != "" {
		s, err := store.Open(cfg.Store.Path)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer s.Close()

		dump, err := eng.State()
		if err != nil {
			return fmt.Errorf("snapshot state: %w", err)
		}
		if err := s.Save(cfg.Store.RunID, dump); err != nil {
			return fmt.Errorf("save state: %w", err)
		}
		log.Info().Str("run_id", cfg.Store.RunID).Str("path", cfg.Store.Path).Msg("checkpoint saved")
	}

	return nil
}
