package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hsbm-go/hsbm/engine"
	"github.com/hsbm-go/hsbm/store"
)

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Report the block counts of a previously checkpointed run",
	RunE:  runResume,
}

func init() {
	rootCmd.AddCommand(resumeCmd)
}

func runResume(cmd *cobra.Command, args []string) error {
	types := cfg.Network.Types
	if len(types) == 0 {
		return fmt.Errorf("resume: network.types must be set in config to restore a checkpoint")
	}

	s, err := store.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer s.Close()

	dump, err := s.Load(cfg.Store.RunID, types)
	if err != nil {
		return fmt.Errorf("load checkpoint: %w", err)
	}

	eng := engine.New(types, cfg.Network.Seed)
	for _, row := range dump.Rows {
		if row.Level == 0 {
			if _, err := eng.Net.AddNode(row.ID, row.TypeName, 0); err != nil {
				return fmt.Errorf("restore node: %w", err)
			}
		}
	}
	if err := eng.Restore(dump); err != nil {
		return fmt.Errorf("restore state: %w", err)
	}

	top := eng.Net.TopLevel()
	counts, err := eng.Net.BlockCounts(top)
	if err != nil {
		return fmt.Errorf("block counts: %w", err)
	}
	for _, c := range counts {
		log.Info().Str("type", c.TypeName).Int("blocks", c.Count).Msg("restored checkpoint")
	}
	return nil
}
