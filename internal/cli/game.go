package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Single-player games against the AI",
	}

	cmd.AddCommand(newGameNewCmd())
	cmd.AddCommand(newGameShowCmd())
	cmd.AddCommand(newGamePlayCmd())
	cmd.AddCommand(newGamePendingCmd())
	cmd.AddCommand(newGameRecallCmd())
	cmd.AddCommand(newGamePassCmd())
	cmd.AddCommand(newGameExchangeCmd())

	return cmd
}

func newGameNewCmd() *cobra.Command {
	var difficulty string

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Start a new game",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Game
			req := map[string]string{"difficulty": difficulty}
			if err := client.Post("/api/v1/games", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&difficulty, "difficulty", "d", "medium", "AI difficulty: easy, medium, hard")
	return cmd
}

func newGameShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <game-id>",
		Short: "Show the board, your rack and the scores",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := fetchGame(args[0])
			if err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(g)
			return nil
		},
	}
}

// placementArgs parses "<game-id> <row> <col> <across|down> <word>" into tiles
func placementArgs(args []string) (string, []TileRequest, error) {
	id := args[0]
	row, err := strconv.Atoi(args[1])
	if err != nil {
		return "", nil, fmt.Errorf("row must be a number: %w", err)
	}
	col, err := strconv.Atoi(args[2])
	if err != nil {
		return "", nil, fmt.Errorf("col must be a number: %w", err)
	}
	horizontal, err := parseDirection(args[3])
	if err != nil {
		return "", nil, err
	}

	g, err := fetchGame(id)
	if err != nil {
		return "", nil, err
	}
	tiles, err := planPlacement(gameRack(g), boardLookup(g.Board), row, col, horizontal, args[4])
	if err != nil {
		return "", nil, err
	}
	return id, tiles, nil
}

func newGamePlayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play <game-id> [<row> <col> <across|down> <word>]",
		Short: "Play a word, or submit the pending tiles when only the game id is given",
		Long: `Play a word starting at (row, col). Letters already on the board are
skipped; the rest come from your rack, using a blank when you hold no
matching tile. Rows and columns run 0-14 and the centre square is (7,7).`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 && len(args) != 5 {
				return fmt.Errorf("expected <game-id> or <game-id> <row> <col> <across|down> <word>")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			var tiles []TileRequest
			if len(args) == 5 {
				var err error
				if id, tiles, err = placementArgs(args); err != nil {
					return err
				}
			}

			var result Game
			if err := client.Post("/api/v1/games/"+id+"/moves", map[string]any{"tiles": tiles}, &result); err != nil {
				return explainTurn(id, err)
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newGamePendingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pending <game-id> <row> <col> <across|down> <word>",
		Short: "Stage tiles on the board without submitting them",
		Args:  cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, tiles, err := placementArgs(args)
			if err != nil {
				return err
			}

			var result Game
			if err := client.Put("/api/v1/games/"+id+"/pending", map[string]any{"tiles": tiles}, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newGameRecallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recall <game-id>",
		Short: "Return staged tiles to your rack",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Game
			if err := client.Delete("/api/v1/games/"+args[0]+"/pending", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newGamePassCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pass <game-id>",
		Short: "Pass your turn",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Game
			if err := client.Post("/api/v1/games/"+args[0]+"/pass", nil, &result); err != nil {
				return explainTurn(args[0], err)
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newGameExchangeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exchange <game-id> <letters>",
		Short: "Swap rack tiles for new ones from the bag (? selects a blank)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := fetchGame(args[0])
			if err != nil {
				return err
			}
			ids, err := pickTiles(gameRack(g), args[1])
			if err != nil {
				return err
			}

			var result Game
			if err := client.Post("/api/v1/games/"+args[0]+"/exchange", map[string]any{"tile_ids": ids}, &result); err != nil {
				return explainTurn(args[0], err)
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

// explainTurn adds a hint when the AI still holds the turn
func explainTurn(id string, err error) error {
	if HasCode(err, "NOT_YOUR_TURN") {
		return fmt.Errorf("%w\nthe AI is still thinking; run \"wordgame game show %s\" in a moment", err, id)
	}
	return err
}

func fetchGame(id string) (Game, error) {
	var g Game
	err := client.Get("/api/v1/games/"+id, &g)
	return g, err
}
