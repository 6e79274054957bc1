package cli

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Game commands",
	}

	cmd.AddCommand(newGameNewCmd())
	cmd.AddCommand(newGameListCmd())
	cmd.AddCommand(newGameGetCmd())
	cmd.AddCommand(newGameDeleteCmd())
	cmd.AddCommand(newGameRestartCmd())
	cmd.AddCommand(newGamePlaceCmd())
	cmd.AddCommand(newGameSkillCmd())
	cmd.AddCommand(newGameUndoCmd())
	cmd.AddCommand(newGamePassCmd())
	cmd.AddCommand(newGameStatusCmd())
	cmd.AddCommand(newGameLegalCmd())

	return cmd
}

func gamePath(id string, parts ...string) string {
	path := "/api/v1/games/" + url.PathEscape(id)
	for _, p := range parts {
		path += "/" + p
	}
	return path
}

func newGameNewCmd() *cobra.Command {
	var boardSize, winLength, maxEnergy, initialEnergy, energyRegen int

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a new game",
		Long: `Create a new game. Rule flags that are not given fall back to the
server's default rules.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]int{}
			flags := cmd.Flags()
			for name, val := range map[string]int{
				"board-size":     boardSize,
				"win-length":     winLength,
				"max-energy":     maxEnergy,
				"initial-energy": initialEnergy,
				"energy-regen":   energyRegen,
			} {
				if flags.Changed(name) {
					body[strings.ReplaceAll(name, "-", "_")] = val
				}
			}

			var result GameState
			if err := client.Post("/api/v1/games", body, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&boardSize, "board-size", 15, "Board edge length")
	cmd.Flags().IntVar(&winLength, "win-length", 5, "Stones in a row needed to win")
	cmd.Flags().IntVar(&maxEnergy, "max-energy", 5, "Energy cap per player")
	cmd.Flags().IntVar(&initialEnergy, "initial-energy", 3, "Starting energy per player")
	cmd.Flags().IntVar(&energyRegen, "energy-regen", 1, "Energy gained per completed turn")

	return cmd
}

func newGameListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List games",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result GameList
			if err := client.Get("/api/v1/games", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newGameGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get current game state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result GameState
			if err := client.Get(gamePath(args[0]), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newGameDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete(gamePath(args[0])); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.PrintMessage(fmt.Sprintf("Deleted game %s", args[0]))
			return nil
		},
	}
}

func newGameRestartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restart <id>",
		Short: "Clear the board and start again with the same rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result GameState
			if err := client.Post(gamePath(args[0], "restart"), nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newGamePlaceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "place <id> <player> <row> <col>",
		Short: "Place a stone",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid row: %s", args[2])
			}
			col, err := strconv.Atoi(args[3])
			if err != nil {
				return fmt.Errorf("invalid col: %s", args[3])
			}

			return submit(cmd, args[0], OperationRequest{
				Player:   args[1],
				Type:     "place",
				Position: &Position{Row: row, Col: col},
			})
		},
	}
}

func newGameSkillCmd() *cobra.Command {
	var cell, from, to string

	cmd := &cobra.Command{
		Use:   "skill <id> <player> <skill>",
		Short: "Use a skill",
		Long: `Use a skill. Positions are given as row,col.

  --cell   target stone for feishazoushi, region center for huadweiliao
  --from   stone to move for yihuajiemu
  --to     destination for yihuajiemu

Run "gomoku skills" to list the catalogue.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := OperationRequest{
				Player: args[1],
				Type:   "skill",
				Skill:  args[2],
			}

			target := &SkillTarget{}
			var err error
			if target.Cell, err = parseOptionalPosition(cell); err != nil {
				return err
			}
			if target.From, err = parseOptionalPosition(from); err != nil {
				return err
			}
			if target.To, err = parseOptionalPosition(to); err != nil {
				return err
			}
			if target.Cell != nil || target.From != nil || target.To != nil {
				req.Target = target
			}

			return submit(cmd, args[0], req)
		},
	}

	cmd.Flags().StringVar(&cell, "cell", "", "Target cell (row,col)")
	cmd.Flags().StringVar(&from, "from", "", "Source cell (row,col)")
	cmd.Flags().StringVar(&to, "to", "", "Destination cell (row,col)")

	return cmd
}

func newGameUndoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "undo <id> <player>",
		Short: "Take back the most recent placement",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return submit(cmd, args[0], OperationRequest{Player: args[1], Type: "undo"})
		},
	}
}

func newGamePassCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pass <id> <player>",
		Short: "Pass the turn",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return submit(cmd, args[0], OperationRequest{Player: args[1], Type: "pass"})
		},
	}
}

func newGameStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <player>",
		Short: "Show a player's energy, cooldowns and skill usage",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result PlayerStatus
			if err := client.Get(gamePath(args[0], "players", url.PathEscape(args[1])), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newGameLegalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "legal <id> <player>",
		Short: "List the cells a player may place on",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result LegalMoves
			path := gamePath(args[0], "legal-moves") + "?player=" + url.QueryEscape(args[1])
			if err := client.Get(path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func submit(cmd *cobra.Command, id string, req OperationRequest) error {
	var result TurnResult
	if err := client.Post(gamePath(id, "operations"), req, &result); err != nil {
		return err
	}

	out := NewOutput(cfg.Output, cmd.OutOrStdout())
	out.Print(result)
	return nil
}

func parseOptionalPosition(s string) (*Position, error) {
	if s == "" {
		return nil, nil
	}
	return parsePosition(s)
}

// parsePosition parses "row,col"
func parsePosition(s string) (*Position, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid position %q: expected row,col", s)
	}
	row, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return nil, fmt.Errorf("invalid position %q: bad row", s)
	}
	col, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, fmt.Errorf("invalid position %q: bad col", s)
	}
	return &Position{Row: row, Col: col}, nil
}
