package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/google/uuid"
	"github.com/jason-s-yu/bussfix/internal/dependencies/random"
	"github.com/jason-s-yu/bussfix/internal/game"
	"github.com/jason-s-yu/bussfix/internal/models"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// SimulateOptions configures a local bot game.
type SimulateOptions struct {
	Players  []string
	Jokers   int
	Seed     uint64
	MaxTurns int
}

// Simulation is the finished (or stopped) game.
type Simulation struct {
	Session *game.Session
	// Steps counts engine calls, including decisions.
	Steps    int
	Finished bool
	// Log is oldest first.
	Log       []string
	Standings []models.Standing
}

// Simulate seats opts.Players and lets every seat play the suggested move
// until the game ends or MaxTurns steps have run. The same seed always
// produces the same game.
func Simulate(opts SimulateOptions) (*Simulation, error) {
	seats := make([]game.Seat, len(opts.Players))
	for i, name := range opts.Players {
		seats[i] = game.Seat{ID: "p" + strconv.Itoa(i+1), Name: name}
	}

	id := uuid.NewSHA1(uuid.NameSpaceOID, []byte(strconv.FormatUint(opts.Seed, 10)))
	s, err := game.NewSession(id, seats, opts.Jokers, random.NewSeeded(opts.Seed))
	if err != nil {
		return nil, err
	}

	sim := &Simulation{Session: s}
	for sim.Steps < opts.MaxTurns && s.Stage == game.StagePlaying {
		if err := step(s); err != nil {
			return nil, fmt.Errorf("step %d: %w", sim.Steps, err)
		}
		sim.Steps++
	}

	sim.Finished = s.Stage == game.StageEnded
	sim.Log = make([]string, len(s.Messages))
	for i, m := range s.Messages {
		sim.Log[len(s.Messages)-1-i] = m
	}
	sim.Standings = game.Standings(s)
	return sim, nil
}

func step(s *game.Session) error {
	if s.Pending != nil {
		if s.Pending.Kind == game.DecisionSpinBottle {
			_, err := game.SpinBottle(s)
			return err
		}
		// Bots hand the KK sip to the next active player.
		for _, p := range s.ActivePlayers() {
			if p.ID != s.Pending.Actor {
				return game.GiveSip(s, p.ID)
			}
		}
		return game.ErrInvariant
	}
	if refs := game.SuggestPlay(s); refs != nil {
		_, err := game.PlayCards(s, refs)
		return err
	}
	return game.Pickup(s)
}

func newSimulateCmd() *cobra.Command {
	defaults := DefaultSimulateOptions()
	opts := SimulateOptions{}
	var showLog bool

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play a full game between bots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sim, err := Simulate(opts)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), sim, showLog)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Players, "players", defaults.Players, "Comma separated player names (env: BUSSFIX_PLAYERS)")
	cmd.Flags().IntVar(&opts.Jokers, "jokers", defaults.Jokers, "Jokers added to the deck, 2 to 5 (env: BUSSFIX_JOKERS)")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", defaults.Seed, "Shuffle seed (env: BUSSFIX_SEED)")
	cmd.Flags().IntVar(&opts.MaxTurns, "max-turns", defaults.MaxTurns, "Stop after this many moves")
	cmd.Flags().BoolVar(&showLog, "log", false, "Print the game log")

	return cmd
}

func render(w io.Writer, sim *Simulation, showLog bool) error {
	if showLog {
		fmt.Fprint(w, pterm.DefaultSection.Sprintln("Game log"))
		for _, line := range sim.Log {
			fmt.Fprintln(w, line)
		}
	}

	fmt.Fprint(w, pterm.DefaultSection.Sprintln("Standings"))
	data := pterm.TableData{{"Place", "Player", "Drinks"}}
	for _, st := range sim.Standings {
		data = append(data, []string{strconv.Itoa(st.Place), st.Name, strconv.Itoa(st.Drinks)})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, table)

	if sim.Finished {
		fmt.Fprint(w, pterm.Success.Sprintfln("Game over after %d moves.", sim.Steps))
	} else {
		fmt.Fprint(w, pterm.Warning.Sprintfln("Stopped after %d moves with %d players left.", sim.Steps, len(sim.Session.ActivePlayers())))
	}
	return nil
}
