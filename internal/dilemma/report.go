package dilemma

import (
	"fmt"
	"io"
)

// WriteReport prints each player's moves followed by their score.
func WriteReport(w io.Writer, res Result) error {
	for _, p := range res.Players {
		if _, err := fmt.Fprintf(w, "Moves for Player %d:\n", p.ID); err != nil {
			return err
		}
		for i, m := range p.Moves {
			if _, err := fmt.Fprintf(w, "Move %d: %s\n", i+1, m); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "Score: %d\n", p.Score); err != nil {
			return err
		}
	}
	return nil
}
