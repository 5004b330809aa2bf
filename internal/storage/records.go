package storage

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/san-kum/gravsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

type vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Record is one body in one frame of the records format. Mass is optional
// and omitted when zero.
type Record struct {
	Name         string  `json:"name"`
	Mass         float64 `json:"mass,omitempty"`
	Position     vec     `json:"position"`
	Velocity     vec     `json:"velocity"`
	Acceleration vec     `json:"acceleration"`
}

// WriteRecords writes frames as a JSON array of arrays of Records.
func WriteRecords(w io.Writer, frames []dynamo.Snapshot, withMass bool) error {
	out := make([][]Record, len(frames))
	for i, snap := range frames {
		out[i] = make([]Record, len(snap.Bodies))
		for j, b := range snap.Bodies {
			rec := Record{
				Name:         b.Name,
				Position:     vec{b.Pos.X, b.Pos.Y},
				Velocity:     vec{b.Vel.X, b.Vel.Y},
				Acceleration: vec{b.Acc.X, b.Acc.Y},
			}
			if withMass {
				rec.Mass = b.Mass
			}
			out[i][j] = rec
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// ReadRecords parses the records format. Bodies without a mass get
// defaultMass.
func ReadRecords(r io.Reader, defaultMass float64) ([][]dynamo.Body, error) {
	var raw [][]Record
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("storage: decode records: %w", err)
	}

	frames := make([][]dynamo.Body, len(raw))
	for i, frame := range raw {
		frames[i] = make([]dynamo.Body, len(frame))
		for j, rec := range frame {
			mass := rec.Mass
			if mass == 0 {
				mass = defaultMass
			}
			frames[i][j] = dynamo.Body{
				Name: rec.Name,
				Mass: mass,
				Pos:  r2.Vec{X: rec.Position.X, Y: rec.Position.Y},
				Vel:  r2.Vec{X: rec.Velocity.X, Y: rec.Velocity.Y},
				Acc:  r2.Vec{X: rec.Acceleration.X, Y: rec.Acceleration.Y},
			}
		}
	}
	return frames, nil
}
