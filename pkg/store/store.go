// Package store keeps a history of solved packings.
//
// Every successful pipeline run can be saved as a [Record]. The CLI's
// "runs" command and the HTTP API read them back. [MongoStore] is the shared
// backend; [FileStore] appends to a local JSON-lines file for single-user
// setups; [MemoryStore] backs tests and ephemeral servers.
package store

import (
	"context"
	"time"

	"github.com/matzehuels/circlepack/pkg/packing"
)

// DefaultListLimit caps List when the caller passes a non-positive limit.
const DefaultListLimit = 20

// Record is one solved run.
type Record struct {
	ID        string    `bson:"_id" json:"id"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`

	Backend   string           `bson:"backend" json:"backend"`
	Regime    string           `bson:"regime" json:"regime"`
	Strategy  string           `bson:"strategy,omitempty" json:"strategy,omitempty"`
	Seed      uint64           `bson:"seed" json:"seed"`
	Domain    packing.Domain   `bson:"domain" json:"domain"`
	N         int              `bson:"n" json:"n"`
	Radius    float64          `bson:"radius" json:"radius"`
	Density   float64          `bson:"density" json:"density"`
	Centers   []packing.Circle `bson:"centers" json:"centers"`
	Tolerance float64          `bson:"tolerance,omitempty" json:"tolerance,omitempty"`
	ElapsedMS int64            `bson:"elapsed_ms" json:"elapsed_ms"`
	CacheHit  bool             `bson:"cache_hit" json:"cache_hit"`
}

// Result re-validates the stored packing with the tolerance the run used and
// returns it. Records without a tolerance use packing.DefaultTolerance.
func (r Record) Result() (packing.Result, error) {
	spec, err := packing.NewSpec(r.Domain, r.N)
	if err != nil {
		return packing.Result{}, err
	}
	eps := r.Tolerance
	if eps == 0 {
		eps = packing.DefaultTolerance
	}
	return packing.Validate(spec, packing.Candidate{Centers: r.Centers, Radius: r.Radius}, eps)
}

// Store persists run records.
type Store interface {
	Save(ctx context.Context, rec Record) error
	// Get returns the record with id, or a NOT_FOUND error.
	Get(ctx context.Context, id string) (Record, error)
	// List returns up to limit records, newest first.
	List(ctx context.Context, limit int) ([]Record, error)
	Close(ctx context.Context) error
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
