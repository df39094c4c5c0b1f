package inventory

import "time"

type UnitCreated struct {
	UnitID UnitID
	Owner  OwnerID
	At     time.Time
}

func (e UnitCreated) EventName() string     { return "inventory.unit_created" }
func (e UnitCreated) AggregateID() string   { return string(e.UnitID) }
func (e UnitCreated) OccurredAt() time.Time { return e.At }

type UnitActivated struct {
	UnitID UnitID
	At     time.Time
}

func (e UnitActivated) EventName() string     { return "inventory.unit_activated" }
func (e UnitActivated) AggregateID() string   { return string(e.UnitID) }
func (e UnitActivated) OccurredAt() time.Time { return e.At }

type UnitDelisted struct {
	UnitID UnitID
	Reason string
	At     time.Time
}

func (e UnitDelisted) EventName() string     { return "inventory.unit_delisted" }
func (e UnitDelisted) AggregateID() string   { return string(e.UnitID) }
func (e UnitDelisted) OccurredAt() time.Time { return e.At }
