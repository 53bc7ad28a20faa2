package status

import (
	"math"

	"github.com/pkg/errors"
)

// Status is a canonical shipment status value. Values are exchanged as the exact
// strings below (case-sensitive, spaces included).
type Status string

const (
	Unknown        Status = ""
	Pending        Status = "Pending"
	Paid           Status = "Paid"
	Processing     Status = "Processing"
	PickedUp       Status = "Picked Up"
	InTransit      Status = "In Transit"
	OnRoute        Status = "On Route"
	OutForDelivery Status = "Out for Delivery"
	Delivered      Status = "Delivered"
	Cancelled      Status = "Cancelled"
)

// FinalStage is the stage number of the last status on the forward path.
const FinalStage = 8

func (s Status) String() string {
	if s == Unknown {
		return "Unknown"
	}
	return string(s)
}

// Known reports whether s is a registered status.
func (s Status) Known() bool {
	_, ok := byValue[s]
	return ok
}

// Definition describes one status of the delivery lifecycle.
type Definition struct {
	Value           Status   `json:"value"`
	Stage           int      `json:"stage"`
	Label           string   `json:"label"`
	Description     string   `json:"description"`
	Icon            string   `json:"icon"`
	CanTransitionTo []Status `json:"can_transition_to"`
	IsFinal         bool     `json:"is_final"`
}

var registry = []Definition{
	{
		Value:           Pending,
		Stage:           1,
		Label:           "Pending",
		Description:     "Your shipment has been created and is awaiting payment.",
		Icon:            "⏳",
		CanTransitionTo: []Status{Paid, Cancelled},
	},
	{
		Value:           Paid,
		Stage:           2,
		Label:           "Paid",
		Description:     "Payment received. Your shipment is queued for processing.",
		Icon:            "💳",
		CanTransitionTo: []Status{Processing, Cancelled},
	},
	{
		Value:           Processing,
		Stage:           3,
		Label:           "Processing",
		Description:     "We are preparing your shipment for pickup.",
		Icon:            "⚙️",
		CanTransitionTo: []Status{PickedUp, Cancelled},
	},
	{
		Value:           PickedUp,
		Stage:           4,
		Label:           "Picked Up",
		Description:     "A courier has collected your package.",
		Icon:            "📦",
		CanTransitionTo: []Status{InTransit},
	},
	{
		Value:           InTransit,
		Stage:           5,
		Label:           "In Transit",
		Description:     "Your package is moving through our network.",
		Icon:            "🚚",
		CanTransitionTo: []Status{OnRoute},
	},
	{
		Value:           OnRoute,
		Stage:           6,
		Label:           "On Route",
		Description:     "Your package is on route to the destination hub.",
		Icon:            "🛣️",
		CanTransitionTo: []Status{OutForDelivery},
	},
	{
		Value:           OutForDelivery,
		Stage:           7,
		Label:           "Out for Delivery",
		Description:     "Your package is out for delivery and will arrive today.",
		Icon:            "🏃",
		CanTransitionTo: []Status{Delivered},
	},
	{
		Value:       Delivered,
		Stage:       8,
		Label:       "Delivered",
		Description: "Your package has been delivered.",
		Icon:        "✅",
		IsFinal:     true,
	},
	{
		Value:       Cancelled,
		Stage:       0,
		Label:       "Cancelled",
		Description: "This shipment has been cancelled.",
		Icon:        "❌",
		IsFinal:     true,
	},
}

var byValue = func() map[Status]Definition {
	m := make(map[Status]Definition, len(registry))
	for _, d := range registry {
		m[d.Value] = d
	}
	return m
}()

// Parse maps a raw value to its Status, or Unknown when it is not registered.
func Parse(value string) Status {
	s := Status(value)
	if _, ok := byValue[s]; !ok {
		return Unknown
	}
	return s
}

// Lookup returns the definition for value and whether it exists.
func Lookup(value string) (Definition, bool) {
	d, ok := byValue[Status(value)]
	if !ok {
		return Definition{}, false
	}
	return clone(d), true
}

// Config returns the definition for value. Unknown values yield the Pending
// definition; use Lookup or Parse to detect invalid input.
func Config(value string) Definition {
	if d, ok := Lookup(value); ok {
		return d
	}
	return clone(byValue[Pending])
}

// All returns every registered status in registry order.
func All() []Definition {
	out := make([]Definition, 0, len(registry))
	for _, d := range registry {
		out = append(out, clone(d))
	}
	return out
}

// InOrder returns the progressing statuses (stage > 0) ascending by stage.
func InOrder() []Definition {
	out := make([]Definition, 0, len(registry))
	for stage := 1; stage <= FinalStage; stage++ {
		for _, d := range registry {
			if d.Stage == stage {
				out = append(out, clone(d))
			}
		}
	}
	return out
}

// NextPossible returns the definitions reachable in one step from current.
func NextPossible(current string) []Definition {
	d := Config(current)
	out := make([]Definition, 0, len(d.CanTransitionTo))
	for _, next := range d.CanTransitionTo {
		if nd, ok := byValue[next]; ok {
			out = append(out, clone(nd))
		}
	}
	return out
}

// Progress returns the completion percentage of value.
func Progress(value string) int {
	d := Config(value)
	switch {
	case d.IsFinal && d.Stage > 0:
		return 100
	case d.Stage == 0:
		return 0
	}
	return int(math.Round(float64(d.Stage) / FinalStage * 100))
}

// Validate checks the registry's structural invariants.
func Validate() error {
	stages := make(map[int]Status, len(registry))
	for _, d := range registry {
		if d.IsFinal && len(d.CanTransitionTo) > 0 {
			return errors.Errorf("final status %q has transitions", d.Value)
		}
		for _, next := range d.CanTransitionTo {
			if _, ok := byValue[next]; !ok {
				return errors.Errorf("status %q transitions to unregistered %q", d.Value, next)
			}
		}
		if d.Stage > 0 {
			if prev, dup := stages[d.Stage]; dup {
				return errors.Errorf("stage %d shared by %q and %q", d.Stage, prev, d.Value)
			}
			stages[d.Stage] = d.Value
		}
	}
	for stage := 1; stage < FinalStage; stage++ {
		from, ok := stages[stage]
		if !ok {
			return errors.Errorf("missing stage %d", stage)
		}
		if !IsValidTransition(string(from), string(stages[stage+1])) {
			return errors.Errorf("stage %d (%q) does not advance to stage %d", stage, from, stage+1)
		}
	}
	return nil
}

func clone(d Definition) Definition {
	d.CanTransitionTo = append([]Status(nil), d.CanTransitionTo...)
	return d
}
