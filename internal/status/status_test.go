package status

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Validate(t *testing.T) {
	require.NoError(t, Validate())
}

func TestRegistry_FinalStatusesHaveNoTransitions(t *testing.T) {
	finals := 0
	for _, d := range All() {
		if d.IsFinal {
			finals++
			require.Empty(t, d.CanTransitionTo, d.Value)
		}
	}
	require.Equal(t, 2, finals)
	require.True(t, Config("Delivered").IsFinal)
	require.True(t, Config("Cancelled").IsFinal)
}

func TestRegistry_TransitionTargetsResolve(t *testing.T) {
	for _, d := range All() {
		for _, next := range d.CanTransitionTo {
			got, ok := Lookup(string(next))
			require.True(t, ok, "%s -> %s", d.Value, next)
			require.Equal(t, next, got.Value)
		}
	}
}

func TestInOrder(t *testing.T) {
	got := InOrder()
	want := []Status{Pending, Paid, Processing, PickedUp, InTransit, OnRoute, OutForDelivery, Delivered}
	require.Len(t, got, len(want))
	for i, d := range got {
		require.Equal(t, want[i], d.Value)
		require.Equal(t, i+1, d.Stage)
		require.NotEqual(t, Cancelled, d.Value)
	}
}

func TestConfig_UnknownFallsBackToPending(t *testing.T) {
	require.Equal(t, Pending, Config("Lost in space").Value)
	require.Equal(t, Pending, Config("in transit").Value) // case-sensitive

	_, ok := Lookup("Lost in space")
	require.False(t, ok)
	require.Equal(t, Unknown, Parse("Lost in space"))
	require.Equal(t, InTransit, Parse("In Transit"))
	require.False(t, Unknown.Known())
	require.Equal(t, "Unknown", Unknown.String())
}

func TestLookup_ReturnsCopy(t *testing.T) {
	d, ok := Lookup("Pending")
	require.True(t, ok)
	d.CanTransitionTo[0] = Delivered
	require.True(t, IsValidTransition("Pending", "Paid"))
}

func TestNextPossible(t *testing.T) {
	next := NextPossible("Pending")
	require.Len(t, next, 2)
	require.Equal(t, Paid, next[0].Value)
	require.Equal(t, Cancelled, next[1].Value)

	require.Empty(t, NextPossible("Delivered"))
	require.Equal(t, InTransit, NextPossible("Picked Up")[0].Value)
}

func TestIsValidTransition(t *testing.T) {
	require.True(t, IsValidTransition("Pending", "Paid"))
	require.False(t, IsValidTransition("Pending", "Delivered"))
	for _, d := range All() {
		require.False(t, IsValidTransition("Delivered", string(d.Value)))
		require.False(t, IsValidTransition("Cancelled", string(d.Value)))
	}
	require.True(t, IsValidTransition("Processing", "Cancelled"))
	require.False(t, IsValidTransition("In Transit", "Cancelled"))
	require.False(t, IsValidTransition("nope", "Paid"))
}

func TestProgress(t *testing.T) {
	require.Equal(t, 100, Progress("Delivered"))
	require.Equal(t, 0, Progress("Cancelled"))
	require.Equal(t, 63, Progress("In Transit"))
	require.Equal(t, 13, Progress("Pending"))
	require.Equal(t, 25, Progress("Paid"))
	require.Equal(t, 88, Progress("Out for Delivery"))
}

func TestPolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	require.Equal(t, PolicyLenient, p)

	_, err = ParsePolicy("whatever")
	require.Error(t, err)

	ok, err := PolicyLenient.Check("Pending", "Delivered")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = PolicyStrict.Check("Pending", "Delivered")
	require.False(t, ok)
	require.True(t, errors.Is(err, ErrInvalidTransition))

	ok, err = PolicyStrict.Check("Pending", "Paid")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestEmailContent_DerivedFromRegistry(t *testing.T) {
	for _, d := range All() {
		c := EmailContent(string(d.Value))
		require.Equal(t, d.Icon, c.Icon)
		require.Equal(t, d.Description, c.Message)
		require.Contains(t, c.Title, d.Label)
	}

	c := EmailContent("Held at Customs")
	require.Equal(t, "Shipment Status Update", c.Title)
	require.Equal(t, "Your shipment status has been updated to Held at Customs.", c.Message)
	require.Equal(t, "📦", c.Icon)
}

func TestNotificationCopy(t *testing.T) {
	require.Equal(t, "🚚 In Transit", NotificationTitle("In Transit"))
	require.Equal(t, "📦 Shipment Status Update", NotificationTitle("Weird"))
	require.Equal(t,
		"Shipment EL123: Your package is moving through our network.",
		NotificationMessage("EL123", "In Transit"))
}
