package mailer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderStatus(t *testing.T) {
	r, err := RenderStatus(StatusEmail{
		To:             "a@b.c",
		RecipientName:  "Ona <script>",
		TrackingNumber: "EL123",
		Status:         "In Transit",
		Location:       "Kaunas hub",
	})
	require.NoError(t, err)
	require.Equal(t, "🚚 Shipment In Transit (EL123)", r.Subject)
	require.Contains(t, r.HTML, "Your package is moving through our network.")
	require.Contains(t, r.HTML, "Kaunas hub")
	require.NotContains(t, r.HTML, "<script>")
	require.NotContains(t, r.HTML, "Notes")
	require.Contains(t, r.Text, "Location: Kaunas hub")
}

func TestRenderStatus_UnknownStatus(t *testing.T) {
	r, err := RenderStatus(StatusEmail{TrackingNumber: "EL1", Status: "Lost"})
	require.NoError(t, err)
	require.Equal(t, "📦 Shipment Status Update (EL1)", r.Subject)
	require.Contains(t, r.Text, "Your shipment status has been updated to Lost.")
}

func TestRenderDriverAssignment(t *testing.T) {
	r, err := RenderDriverAssignment(DriverAssignmentEmail{
		TrackingNumber:  "EL9",
		DriverName:      "Jonas",
		PickupLocation:  "Vilnius",
		DropoffLocation: "Riga",
	})
	require.NoError(t, err)
	require.Equal(t, "New shipment assigned: EL9", r.Subject)
	require.Contains(t, r.HTML, "Hello Jonas,")
	require.Contains(t, r.Text, "Drop-off: Riga")
}
