package shipments

import (
	"encoding/json"
	"errors"

	"github.com/BearBump/EuroLink/internal/broker/kafka"
	"github.com/BearBump/EuroLink/internal/broker/messages"
	"github.com/BearBump/EuroLink/internal/status"
	"github.com/google/uuid"
)

func (s *ServiceSuite) scan(m messages.StatusScan) []byte {
	b, err := json.Marshal(m)
	s.Require().NoError(err)
	return b
}

func (s *ServiceSuite) TestHandleStatusScan_ByTrackingNumber() {
	sh := s.seed(status.PickedUp)
	s.expectEmail()
	s.expectPublish()

	driver := s.driver
	err := s.svc.HandleStatusScan(s.ctx, s.scan(messages.StatusScan{
		TrackingNumber: sh.TrackingNumber,
		Status:         "In Transit",
		Location:       "Kaunas hub",
		DriverID:       &driver,
	}))
	s.Require().NoError(err)

	stored, err := s.store.GetShipment(s.ctx, sh.ID)
	s.Require().NoError(err)
	s.Require().Equal("In Transit", stored.Status)
	hist, err := s.store.ListStatusHistory(s.ctx, sh.ID)
	s.Require().NoError(err)
	s.Require().Equal("Kaunas hub", hist[0].Location)
}

func (s *ServiceSuite) TestHandleStatusScan_Permanent() {
	sh := s.seed(status.Pending)
	unknown := uuid.New()

	cases := map[string][]byte{
		"bad json":         []byte("{"),
		"no identity":      s.scan(messages.StatusScan{Status: "Paid"}),
		"unknown status":   s.scan(messages.StatusScan{ShipmentID: &sh.ID, Status: "Teleported"}),
		"unknown id":       s.scan(messages.StatusScan{ShipmentID: &unknown, Status: "Paid"}),
		"unknown tracking": s.scan(messages.StatusScan{TrackingNumber: "EL0000000000", Status: "Paid"}),
	}
	for name, payload := range cases {
		err := s.svc.HandleStatusScan(s.ctx, payload)
		var perm *kafka.PermanentError
		s.Require().True(errors.As(err, &perm), name)
	}
	s.Require().Zero(s.store.writeCount())
}

func (s *ServiceSuite) TestHandleStatusScan_StrictRejectionIsPermanent() {
	svc := s.newService(status.PolicyStrict)
	sh := s.seed(status.Pending)

	err := svc.HandleStatusScan(s.ctx, s.scan(messages.StatusScan{ShipmentID: &sh.ID, Status: "Delivered"}))
	var perm *kafka.PermanentError
	s.Require().True(errors.As(err, &perm))
	s.Require().ErrorIs(err, ErrInvalidTransition)
}

func (s *ServiceSuite) TestHandleStatusScan_TransientErrorRedelivers() {
	sh := s.seed(status.Pending)
	s.store.failOn("UpdateShipmentStatus", errors.New("connection refused"))

	err := s.svc.HandleStatusScan(s.ctx, s.scan(messages.StatusScan{ShipmentID: &sh.ID, Status: "Paid"}))
	s.Require().Error(err)
	var perm *kafka.PermanentError
	s.Require().False(errors.As(err, &perm))
	s.Require().ErrorIs(err, ErrUpdateFailed)
}
