package emailretry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type BackoffSuite struct {
	suite.Suite
}

func (s *BackoffSuite) TestDelay_Defaults() {
	b := NewBackoff(BackoffConfig{})
	s.Equal(1*time.Minute, b.Delay(1))
	s.Equal(5*time.Minute, b.Delay(2))
	s.Equal(15*time.Minute, b.Delay(3))
	s.Equal(60*time.Minute, b.Delay(4))
	s.Equal(60*time.Minute, b.Delay(100))
}

func (s *BackoffSuite) TestDelay_Overrides() {
	b := NewBackoff(BackoffConfig{Step1: time.Second, Step4: time.Hour * 2})
	s.Equal(time.Second, b.Delay(0))
	s.Equal(5*time.Minute, b.Delay(2))
	s.Equal(2*time.Hour, b.Delay(9))
}

func (s *BackoffSuite) TestExhausted() {
	b := NewBackoff(BackoffConfig{MaxAttempts: 3})
	s.False(b.Exhausted(2))
	s.True(b.Exhausted(3))
	s.Equal(int32(6), NewBackoff(BackoffConfig{}).Config().MaxAttempts)
}

func TestBackoffSuite(t *testing.T) {
	suite.Run(t, new(BackoffSuite))
}
