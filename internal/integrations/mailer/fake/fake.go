// Package fake is an in-memory Mailer for local runs and tests.
package fake

import (
	"context"
	"strconv"
	"sync"

	"github.com/BearBump/EuroLink/internal/integrations/mailer"
)

type Mailer struct {
	mu          sync.Mutex
	statuses    []mailer.StatusEmail
	assignments []mailer.DriverAssignmentEmail
	err         error
	seq         int
}

var _ mailer.Mailer = (*Mailer)(nil)

func New() *Mailer {
	return &Mailer{}
}

// FailWith makes every following send return err. Pass nil to recover.
func (m *Mailer) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *Mailer) SendStatusEmail(_ context.Context, e mailer.StatusEmail) (*mailer.SendResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.statuses = append(m.statuses, e)
	return m.result(), nil
}

func (m *Mailer) SendDriverAssignmentEmail(_ context.Context, e mailer.DriverAssignmentEmail) (*mailer.SendResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.assignments = append(m.assignments, e)
	return m.result(), nil
}

func (m *Mailer) StatusEmails() []mailer.StatusEmail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mailer.StatusEmail(nil), m.statuses...)
}

func (m *Mailer) AssignmentEmails() []mailer.DriverAssignmentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mailer.DriverAssignmentEmail(nil), m.assignments...)
}

func (m *Mailer) result() *mailer.SendResult {
	m.seq++
	return &mailer.SendResult{MessageID: "fake-" + strconv.Itoa(m.seq)}
}
