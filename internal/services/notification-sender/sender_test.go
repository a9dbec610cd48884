package sender

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/gym-access-manager/internal/lib/smtp"
	"github.com/magabrotheeeer/gym-access-manager/internal/models"
)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Connect() (smtp.Client, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(smtp.Client), args.Error(1)
}

func (m *MockTransport) GetSMTPUser() string {
	args := m.Called()
	return args.String(0)
}

type MockSMTPClient struct {
	mock.Mock
	data bytes.Buffer
}

func (m *MockSMTPClient) Mail(from string) error {
	args := m.Called(from)
	return args.Error(0)
}

func (m *MockSMTPClient) Rcpt(to string) error {
	args := m.Called(to)
	return args.Error(0)
}

type nopWriteCloser struct{ w io.Writer }

func (n nopWriteCloser) Write(p []byte) (int, error) { return n.w.Write(p) }
func (n nopWriteCloser) Close() error                { return nil }

func (m *MockSMTPClient) Data() (io.WriteCloser, error) {
	args := m.Called()
	if args.Error(1) != nil {
		return nil, args.Error(1)
	}
	return nopWriteCloser{w: &m.data}, nil
}

func (m *MockSMTPClient) Quit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockSMTPClient) Close() error {
	args := m.Called()
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func reminderBody(t *testing.T) []byte {
	t.Helper()
	body, err := json.Marshal(models.ClientReminder{
		Name:           "Ana Torres",
		Email:          "ana@example.com",
		ExpirationDate: "15-03-2026",
		DaysRemaining:  2,
	})
	require.NoError(t, err)
	return body
}

func TestSendExpiringReminder_Success(t *testing.T) {
	client := new(MockSMTPClient)
	client.On("Mail", "gym@example.com").Return(nil)
	client.On("Rcpt", "ana@example.com").Return(nil)
	client.On("Data").Return(nil, nil)
	client.On("Quit").Return(nil)
	client.On("Close").Return(nil)

	transport := new(MockTransport)
	transport.On("Connect").Return(client, nil)
	transport.On("GetSMTPUser").Return("gym@example.com")

	svc := New(transport, newNoopLogger())

	err := svc.SendExpiringReminder(reminderBody(t))
	require.NoError(t, err)

	sent := client.data.String()
	assert.Contains(t, sent, "To: ana@example.com")
	assert.Contains(t, sent, "Ana Torres")
	assert.Contains(t, sent, "15-03-2026")
	assert.Contains(t, sent, "quedan 2 dias")
	client.AssertExpectations(t)
	transport.AssertExpectations(t)
}

func TestSendExpiringReminder_MalformedBody(t *testing.T) {
	transport := new(MockTransport)
	svc := New(transport, newNoopLogger())

	err := svc.SendExpiringReminder([]byte("{not json"))
	require.Error(t, err)
	transport.AssertNotCalled(t, "Connect")
}

func TestSendExpiringReminder_ConnectError(t *testing.T) {
	transport := new(MockTransport)
	transport.On("Connect").Return(nil, errors.New("dial tcp: refused"))
	transport.On("GetSMTPUser").Return("gym@example.com")

	svc := New(transport, newNoopLogger())

	err := svc.SendExpiringReminder(reminderBody(t))
	require.Error(t, err)
}

func TestSendExpiringReminder_RcptError(t *testing.T) {
	client := new(MockSMTPClient)
	client.On("Mail", "gym@example.com").Return(nil)
	client.On("Rcpt", "ana@example.com").Return(errors.New("mailbox unavailable"))
	client.On("Close").Return(nil)

	transport := new(MockTransport)
	transport.On("Connect").Return(client, nil)
	transport.On("GetSMTPUser").Return("gym@example.com")

	svc := New(transport, newNoopLogger())

	err := svc.SendExpiringReminder(reminderBody(t))
	require.Error(t, err)
	client.AssertNotCalled(t, "Data")
}
