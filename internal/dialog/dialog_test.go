package dialog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blocking is a frontend that hands sessions to the test.
type blocking struct{ sessions chan *Session }

func newBlocking() *blocking { return &blocking{sessions: make(chan *Session, 4)} }

func (b *blocking) Present(ctx context.Context, s *Session) error {
	b.sessions <- s
	return nil
}

func recv(t *testing.T, h *Host) Inbound {
	t.Helper()
	select {
	case in := <-h.Inbox():
		return in
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for inbound message")
	}
	return Inbound{}
}

func TestReply_ExactlyOnce(t *testing.T) {
	fe := newBlocking()
	h := NewHost(fe, nil)
	s := h.Open(context.Background(), Request{Kind: KindDeleteConfirm})
	require.Same(t, s, <-fe.sessions)

	require.NoError(t, s.Reply(Message{Type: TypeCancelDelete}))
	in := recv(t, h)
	assert.Equal(t, s.ID, in.SessionID)
	assert.True(t, h.Accepts(in))

	err := s.Reply(Message{Type: TypeConfirmDelete})
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestReply_RejectsMessagesOfOtherKinds(t *testing.T) {
	h := NewHost(newBlocking(), nil)
	s := h.Open(context.Background(), Request{Kind: KindImport})
	err := s.Reply(Message{Type: TypeUpdateSettings})
	assert.ErrorIs(t, err, ErrUnexpectedMessage)
	require.NoError(t, s.Reply(Message{Type: TypeImportData, Data: "{}"}))
}

func TestExport_ReadyHandshakeThenPayload(t *testing.T) {
	h := NewHost(newBlocking(), nil)
	s := h.Open(context.Background(), Request{Kind: KindExport})

	require.NoError(t, s.Reply(Message{Type: TypeUIReady}))
	assert.ErrorIs(t, s.Reply(Message{Type: TypeUIReady}), ErrUnexpectedMessage)
	in := recv(t, h)
	assert.False(t, in.Message.Terminal())

	require.NoError(t, h.Push(s.ID, Outbound{Type: TypeExportPayload, Data: "{}"}))
	out := <-s.Outbound()
	assert.Equal(t, "{}", out.Data)

	require.NoError(t, s.Reply(Message{Type: TypeExportComplete}))
	assert.True(t, recv(t, h).Message.Terminal())
}

func TestOpen_ReplacesPreviousSession(t *testing.T) {
	h := NewHost(newBlocking(), nil)
	first := h.Open(context.Background(), Request{Kind: KindSettings})
	second := h.Open(context.Background(), Request{Kind: KindImport})

	select {
	case <-first.Done():
	default:
		t.Fatalf("first session should be closed")
	}
	assert.Same(t, second, h.Current())
	assert.ErrorIs(t, first.Reply(Message{Type: TypeCancelSettings}), ErrSessionClosed)
	assert.False(t, h.Accepts(Inbound{SessionID: first.ID}))
	assert.ErrorIs(t, h.Push(first.ID, Outbound{}), ErrNoDialog)
}

func TestOpen_FrontendErrorClosesSession(t *testing.T) {
	h := NewHost(FrontendFunc(func(ctx context.Context, s *Session) error {
		return errors.New("no terminal")
	}), nil)
	s := h.Open(context.Background(), Request{Kind: KindImport})
	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("session should be closed after frontend failure")
	}
	assert.Nil(t, h.Current())
}

func TestDismiss(t *testing.T) {
	h := NewHost(newBlocking(), nil)
	s := h.Open(context.Background(), Request{Kind: KindCategoryForm})
	require.NoError(t, s.Dismiss())
	in := recv(t, h)
	assert.True(t, in.Dismissed)
	assert.ErrorIs(t, s.Reply(Message{Type: TypeAddCategory, Name: "x"}), ErrSessionClosed)
	assert.True(t, h.Close(s.ID))
	assert.False(t, h.Close(s.ID))
}

func TestKindAccepts(t *testing.T) {
	assert.True(t, KindCategoryPicker.Accepts(TypeUpdateProfileCategory))
	assert.False(t, KindCategoryPicker.Accepts(TypeUIReady))
	assert.True(t, KindExport.Accepts(TypeExportError))
}
