package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	sent [][]byte
}

func (s *recordingSender) Send(data []byte) error {
	buf := make([]byte, len(data))
	copy(buf, data)
	s.sent = append(s.sent, buf)
	return nil
}

func TestChannelSendWritesDirectlyOutsideDispatch(t *testing.T) {
	sender := &recordingSender{}
	ch := NewChannel(sender)

	require.NoError(t, ch.Send([]byte("a")))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "a", string(sender.sent[0]))
}

func TestDispatchFlushesHostWritesAfterHandlerReturns(t *testing.T) {
	sender := &recordingSender{}
	ch := NewChannel(sender)

	var order []string
	ch.Dispatch(Payload{Kind: "OSC", Data: []byte("52")}, func(p Payload) {
		order = append(order, "handler-start")
		_ = ch.Send([]byte("reply-1"))
		_ = ch.Send([]byte("reply-2"))
		order = append(order, "handler-end")
	})

	require.Len(t, sender.sent, 2)
	assert.Equal(t, "reply-1", string(sender.sent[0]))
	assert.Equal(t, "reply-2", string(sender.sent[1]))
	assert.Equal(t, []string{"handler-start", "handler-end"}, order)
}

func TestDispatchPreservesOrderOfPendingWrites(t *testing.T) {
	sender := &recordingSender{}
	ch := NewChannel(sender)

	ch.Dispatch(Payload{Kind: "DCS"}, func(Payload) {
		for i := 0; i < 5; i++ {
			_ = ch.Send([]byte{byte('0' + i)})
		}
	})

	require.Len(t, sender.sent, 5)
	for i := 0; i < 5; i++ {
		assert.Equal(t, string(byte('0'+i)), string(sender.sent[i]))
	}
}

func TestNestedDispatchQueuesIntoOuterPending(t *testing.T) {
	sender := &recordingSender{}
	ch := NewChannel(sender)

	ch.Dispatch(Payload{Kind: "OSC"}, func(Payload) {
		_ = ch.Send([]byte("outer-1"))
		ch.Dispatch(Payload{Kind: "DCS"}, func(Payload) {
			_ = ch.Send([]byte("inner-1"))
		})
		_ = ch.Send([]byte("outer-2"))
	})

	// Nothing should reach the PTY until the outermost Dispatch returns,
	// and the relative order of every Send call is preserved.
	require.Len(t, sender.sent, 3)
	assert.Equal(t, "outer-1", string(sender.sent[0]))
	assert.Equal(t, "inner-1", string(sender.sent[1]))
	assert.Equal(t, "outer-2", string(sender.sent[2]))
}
