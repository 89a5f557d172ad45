package sh

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/bean.go/pkg/framework"
	"github.com/robotalks/bean.go/pkg/l1"
	"github.com/robotalks/bean.go/pkg/l1/msgs"
	pb "github.com/robotalks/bean.go/pkg/proto/bean/l1/v1"
)

type resultFuture chan l1.Result

func (f resultFuture) ResultChan() <-chan l1.Result { return f }

type replyConn struct {
	reply fx.Message
	sent  []fx.Message
}

func (c *replyConn) DoCommand(msg fx.Message) l1.CommandFuture {
	c.sent = append(c.sent, msg)
	f := make(resultFuture, 1)
	f <- l1.Result{Msg: c.reply}
	return f
}

func TestParseRefArgs(t *testing.T) {
	cases := []struct {
		args []string
		ref  l1.ControllerRef
	}{
		{nil, l1.ControllerRef{}},
		{[]string{"bean"}, l1.ControllerRef{Type: "bean"}},
		{[]string{"bean/b1"}, l1.ControllerRef{Type: "bean", ID: "b1"}},
		{[]string{"bean", "b1"}, l1.ControllerRef{Type: "bean", ID: "b1"}},
	}
	for _, c := range cases {
		ref, err := ParseRefArgs(c.args)
		require.NoError(t, err, "%v", c.args)
		require.Equal(t, c.ref, ref, "%v", c.args)
	}
	for _, args := range [][]string{
		{"bean/"},
		{"a/b", "c"},
		{"bean", "b1", "x"},
	} {
		_, err := ParseRefArgs(args)
		require.Error(t, err, "%v", args)
	}
}

func TestParseOnOff(t *testing.T) {
	for _, s := range []string{"on", "true", "1"} {
		val, err := ParseOnOff(s)
		require.NoError(t, err)
		require.True(t, val)
	}
	val, err := ParseOnOff("off")
	require.NoError(t, err)
	require.False(t, val)
	_, err = ParseOnOff("maybe")
	require.Error(t, err)
}

func TestFormatMessage(t *testing.T) {
	require.Equal(t, "OK", FormatMessage(&msgs.CommandOK{}))
	require.Equal(t, "LedQuery", FormatMessage(&msgs.LedQuery{}))

	ev := &msgs.MidiEvent{}
	ev.Timestamp, ev.Status, ev.Data1, ev.Data2 = 5, 0x90, 60, 100
	require.Contains(t, FormatMessage(ev), "midi @5 90 3c 64")

	st := &msgs.BeanStatus{}
	st.Name, st.PowerState, st.KeepAwake, st.Advertising = "Bean", "awake", true, true
	st.MidiPending, st.Services = 2, 0x05
	require.Equal(t, `status "Bean" awake keep-awake advertising midi-pending=2 services=0x05`, FormatMessage(st))

	led := &msgs.LedState{}
	require.Contains(t, FormatMessage(led), "LedState")
	RegisterFormatter(func(*msgs.LedState) string { return "led" })
	require.Equal(t, "led", FormatMessage(led))

	out, err := FormatJSON(ev)
	require.NoError(t, err)
	require.JSONEq(t, `{"timestamp":5,"status":144,"data1":60,"data2":100}`, out)
}

func TestPrompt(t *testing.T) {
	ref := l1.ControllerRef{Type: "bean", ID: "b1"}
	require.Equal(t, "bean/b1 > ", Prompt(ref, nil))
	st := &msgs.BeanStatus{}
	require.Equal(t, "bean/b1 > ", Prompt(ref, st))
	st.PowerState = "asleep"
	require.Equal(t, "bean/b1 (asleep) > ", Prompt(ref, st))
}

func TestConnLoopWatch(t *testing.T) {
	ctx := context.Background()
	c := NewConnLoop(l1.ControllerRef{Type: "bean", ID: "b1"}, &replyConn{})
	defer c.Close()
	var lines []string
	var changed []string
	c.Print = func(line string) { lines = append(lines, line) }
	c.StatusChanged = func(st *msgs.BeanStatus) { changed = append(changed, st.PowerState) }

	st := &msgs.BeanStatus{}
	st.PowerState = "awake"
	ev := &msgs.MidiEvent{}
	ev.Status, ev.Data1, ev.Data2 = 0x80, 60, 0
	c.Loop.PostMessage(st)
	c.Loop.PostMessage(ev)
	c.Loop.RunIteration(ctx)
	require.Empty(t, lines)
	require.Equal(t, []string{"awake"}, changed)
	require.Equal(t, st, c.Status())

	c.SetWatch(true)
	require.True(t, c.Watching())
	asleep := &msgs.BeanStatus{}
	asleep.PowerState = "asleep"
	c.Loop.PostMessage(ev)
	c.Loop.PostMessage(asleep)
	c.Loop.RunIteration(ctx)
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], "asleep")
	require.Contains(t, lines[1], "midi")
	require.Equal(t, []string{"awake", "asleep"}, changed)
}

func TestConnLoopStatusReply(t *testing.T) {
	reply := &msgs.BeanStatusReply{}
	reply.Status = &pb.BeanStatus{Name: "Bean", PowerState: "awake"}
	conn := &replyConn{reply: reply}
	c := NewConnLoop(l1.ControllerRef{Type: "bean", ID: "b1"}, conn)
	defer c.Close()
	require.Nil(t, c.Status())

	msg, err := c.Do(context.Background(), &msgs.BeanStatusQuery{})
	require.NoError(t, err)
	require.Equal(t, reply, msg)
	require.Len(t, conn.sent, 1)
	require.Equal(t, "awake", c.Status().PowerState)
	require.Equal(t, "Bean", c.Status().Name)
}
