package device

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/uartframe/pkg/l0/comm"
	"github.com/robotalks/uartframe/pkg/l0/frame"
)

const testTimerFreq = 1000000

type sentFrame struct {
	receiver byte
	payload  string
}

type recordingSender struct {
	sent []sentFrame
}

func (s *recordingSender) SendData(ctx context.Context, receiver byte, payload []byte) error {
	s.sent = append(s.sent, sentFrame{receiver: receiver, payload: string(payload)})
	return nil
}

func newTestDevice() (*Device, *SimTimer, *recordingSender) {
	timer := NewSimTimer(1000)
	sender := &recordingSender{}
	return New(testTimerFreq, timer, sender), timer, sender
}

func TestParseCommand(t *testing.T) {
	tests := map[string][]string{
		"":                      nil,
		"   ":                   nil,
		"ON":                    {"ON"},
		"  SET_FREQ   100 ":     {"SET_FREQ", "100"},
		"SET_DUTY_CYCLES 1 2 3": {"SET_DUTY_CYCLES", "1", "2", "3"},
	}
	for in, expected := range tests {
		t.Run(in, func(t *testing.T) {
			require.Equal(t, expected, ParseCommand([]byte(in)))
		})
	}
}

func TestExecute(t *testing.T) {
	tests := []struct {
		name    string
		cmds    []string
		replies []string
	}{
		{"unknown", []string{"FOO", "on"}, []string{ReplyUnknownCommand, ReplyUnknownCommand}},
		{"arg count", []string{"ON 1", "SET_FREQ", "SET_FREQ 1 2", "SET_DUTY_CYCLES", "STATUS x"},
			[]string{ReplyInvalidArgument, ReplyInvalidArgument, ReplyInvalidArgument, ReplyInvalidArgument, ReplyInvalidArgument}},
		{"initial status", []string{"STATUS"}, []string{"STATUS_RESP 0 1000 0"}},
		{"on off", []string{"ON", "ON", "STATUS", "OFF", "OFF"},
			[]string{ReplyPWMOn, ReplyPWMOn, "STATUS_RESP 1 1000 0", ReplyPWMOff, ReplyPWMOff}},
		{"set freq", []string{"SET_FREQ 2000", "STATUS"}, []string{"FREQ_CHANGED 2000", "STATUS_RESP 0 2000 0"}},
		{"invalid freq", []string{"SET_FREQ 0", "SET_FREQ 2000000", "SET_FREQ -1", "SET_FREQ 1x", "SET_FREQ 99999999999"},
			[]string{ReplyInvalidFrequency, ReplyInvalidFrequency, ReplyInvalidArgument, ReplyInvalidArgument, ReplyInvalidArgument}},
		{"duty cycles", []string{"SET_DUTY_CYCLES 0 50 100", "STATUS"},
			[]string{"DUTY_CYCLES_CHANGED 0 50 100", "STATUS_RESP 0 1000 0 50 100"}},
		{"duty rescaled", []string{"SET_DUTY_CYCLES 25 75", "SET_FREQ 500", "STATUS"},
			[]string{"DUTY_CYCLES_CHANGED 25 75", "FREQ_CHANGED 500", "STATUS_RESP 0 500 25 75"}},
		{"invalid duty", []string{"SET_DUTY_CYCLES 10 101", "SET_DUTY_CYCLES 101 x", "STATUS"},
			[]string{ReplyInvalidDutyCycle, ReplyInvalidArgument, "STATUS_RESP 0 1000 0"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			d, _, _ := newTestDevice()
			for n, cmd := range test.cmds {
				require.Equalf(t, test.replies[n], d.Execute(ParseCommand([]byte(cmd))), "command %q", cmd)
			}
		})
	}
}

func TestTimerDriven(t *testing.T) {
	d, timer, _ := newTestDevice()
	require.Equal(t, ReplyDutyCyclesChanged+" 10 20", d.Execute([]string{"SET_DUTY_CYCLES", "10", "20"}))
	require.Nil(t, timer.Output())

	require.Equal(t, ReplyPWMOn, d.Execute([]string{"ON"}))
	require.Equal(t, []uint32{100, 200}, timer.Output())
	require.Equal(t, 1, timer.Starts())

	// generation restarts with rescaled compare values.
	require.Equal(t, "FREQ_CHANGED 100", d.Execute([]string{"SET_FREQ", "100"}))
	require.Equal(t, uint32(10000), timer.Period())
	require.Equal(t, []uint32{1000, 2000}, timer.Output())
	require.Equal(t, 2, timer.Starts())

	state := d.State()
	require.True(t, state.PWMGenerated)
	require.Equal(t, []uint8{10, 20}, state.UserDutyCycles)

	require.Equal(t, ReplyPWMOff, d.Execute([]string{"OFF"}))
	require.Nil(t, timer.Output())
}

func TestMaxDutyCycles(t *testing.T) {
	d, _, _ := newTestDevice()
	args := []string{"SET_DUTY_CYCLES"}
	for i := 0; i < MaxDutyCycles; i++ {
		args = append(args, "1")
	}
	require.True(t, strings.HasPrefix(d.Execute(args), ReplyDutyCyclesChanged))
	require.Len(t, d.State().DutyCycles, MaxDutyCycles)
	require.Equal(t, ReplyInvalidArgument, d.Execute(append(args, "1")))
}

func TestHandleFrame(t *testing.T) {
	d, _, sender := newTestDevice()
	ctx := context.Background()
	d.HandleFrame(ctx, &frame.Frame{Sender: 1, Receiver: LocalID, Data: []byte("ON")})
	d.HandleFrame(ctx, &frame.Frame{Sender: 1, Receiver: LocalID + 1, Data: []byte("OFF")})
	d.HandleFrame(ctx, &frame.Frame{Sender: 2, Receiver: LocalID, Data: []byte("  ")})
	d.HandleFrame(ctx, &frame.Frame{Sender: 3, Receiver: LocalID, Data: []byte("NOPE")})
	require.Equal(t, []sentFrame{
		{receiver: 1, payload: ReplyPWMOn},
		{receiver: 3, payload: ReplyUnknownCommand},
	}, sender.sent)
	require.True(t, d.State().PWMGenerated)
}

func TestHandlePending(t *testing.T) {
	d, _, sender := newTestDevice()
	link := comm.NewEndpoint(nil, LocalID)
	for _, f := range []*frame.Frame{
		{Sender: 1, Receiver: LocalID, Data: []byte("SET_FREQ 100")},
		{Sender: 2, Receiver: LocalID, Data: []byte("STATUS")},
	} {
		encoded, err := f.Serialize()
		require.NoError(t, err)
		link.Rx().Receive(encoded)
	}
	d.HandlePending(context.Background(), link)
	require.Equal(t, []sentFrame{
		{receiver: 1, payload: "FREQ_CHANGED 100"},
		{receiver: 2, payload: "STATUS_RESP 0 100 0"},
	}, sender.sent)
}
