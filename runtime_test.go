package des_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PetrichorIT/des"
	"github.com/PetrichorIT/des/limit"
	"github.com/PetrichorIT/des/vtime"
)

type counterApp struct {
	fired []vtime.Instant
}

type tick struct {
	every vtime.Duration
	times int
}

func (t *tick) Handle(rt *des.Runtime[*counterApp]) {
	rt.App.fired = append(rt.App.fired, rt.Now())
	t.times--
	if t.times > 0 {
		rt.ScheduleIn(t.every, t)
	}
}

func TestRuntime_EmptyQueueFinishesImmediately(t *testing.T) {
	rt := des.New(&counterApp{}, des.WithQuiet[*counterApp](true))
	out := rt.Run()
	require.Equal(t, des.OutcomeEmpty, out.Kind)
	require.Equal(t, 0, out.Dispatched)
	require.Equal(t, 0, out.Remaining)
}

func TestRuntime_DispatchOrderIsTimeThenSequence(t *testing.T) {
	app := &counterApp{}
	rt := des.New(app, des.WithQuiet[*counterApp](true))

	var order []string
	record := func(name string) des.PayloadFunc[*counterApp] {
		return func(rt *des.Runtime[*counterApp]) {
			order = append(order, name)
		}
	}

	rt.ScheduleAt(vtime.InstantFromNanos(10), record("b-at-10-first"))
	rt.ScheduleAt(vtime.InstantFromNanos(5), record("a-at-5"))
	rt.ScheduleAt(vtime.InstantFromNanos(10), record("c-at-10-second"))

	out := rt.Run()
	require.Equal(t, des.OutcomeFinished, out.Kind)
	assert.Equal(t, []string{"a-at-5", "b-at-10-first", "c-at-10-second"}, order)
}

func TestRuntime_RepeatingEventsDriveClockForward(t *testing.T) {
	app := &counterApp{}
	rt := des.New(app, des.WithQuiet[*counterApp](true))

	rt.ScheduleAt(vtime.InstantFromNanos(0), &tick{every: vtime.FromNanos(100), times: 5})

	out := rt.Run()
	require.Equal(t, des.OutcomeFinished, out.Kind)
	require.Len(t, app.fired, 5)
	assert.Equal(t, vtime.InstantFromNanos(400), out.Time)
}

func TestRuntime_EventCountLimitStopsEarly(t *testing.T) {
	app := &counterApp{}
	rt := des.New(app, des.WithQuiet[*counterApp](true), des.WithLimit[*counterApp](limit.EventCount(3)))

	rt.ScheduleAt(vtime.InstantFromNanos(0), &tick{every: vtime.FromNanos(1), times: 100})

	out := rt.Run()
	require.Equal(t, des.OutcomePrematureAbort, out.Kind)
	require.Equal(t, 3, out.Dispatched)
	require.Equal(t, 1, out.Remaining)
	require.Len(t, app.fired, 3)
}

func TestRuntime_CancelPreventsDispatch(t *testing.T) {
	app := &counterApp{}
	rt := des.New(app, des.WithQuiet[*counterApp](true))

	fired := false
	h := rt.ScheduleAt(vtime.InstantFromNanos(10), des.PayloadFunc[*counterApp](func(rt *des.Runtime[*counterApp]) {
		fired = true
	}))

	require.True(t, rt.Cancel(h))
	require.False(t, rt.Cancel(h), "cancelling twice is a no-op, not an error")

	out := rt.Run()
	require.Equal(t, des.OutcomeEmpty, out.Kind)
	require.False(t, fired)
}

func TestRuntime_SchedulingInThePastPanics(t *testing.T) {
	app := &counterApp{}
	rt := des.New(app, des.WithQuiet[*counterApp](true))

	rt.ScheduleAt(vtime.InstantFromNanos(100), des.PayloadFunc[*counterApp](func(rt *des.Runtime[*counterApp]) {}))
	rt.Run()

	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a panic")
		_, ok := r.(*des.ContractViolation)
		require.True(t, ok, "expected a *ContractViolation, got %T", r)
	}()
	rt.ScheduleAt(vtime.InstantFromNanos(0), des.PayloadFunc[*counterApp](func(rt *des.Runtime[*counterApp]) {}))
}

func TestRuntime_ForeignHandleCancelPanics(t *testing.T) {
	a := des.New(&counterApp{}, des.WithQuiet[*counterApp](true))
	b := des.New(&counterApp{}, des.WithQuiet[*counterApp](true))

	h := a.ScheduleAt(vtime.InstantFromNanos(5), des.PayloadFunc[*counterApp](func(rt *des.Runtime[*counterApp]) {}))

	require.Panics(t, func() {
		b.Cancel(h)
	})
}

func TestRuntime_HandlerSchedulingDuringDispatchIsObserved(t *testing.T) {
	app := &counterApp{}
	rt := des.New(app, des.WithQuiet[*counterApp](true))

	var chainLen int
	var chain des.PayloadFunc[*counterApp]
	chain = func(rt *des.Runtime[*counterApp]) {
		chainLen++
		if chainLen < 4 {
			rt.ScheduleIn(vtime.FromNanos(1), chain)
		}
	}
	rt.ScheduleAt(vtime.Zero, chain)

	out := rt.Run()
	require.Equal(t, des.OutcomeFinished, out.Kind)
	require.Equal(t, 4, chainLen)
	require.Equal(t, 4, out.Dispatched)
}

func TestRuntime_DriveLimitsEventsRelativeToCurrentCount(t *testing.T) {
	app := &counterApp{}
	rt := des.New(app, des.WithQuiet[*counterApp](true))
	rt.ScheduleAt(vtime.InstantFromNanos(0), &tick{every: vtime.FromNanos(1), times: 10})

	out := rt.Drive(2)
	require.Equal(t, des.OutcomePrematureAbort, out.Kind)
	require.Equal(t, 2, out.Dispatched)

	out = rt.Drive(2)
	require.Equal(t, des.OutcomePrematureAbort, out.Kind)
	require.Equal(t, 2, out.Dispatched)
	require.Equal(t, 4, rt.Dispatched())
}
