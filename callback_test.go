// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package kairon

import (
	"bytes"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/xmidt-org/chronon"
)

type CallbackTestSuite struct {
	suite.Suite

	start time.Time
	fc    *chronon.FakeClock
	clock *Clock
}

func (suite *CallbackTestSuite) SetupTest() {
	suite.start = time.Now()
	suite.fc = chronon.NewFakeClock(suite.start)
	suite.clock = NewClock(suite.fc)
}

func (suite *CallbackTestSuite) newTimer(period time.Duration, o ...TimerOption) *Timer {
	t, err := NewTimer(suite.clock, period, o...)
	suite.Require().NoError(err)
	suite.Require().NotNil(t)
	return t
}

func (suite *CallbackTestSuite) TestSetAndReset() {
	tm := suite.newTimer(10 * time.Millisecond)

	var calls []uint64
	suite.Require().NoError(tm.SetOnResetCallback(func(n uint64) {
		calls = append(calls, n)
	}))

	suite.NoError(tm.Reset())
	suite.NoError(tm.Reset())
	suite.NoError(tm.Reset())
	suite.Equal([]uint64{1, 2, 3}, calls)

	suite.NoError(tm.Close())
}

func (suite *CallbackTestSuite) TestReplace() {
	tm := suite.newTimer(10 * time.Millisecond)

	var first, second []uint64
	suite.Require().NoError(tm.SetOnResetCallback(func(n uint64) {
		first = append(first, n)
	}))

	suite.NoError(tm.Reset())

	// the replacement sees its own count, starting over at 1
	suite.Require().NoError(tm.SetOnResetCallback(func(n uint64) {
		second = append(second, n)
	}))

	suite.NoError(tm.Reset())

	suite.Equal([]uint64{1}, first)
	suite.Equal([]uint64{1}, second)

	suite.NoError(tm.Close())
}

func (suite *CallbackTestSuite) TestNilCallback() {
	tm := suite.newTimer(10 * time.Millisecond)
	suite.ErrorIs(tm.SetOnResetCallback(nil), ErrNilCallback)
	suite.NoError(tm.Close())
}

func (suite *CallbackTestSuite) TestClear() {
	tm := suite.newTimer(10 * time.Millisecond)

	// clearing with nothing installed is a no-op
	suite.NoError(tm.ClearOnResetCallback())

	var calls int
	suite.Require().NoError(tm.SetOnResetCallback(func(uint64) {
		calls++
	}))

	suite.NoError(tm.Reset())
	suite.Equal(1, calls)

	suite.NoError(tm.ClearOnResetCallback())
	suite.NoError(tm.Reset())
	suite.Equal(1, calls)

	suite.NoError(tm.Close())
}

func (suite *CallbackTestSuite) TestPanicSwallowed() {
	var output bytes.Buffer
	tm := suite.newTimer(
		10*time.Millisecond,
		WithLogger(slog.New(slog.NewTextHandler(&output, nil))),
	)

	var calls int
	suite.Require().NoError(tm.SetOnResetCallback(func(uint64) {
		calls++
		panic("misbehaving callback")
	}))

	// the panic is logged and discarded, and the reset still rearms
	suite.NoError(tm.Reset())
	suite.Equal(1, calls)
	suite.Contains(output.String(), "misbehaving callback")

	d, err := tm.TimeUntilTrigger()
	suite.NoError(err)
	suite.Equal(10*time.Millisecond, d)

	// further resets keep notifying
	suite.NoError(tm.Reset())
	suite.Equal(2, calls)

	suite.NoError(tm.Close())
}

func (suite *CallbackTestSuite) TestConcurrentReplacement() {
	tm := suite.newTimer(time.Millisecond)

	var (
		resetters  sync.WaitGroup
		installers sync.WaitGroup
		stop       = make(chan struct{})

		// violations counts invocations whose reset count disagreed with
		// the callback's own observed invocation count.
		violations atomic.Int64
	)

	resetters.Add(1)
	go func() {
		defer resetters.Done()
		for {
			select {
			case <-stop:
				return
			default:
				_ = tm.Reset()
			}
		}
	}()

	for i := 0; i < 4; i++ {
		installers.Add(1)
		go func() {
			defer installers.Done()
			for j := 0; j < 250; j++ {
				var invocations atomic.Uint64
				_ = tm.SetOnResetCallback(func(n uint64) {
					if invocations.Add(1) != n {
						violations.Add(1)
					}
				})
			}
		}()
	}

	installers.Wait()
	close(stop)
	resetters.Wait()

	suite.Zero(violations.Load())

	// after the churn, a fresh install observes exactly one invocation
	// per reset, counted from its own installation
	var calls []uint64
	suite.Require().NoError(tm.SetOnResetCallback(func(n uint64) {
		calls = append(calls, n)
	}))

	suite.NoError(tm.Reset())
	suite.Equal([]uint64{1}, calls)

	suite.NoError(tm.Close())
}

func TestCallback(t *testing.T) {
	suite.Run(t, new(CallbackTestSuite))
}
