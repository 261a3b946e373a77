package availability

import (
	"testing"
	"time"

	"github.com/AdguardTeam/golibs/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// dt is a shorthand for constructing naive datetimes in tests.
func dt(y int, m time.Month, d, hour, min, sec int) (t time.Time) {
	return time.Date(y, m, d, hour, min, sec, 0, time.UTC)
}

// testPayload is the payload type used throughout the tests.
type testPayload struct {
	Manager string `yaml:"manager"`
	Staff   int    `yaml:"staff"`
}

// newTestRule is a helper that constructs a rule and fails the test on
// error.
func newTestRule(
	tb testing.TB,
	start time.Time,
	end time.Time,
	weekdays Weekdays,
	off bool,
	payload *testPayload,
) (r Rule[testPayload]) {
	tb.Helper()

	r, err := NewRule(start, end, weekdays, off, payload)
	require.NoError(tb, err)

	return r
}

func TestNewRule(t *testing.T) {
	start := dt(2024, time.January, 1, 9, 0, 0)
	end := dt(2024, time.January, 1, 17, 0, 0)

	t.Run("valid", func(t *testing.T) {
		p := &testPayload{Manager: "Day Shift", Staff: 3}
		r, err := NewRule(start, end, Monday|Friday, true, p)
		require.NoError(t, err)

		assert.Equal(t, start, r.Start())
		assert.Equal(t, end, r.End())
		assert.Equal(t, Monday|Friday, r.Weekdays())
		assert.True(t, r.IsOff())
		assert.False(t, r.IsOn())
		assert.Same(t, p, r.Payload())
	})

	t.Run("inverted", func(t *testing.T) {
		_, err := NewRule[testPayload](end, start, 0, false, nil)
		assert.ErrorIs(t, err, ErrInvalidRange)
		testutil.AssertErrorMsg(
			t,
			"start is not before end: start 2024-01-01 17:00:00, end 2024-01-01 09:00:00",
			err,
		)
	})

	t.Run("equal", func(t *testing.T) {
		_, err := NewRule[testPayload](start, start, 0, false, nil)
		assert.ErrorIs(t, err, ErrInvalidRange)
	})
}

func TestRule_IsAbsolute(t *testing.T) {
	start := dt(2024, time.January, 1, 9, 0, 0)
	end := dt(2024, time.January, 31, 17, 0, 0)

	abs := newTestRule(t, start, end, 0, false, nil)
	assert.True(t, abs.IsAbsolute())
	assert.False(t, abs.IsRelative())

	rel := newTestRule(t, start, end, Saturday, false, nil)
	assert.False(t, rel.IsAbsolute())
	assert.True(t, rel.IsRelative())
}

func TestRule_IsActive(t *testing.T) {
	// Mon-Fri, 09:00 to 17:00, all of January 2024.  2024-01-01 is a Monday.
	rule := newTestRule(
		t,
		dt(2024, time.January, 1, 9, 0, 0),
		dt(2024, time.January, 31, 17, 0, 0),
		Monday|Tuesday|Wednesday|Thursday|Friday,
		false,
		nil,
	)

	// Midnight-bounded absolute rule covering exactly one day.
	allDay := newTestRule(
		t,
		dt(2024, time.January, 15, 0, 0, 0),
		dt(2024, time.January, 16, 0, 0, 0),
		0,
		false,
		nil,
	)

	testCases := []struct {
		rule   Rule[testPayload]
		assert assert.BoolAssertionFunc
		t      time.Time
		name   string
	}{{
		rule:   rule,
		assert: assert.True,
		t:      dt(2024, time.January, 10, 12, 0, 0),
		name:   "weekday_inside",
	}, {
		rule:   rule,
		assert: assert.True,
		t:      dt(2024, time.January, 10, 9, 0, 0),
		name:   "weekday_window_start",
	}, {
		rule:   rule,
		assert: assert.False,
		t:      dt(2024, time.January, 10, 17, 0, 0),
		name:   "weekday_window_end",
	}, {
		rule:   rule,
		assert: assert.False,
		t:      dt(2024, time.January, 10, 8, 59, 59),
		name:   "weekday_before_window",
	}, {
		rule:   rule,
		assert: assert.False,
		t:      dt(2024, time.January, 13, 12, 0, 0),
		name:   "weekend",
	}, {
		rule:   rule,
		assert: assert.False,
		t:      dt(2023, time.December, 31, 12, 0, 0),
		name:   "before_span",
	}, {
		rule:   rule,
		assert: assert.False,
		t:      dt(2024, time.February, 1, 12, 0, 0),
		name:   "after_span",
	}, {
		rule:   rule,
		assert: assert.True,
		t:      dt(2024, time.January, 31, 16, 59, 59),
		name:   "last_day_inside",
	}, {
		rule:   allDay,
		assert: assert.True,
		t:      dt(2024, time.January, 15, 0, 0, 0),
		name:   "all_day_first_second",
	}, {
		rule:   allDay,
		assert: assert.True,
		t:      dt(2024, time.January, 15, 23, 59, 59),
		name:   "all_day_last_second",
	}, {
		rule:   allDay,
		assert: assert.False,
		t:      dt(2024, time.January, 16, 0, 0, 0),
		name:   "all_day_past_end",
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.assert(t, tc.rule.IsActive(tc.t))
		})
	}
}

func TestRule_Overlaps(t *testing.T) {
	base := newTestRule(
		t,
		dt(2024, time.January, 1, 9, 0, 0),
		dt(2024, time.January, 1, 17, 0, 0),
		0,
		false,
		nil,
	)

	testCases := []struct {
		assert assert.BoolAssertionFunc
		name   string
		start  time.Time
		end    time.Time
	}{{
		assert: assert.True,
		name:   "partial",
		start:  dt(2024, time.January, 1, 12, 0, 0),
		end:    dt(2024, time.January, 1, 18, 0, 0),
	}, {
		assert: assert.True,
		name:   "contained",
		start:  dt(2024, time.January, 1, 10, 0, 0),
		end:    dt(2024, time.January, 1, 11, 0, 0),
	}, {
		assert: assert.False,
		name:   "touching",
		start:  dt(2024, time.January, 1, 17, 0, 0),
		end:    dt(2024, time.January, 1, 20, 0, 0),
	}, {
		assert: assert.False,
		name:   "disjoint",
		start:  dt(2024, time.January, 2, 9, 0, 0),
		end:    dt(2024, time.January, 2, 17, 0, 0),
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			other := newTestRule(t, tc.start, tc.end, 0, false, nil)
			tc.assert(t, base.Overlaps(other))
			tc.assert(t, other.Overlaps(base))
		})
	}
}

func TestRule_SharesWeekdaysWith(t *testing.T) {
	start := dt(2024, time.January, 1, 9, 0, 0)
	end := dt(2024, time.January, 31, 17, 0, 0)

	monToWed := newTestRule(t, start, end, Monday|Tuesday|Wednesday, false, nil)
	wedToFri := newTestRule(t, start, end, Wednesday|Thursday|Friday, false, nil)
	thuFri := newTestRule(t, start, end, Thursday|Friday, false, nil)
	abs := newTestRule(t, start, end, 0, false, nil)

	assert.True(t, monToWed.SharesWeekdaysWith(wedToFri))
	assert.False(t, monToWed.SharesWeekdaysWith(thuFri))
	assert.False(t, monToWed.SharesWeekdaysWith(abs))
	assert.False(t, abs.SharesWeekdaysWith(monToWed))
	assert.False(t, abs.SharesWeekdaysWith(abs))
}

func TestRule_SamePayload(t *testing.T) {
	start := dt(2024, time.January, 1, 9, 0, 0)
	end := dt(2024, time.January, 1, 17, 0, 0)

	pay := testPayload{Manager: "Day Shift", Staff: 3}
	same := testPayload{Manager: "Day Shift", Staff: 3}
	other := testPayload{Manager: "Night Shift", Staff: 1}

	withPay := newTestRule(t, start, end, 0, false, &pay)
	withSame := newTestRule(t, start, end, 0, false, &same)
	withOther := newTestRule(t, start, end, 0, false, &other)
	without := newTestRule(t, start, end, 0, false, nil)

	assert.True(t, withPay.SamePayload(withSame))
	assert.True(t, without.SamePayload(without))
	assert.False(t, withPay.SamePayload(withOther))
	assert.False(t, withPay.SamePayload(without))
	assert.False(t, without.SamePayload(withPay))
}

func TestRule_Expand(t *testing.T) {
	t.Run("absolute_identity", func(t *testing.T) {
		r := newTestRule(
			t,
			dt(2024, time.January, 1, 9, 0, 0),
			dt(2024, time.January, 31, 17, 0, 0),
			0,
			false,
			nil,
		)

		got, err := r.Expand()
		require.NoError(t, err)

		assert.Equal(t, []Rule[testPayload]{r}, got)
	})

	t.Run("single_day_relative", func(t *testing.T) {
		r := newTestRule(
			t,
			dt(2024, time.January, 1, 9, 0, 0),
			dt(2024, time.January, 1, 17, 0, 0),
			Monday,
			false,
			nil,
		)

		_, err := r.Expand()
		assert.ErrorIs(t, err, ErrUndividableRange)
	})

	t.Run("enabled_days", func(t *testing.T) {
		p := &testPayload{Manager: "Day Shift", Staff: 3}

		// 2024-01-01 is a Monday, 2024-01-07 a Sunday.
		r := newTestRule(
			t,
			dt(2024, time.January, 1, 9, 0, 0),
			dt(2024, time.January, 7, 17, 0, 0),
			Monday|Wednesday|Friday,
			true,
			p,
		)

		got, err := r.Expand()
		require.NoError(t, err)
		require.Len(t, got, 3)

		wantDays := []int{1, 3, 5}
		for i, piece := range got {
			assert.Equal(t, dt(2024, time.January, wantDays[i], 9, 0, 0), piece.Start())
			assert.Equal(t, dt(2024, time.January, wantDays[i], 17, 0, 0), piece.End())
			assert.True(t, piece.IsAbsolute())
			assert.True(t, piece.IsOff())
			assert.Same(t, p, piece.Payload())
		}
	})

	t.Run("end_date_inclusive", func(t *testing.T) {
		// 2024-01-08 is the following Monday.
		r := newTestRule(
			t,
			dt(2024, time.January, 1, 9, 0, 0),
			dt(2024, time.January, 8, 17, 0, 0),
			Monday,
			false,
			nil,
		)

		got, err := r.Expand()
		require.NoError(t, err)
		require.Len(t, got, 2)

		assert.Equal(t, dt(2024, time.January, 1, 9, 0, 0), got[0].Start())
		assert.Equal(t, dt(2024, time.January, 8, 9, 0, 0), got[1].Start())
	})

	t.Run("midnight_end", func(t *testing.T) {
		// 2024-01-15 is a Monday.  Ending at midnight must produce a single
		// whole-day piece, not a zero-width one on the end date.
		r := newTestRule(
			t,
			dt(2024, time.January, 15, 0, 0, 0),
			dt(2024, time.January, 16, 0, 0, 0),
			Monday,
			false,
			nil,
		)

		got, err := r.Expand()
		require.NoError(t, err)
		require.Len(t, got, 1)

		assert.Equal(t, dt(2024, time.January, 15, 0, 0, 0), got[0].Start())
		assert.Equal(t, dt(2024, time.January, 16, 0, 0, 0), got[0].End())
	})
}

func TestRule_YAML(t *testing.T) {
	r := newTestRule(
		t,
		dt(2024, time.January, 1, 9, 0, 0),
		dt(2024, time.January, 31, 17, 0, 0),
		Monday|Friday,
		true,
		&testPayload{Manager: "Day Shift", Staff: 3},
	)

	t.Run("roundtrip", func(t *testing.T) {
		data, err := yaml.Marshal(r)
		require.NoError(t, err)

		got := Rule[testPayload]{}
		err = yaml.Unmarshal(data, &got)
		require.NoError(t, err)

		assert.Equal(t, r, got)
	})

	const badWeekday = `
start: 2024-01-01 09:00:00
end: 2024-01-31 17:00:00
weekdays:
    - monday
    - blursday
`
	const inverted = `
start: 2024-01-31 17:00:00
end: 2024-01-01 09:00:00
`

	testCases := []struct {
		name       string
		wantErrMsg string
		data       string
	}{{
		name:       "bad_weekday",
		wantErrMsg: `rule weekdays: unknown weekday "blursday"`,
		data:       badWeekday,
	}, {
		name: "inverted",
		wantErrMsg: "start is not before end: " +
			"start 2024-01-31 17:00:00, end 2024-01-01 09:00:00",
		data: inverted,
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Rule[testPayload]{}
			err := yaml.Unmarshal([]byte(tc.data), &got)
			testutil.AssertErrorMsg(t, tc.wantErrMsg, err)
		})
	}
}
