package model

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNotification(t *testing.T) {
	now := time.Now()
	n, err := NewNotification("Saved", SeveritySuccess, 0, now)
	require.NoError(t, err)

	assert.Len(t, n.ID, 26)
	assert.Equal(t, "Saved", n.Message)
	assert.Equal(t, SeveritySuccess, n.Severity)
	assert.Equal(t, int64(5000), n.DurationMS)
	assert.Equal(t, StateEntering, n.State)
	assert.Equal(t, now, n.CreatedAt)
	assert.NoError(t, n.Validate())
}

func TestNewNotification_DefaultDurations(t *testing.T) {
	tests := []struct {
		severity Severity
		want     time.Duration
	}{
		{SeveritySuccess, 5000 * time.Millisecond},
		{SeverityError, 7000 * time.Millisecond},
		{SeverityWarning, 6000 * time.Millisecond},
		{SeverityInfo, 5000 * time.Millisecond},
		{Severity(42), 5000 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.severity.String(), func(t *testing.T) {
			n, err := NewNotification("x", tt.severity, 0, time.Now())
			require.NoError(t, err)
			assert.Equal(t, tt.want, n.Duration())
		})
	}
}

func TestNewNotification_ExplicitDuration(t *testing.T) {
	n, err := NewNotification("Oops", SeverityError, time.Second, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1000), n.DurationMS)

	n, err = NewNotification("Oops", SeverityError, -time.Second, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(7000), n.DurationMS)
}

func TestNewNotification_UnknownSeverity(t *testing.T) {
	n, err := NewNotification("x", Severity(-3), 0, time.Now())
	require.NoError(t, err)
	assert.Equal(t, SeverityInfo, n.Severity)
}

func TestNotification_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Notification)
		wantErr error
	}{
		{
			name:    "valid notification",
			modify:  func(n *Notification) {},
			wantErr: nil,
		},
		{
			name: "empty id",
			modify: func(n *Notification) {
				n.ID = ""
			},
			wantErr: ErrEmptyID,
		},
		{
			name: "zero duration",
			modify: func(n *Notification) {
				n.DurationMS = 0
			},
			wantErr: ErrInvalidDuration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := validNotification()
			tt.modify(n)
			err := n.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNotification_Transition(t *testing.T) {
	n := validNotification()

	require.NoError(t, n.Transition(StateVisible))
	require.NoError(t, n.Transition(StateLeaving))

	err := n.Transition(StateVisible)
	var terr *TransitionError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, StateLeaving, terr.From)
	assert.Equal(t, StateVisible, terr.To)
	assert.Equal(t, StateLeaving, n.State)
}

func TestNotification_MarkRemoved(t *testing.T) {
	n := validNotification()
	at := time.Now()

	assert.True(t, n.MarkRemoved(RemoveReasonDismissed, at))
	assert.Equal(t, StateRemoved, n.State)
	assert.Equal(t, RemoveReasonDismissed, n.Reason)
	assert.Equal(t, at, n.RemovedAt)

	// No resurrection and no reason overwrite.
	assert.False(t, n.MarkRemoved(RemoveReasonCleared, at.Add(time.Second)))
	assert.Equal(t, RemoveReasonDismissed, n.Reason)
	assert.Error(t, n.Transition(StateEntering))
}

func TestNotification_MessageTruncated(t *testing.T) {
	tests := []struct {
		name    string
		message string
		maxLen  int
		want    string
	}{
		{"short message", "hello", 10, "hello"},
		{"exact length", "hello", 5, "hello"},
		{"truncated", "hello world", 8, "hello..."},
		{"very short max", "hello", 3, "hel"},
		{"zero max", "hello", 0, ""},
		{"negative max", "hello", -1, ""},
		{"multiline message", "hello\nworld\ntest", 20, "hello world test"},
		{"multibyte", "héllo wörld", 8, "héllo..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &Notification{Message: tt.message}
			assert.Equal(t, tt.want, n.MessageTruncated(tt.maxLen))
		})
	}
}

func TestNotification_Clone(t *testing.T) {
	n := validNotification()
	clone := n.Clone()

	assert.Equal(t, n.ID, clone.ID)

	clone.Message = "modified"
	clone.State = StateRemoved
	assert.NotEqual(t, n.Message, clone.Message)
	assert.Equal(t, StateEntering, n.State)
}

// Helper function to create a valid notification for testing.
func validNotification() *Notification {
	return &Notification{
		ID:         "01HQGXK5P00000000000000000",
		Message:    "Download complete",
		Severity:   SeveritySuccess,
		DurationMS: 5000,
		CreatedAt:  time.Now(),
		State:      StateEntering,
	}
}

func TestRequest(t *testing.T) {
	tests := []struct {
		name     string
		req      Request
		severity Severity
		duration time.Duration
	}{
		{"defaults", Request{Message: "m"}, SeverityInfo, 0},
		{"explicit", Request{Message: "m", Severity: "error", DurationMS: 1300}, SeverityError, 1300 * time.Millisecond},
		{"unknown severity", Request{Severity: "fatal"}, SeverityInfo, 0},
		{"negative duration", Request{DurationMS: -5}, SeverityInfo, 0},
		{"capped", Request{DurationMS: 48 * 3600 * 1000}, SeverityInfo, MaxDuration},
		{"overflowing", Request{DurationMS: math.MaxInt64}, SeverityInfo, MaxDuration},
		{"at cap", Request{DurationMS: MaxDuration.Milliseconds()}, SeverityInfo, MaxDuration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.severity, tt.req.ParsedSeverity())
			assert.Equal(t, tt.duration, tt.req.Duration())
		})
	}
}
