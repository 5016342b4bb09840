package orchestrator

import (
	"testing"
	"time"
)

func TestBreaker_OpensAtThreshold(t *testing.T) {
	b := NewBreaker(3, time.Hour)

	b.RecordFailure()
	b.RecordFailure()
	if !b.Allow() {
		t.Fatal("breaker tripped below threshold")
	}
	b.RecordFailure()
	if b.Allow() {
		t.Fatal("breaker still admitting after threshold failures")
	}
	if !b.Open() {
		t.Fatal("Open() = false on an open breaker")
	}
}

func TestBreaker_DisabledAtZeroThreshold(t *testing.T) {
	b := NewBreaker(0, time.Hour)
	for i := 0; i < 10; i++ {
		b.RecordFailure()
	}
	if !b.Allow() {
		t.Fatal("disabled breaker rejected an attempt")
	}
	if b.Open() {
		t.Fatal("disabled breaker reports open")
	}
}

func TestBreaker_ProbeAfterRecovery(t *testing.T) {
	b := NewBreaker(1, 20*time.Millisecond)
	b.RecordFailure()
	if b.Allow() {
		t.Fatal("breaker admitting immediately after opening")
	}

	time.Sleep(30 * time.Millisecond)
	if !b.Allow() {
		t.Fatal("breaker refused a probe after the recovery window")
	}

	// a failed probe keeps it open
	b.RecordFailure()
	if !b.Open() {
		t.Fatal("breaker closed after a failed probe")
	}

	time.Sleep(30 * time.Millisecond)
	b.RecordSuccess()
	if b.Open() || !b.Allow() {
		t.Fatal("breaker still open after a successful probe")
	}
}

func TestBreaker_SuccessResetsStreak(t *testing.T) {
	b := NewBreaker(3, time.Hour)
	b.RecordFailure()
	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()
	b.RecordFailure()
	if !b.Allow() {
		t.Fatal("streak survived an intervening success")
	}
}
