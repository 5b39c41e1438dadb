package disc

import (
	"errors"
	"testing"
	"time"
)

// scriptedTable reports mounted once Lookup has been called more than
// mountedAfter times. mountedAfter < 0 never mounts.
type scriptedTable struct {
	mountedAfter int
	calls        int
	err          error
}

func (s *scriptedTable) Lookup(string) (string, bool, error) {
	s.calls++
	if s.err != nil {
		return "", false, s.err
	}
	if s.mountedAfter >= 0 && s.calls > s.mountedAfter {
		return "/media/test/OPTICAL_TEST", true, nil
	}
	return "", false, nil
}

type recordingSleeper struct {
	total time.Duration
	count int
}

func (r *recordingSleeper) sleep(d time.Duration) {
	r.total += d
	r.count++
}

func TestWaitForRemountMountedAfterTwoIntervals(t *testing.T) {
	table := &scriptedTable{mountedAfter: 2}
	sleeper := &recordingSleeper{}
	w := NewRemountWaiter(table, 300*time.Second, 3*time.Second, nil, WithSleeper(sleeper.sleep))

	res := w.WaitForRemount("/dev/sr0")
	if res.Outcome != RemountMounted {
		t.Fatalf("expected mounted, got %s", res.Outcome)
	}
	if res.MountPoint != "/media/test/OPTICAL_TEST" {
		t.Fatalf("unexpected mount point %q", res.MountPoint)
	}
	if sleeper.total < 6*time.Second || sleeper.total >= 9*time.Second {
		t.Fatalf("expected 6s <= slept < 9s, got %s", sleeper.total)
	}
	if res.Waited != sleeper.total {
		t.Fatalf("elapsed counter %s disagrees with time slept %s", res.Waited, sleeper.total)
	}
}

func TestWaitForRemountImmediatelyMounted(t *testing.T) {
	sleeper := &recordingSleeper{}
	w := NewRemountWaiter(&scriptedTable{mountedAfter: 0}, 0, 0, nil, WithSleeper(sleeper.sleep))

	res := w.WaitForRemount("/dev/sr0")
	if res.Outcome != RemountMounted || sleeper.count != 0 {
		t.Fatalf("expected immediate mount without sleeping, got %+v slept=%d", res, sleeper.count)
	}
}

func TestWaitForRemountTimesOutAtCeiling(t *testing.T) {
	sleeper := &recordingSleeper{}
	w := NewRemountWaiter(&scriptedTable{mountedAfter: -1}, 300*time.Second, 3*time.Second, nil, WithSleeper(sleeper.sleep))

	res := w.WaitForRemount("/dev/sr0")
	if res.Outcome != RemountTimedOut {
		t.Fatalf("expected timed out, got %s", res.Outcome)
	}
	if sleeper.total != 300*time.Second {
		t.Fatalf("expected exactly 300s slept, got %s", sleeper.total)
	}
	if sleeper.count != 100 {
		t.Fatalf("expected 100 sleeps, got %d", sleeper.count)
	}
	if res.Waited != 300*time.Second {
		t.Fatalf("expected elapsed 300s, got %s", res.Waited)
	}
}

func TestWaitForRemountClampsFinalInterval(t *testing.T) {
	sleeper := &recordingSleeper{}
	w := NewRemountWaiter(&scriptedTable{mountedAfter: -1}, 10*time.Second, 3*time.Second, nil, WithSleeper(sleeper.sleep))

	res := w.WaitForRemount("/dev/sr0")
	if res.Outcome != RemountTimedOut {
		t.Fatalf("expected timed out, got %s", res.Outcome)
	}
	if sleeper.total != 10*time.Second {
		t.Fatalf("expected ceiling of 10s, slept %s", sleeper.total)
	}
	if sleeper.count != 4 {
		t.Fatalf("expected 4 sleeps (3+3+3+1), got %d", sleeper.count)
	}
}

func TestWaitForRemountLookupErrorsKeepPolling(t *testing.T) {
	sleeper := &recordingSleeper{}
	table := &scriptedTable{err: errors.New("mounts unreadable")}
	w := NewRemountWaiter(table, 9*time.Second, 3*time.Second, nil, WithSleeper(sleeper.sleep))

	res := w.WaitForRemount("/dev/sr0")
	if res.Outcome != RemountTimedOut {
		t.Fatalf("expected timed out, got %s", res.Outcome)
	}
	if table.calls != 4 {
		t.Fatalf("expected 4 lookups, got %d", table.calls)
	}
}

func TestWaitForRemountUsesRealSleep(t *testing.T) {
	w := NewRemountWaiter(&scriptedTable{mountedAfter: 1}, time.Second, 20*time.Millisecond, nil)

	start := time.Now()
	res := w.WaitForRemount("/dev/sr0")
	if res.Outcome != RemountMounted {
		t.Fatalf("expected mounted, got %s", res.Outcome)
	}
	if took := time.Since(start); took < 20*time.Millisecond {
		t.Fatalf("expected a real sleep of at least one interval, took %s", took)
	}
}

func TestRemountOutcomeString(t *testing.T) {
	if RemountMounted.String() != "mounted" || RemountTimedOut.String() != "timed_out" || RemountOutcome(0).String() != "unknown" {
		t.Fatal("unexpected outcome labels")
	}
}
