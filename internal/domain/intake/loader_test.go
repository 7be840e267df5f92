package intake

import (
	"testing"
	"time"
)

func TestLoader_ReadyAfterDelay(t *testing.T) {
	l := StartLoader(10 * time.Millisecond)
	if !l.Loading() {
		t.Fatal("expected loading right after start")
	}
	select {
	case <-l.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("loader never became ready")
	}
	if l.Loading() {
		t.Error("expected ready once Done is closed")
	}
	if l.Cancel() {
		t.Error("expected nothing pending after the transition")
	}
}

func TestLoader_CancelBeforeDelay(t *testing.T) {
	l := StartLoader(time.Hour)
	if !l.Loading() {
		t.Fatal("expected loading")
	}
	if !l.Cancel() {
		t.Error("expected Cancel to stop a pending transition")
	}
	if l.Cancel() {
		t.Error("expected second Cancel to be a no-op")
	}
	if !l.Loading() {
		t.Error("a cancelled loader must not transition")
	}
	select {
	case <-l.Done():
		t.Error("Done closed for a cancelled loader")
	default:
	}
}

func TestLoader_CancelAfterReady(t *testing.T) {
	l := StartLoader(0)
	if l.Loading() {
		t.Fatal("expected ready immediately")
	}
	if l.Cancel() {
		t.Error("expected Cancel on a ready loader to report nothing pending")
	}
	select {
	case <-l.Done():
	default:
		t.Error("expected Done to be closed")
	}
}
