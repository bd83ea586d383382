package animation

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/togedaeng/go-togedaeng/pkg/nav"
)

func TestBuiltinClips(t *testing.T) {
	clips, err := BuiltinClips()
	if err != nil {
		t.Fatalf("BuiltinClips failed: %v", err)
	}
	if len(clips) != 3 {
		t.Fatalf("Expected 3 clips, got %d", len(clips))
	}

	holds := map[string]float64{TriggerHand: 3, TriggerSit: 4, TriggerDown: 5}
	for _, c := range clips {
		want, ok := holds[c.Trigger]
		if !ok {
			t.Errorf("unexpected trigger %q", c.Trigger)
			continue
		}
		if c.Hold != want {
			t.Errorf("%s: hold = %v, want %v", c.Trigger, c.Hold, want)
		}
		if c.Duration <= 0 || c.Duration > c.Hold {
			t.Errorf("%s: duration %v should be positive and within the hold", c.Trigger, c.Duration)
		}
	}
}

func TestLoadClipsFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid", func(t *testing.T) {
		path := filepath.Join(dir, "ok.yaml")
		data := "clips:\n  - trigger: Spin\n    duration: 1.5\n    hold: 2\n"
		if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
			t.Fatal(err)
		}
		clips, err := LoadClipsFile(path)
		if err != nil {
			t.Fatalf("LoadClipsFile: %v", err)
		}
		if len(clips) != 1 || clips[0].Name != "Spin" {
			t.Errorf("clips = %+v, want one clip named after its trigger", clips)
		}
	})

	t.Run("missing trigger", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		if err := os.WriteFile(path, []byte("clips:\n  - name: x\n    duration: 1\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadClipsFile(path); !errors.Is(err, ErrInvalidClip) {
			t.Errorf("err = %v, want ErrInvalidClip", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadClipsFile(filepath.Join(dir, "nope.yaml")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}

func TestAnimator_SetBool(t *testing.T) {
	a := NewAnimator(nil)
	var changes []Change
	a.OnChange(func(c Change) { changes = append(changes, c) })

	a.SetBool(nav.WalkParam, true)
	a.SetBool(nav.WalkParam, true)
	a.SetBool(nav.WalkParam, false)

	if a.Bool(nav.WalkParam) {
		t.Error("expected isWalking false")
	}
	if len(changes) != 2 {
		t.Fatalf("changes = %d, want 2 (repeat values are silent)", len(changes))
	}
	if changes[0].Kind != ChangeBool || !changes[0].Value || changes[1].Value {
		t.Errorf("changes = %+v", changes)
	}
}

func TestAnimator_Trigger(t *testing.T) {
	a, err := NewDefaultAnimator()
	if err != nil {
		t.Fatalf("NewDefaultAnimator: %v", err)
	}
	var changes []Change
	a.OnChange(func(c Change) { changes = append(changes, c) })

	clip, err := a.SetTrigger(TriggerSit)
	if err != nil {
		t.Fatalf("SetTrigger: %v", err)
	}
	if !a.IsPlaying(TriggerSit) || a.IsPlaying(TriggerHand) {
		t.Error("expected only Sit to be playing")
	}

	// Still playing just before the end.
	a.Update(clip.Duration - 0.1)
	if a.Current() != TriggerSit {
		t.Errorf("current = %q, want Sit", a.Current())
	}

	a.Update(0.2)
	if a.Current() != "" {
		t.Errorf("current = %q after clip end", a.Current())
	}
	if len(changes) != 2 || changes[0].Kind != ChangeTrigger || changes[1].Kind != ChangeClipEnded {
		t.Errorf("changes = %+v", changes)
	}
}

func TestAnimator_TriggerReplacesClip(t *testing.T) {
	a, _ := NewDefaultAnimator()

	_, _ = a.SetTrigger(TriggerDown)
	a.Update(1)
	hand, _ := a.SetTrigger(TriggerHand)

	st := a.State()
	if st.Clip != TriggerHand || st.Remaining != hand.Duration {
		t.Errorf("state = %+v, want fresh Hand clip", st)
	}
}

func TestAnimator_UnknownTrigger(t *testing.T) {
	a, _ := NewDefaultAnimator()

	if _, err := a.SetTrigger("Backflip"); !errors.Is(err, ErrUnknownTrigger) {
		t.Errorf("err = %v, want ErrUnknownTrigger", err)
	}
	if _, err := a.Clip("Backflip"); !errors.Is(err, ErrUnknownTrigger) {
		t.Errorf("Clip err = %v, want ErrUnknownTrigger", err)
	}
	if a.Current() != "" {
		t.Error("unknown trigger must not start a clip")
	}
}

func TestAnimator_Triggers(t *testing.T) {
	a, _ := NewDefaultAnimator()
	a.Register(Clip{Trigger: "Spin", Duration: 1})

	got := a.Triggers()
	want := []string{"Down", "Hand", "Sit", "Spin"}
	if len(got) != len(want) {
		t.Fatalf("triggers = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("triggers[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestChangeKind_String(t *testing.T) {
	tests := []struct {
		kind ChangeKind
		want string
	}{
		{ChangeBool, "bool"},
		{ChangeTrigger, "trigger"},
		{ChangeClipEnded, "clip_ended"},
		{ChangeKind(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
